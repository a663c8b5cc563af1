package valuation

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"portfolio/types"
)

var hundred = decimal.NewFromInt(100)

type HoldingsSource interface {
	Holdings(ctx context.Context, userID string, currency *types.Currency) ([]types.Holding, error)
}

type PriceSource interface {
	LatestPrice(ctx context.Context, ticker string) (types.LatestPrice, error)
}

// Service values a user's open holdings against the latest end-of-day prices.
type Service struct {
	holdings HoldingsSource
	prices   PriceSource
	logger   *zap.Logger
}

func NewService(holdings HoldingsSource, prices PriceSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{holdings: holdings, prices: prices, logger: logger}
}

// Portfolio returns one overview line per holding, in holdings order. Any
// missing price fails the whole call.
func (s *Service) Portfolio(ctx context.Context, userID string) (types.StocksPortfolio, error) {
	holdings, err := s.holdings.Holdings(ctx, userID, nil)
	if err != nil {
		return types.StocksPortfolio{}, err
	}

	prices := make([]types.LatestPrice, len(holdings))
	errs := make([]error, len(holdings))
	var wg sync.WaitGroup
	wg.Add(len(holdings))
	for i, h := range holdings {
		go func() {
			defer wg.Done()
			prices[i], errs[i] = s.prices.LatestPrice(ctx, h.Ticker)
		}()
	}
	wg.Wait()

	out := types.StocksPortfolio{Data: make([]types.StockOverview, 0, len(holdings))}
	for i, h := range holdings {
		if errs[i] != nil {
			s.logger.Error("latest price unavailable", zap.String("ticker", h.Ticker), zap.Error(errs[i]))
			if types.IsSystem(errs[i]) {
				return types.StocksPortfolio{}, errs[i]
			}
			return types.StocksPortfolio{}, types.Systemf(errs[i], "latest price of %s unavailable", h.Ticker)
		}
		out.Data = append(out.Data, overview(h, prices[i]))
	}
	return out, nil
}

func overview(h types.Holding, last types.LatestPrice) types.StockOverview {
	qty := decimal.NewFromInt(h.Quantity)
	value := h.AverageCost.Mul(qty)
	marketValue := last.Price.Mul(qty)
	totalGain := marketValue.Sub(value)

	pct := decimal.Zero
	if !value.IsZero() {
		pct = totalGain.Mul(hundred).DivRound(value, 2)
	}
	return types.StockOverview{
		Ticker:              h.Ticker,
		Currency:            h.Currency,
		Quantity:            h.Quantity,
		AveragePrice:        h.AverageCost,
		LastPrice:           last.Price,
		TotalGain:           totalGain,
		TotalGainPercentage: pct,
		AsOf:                last.LatestDate,
	}
}
