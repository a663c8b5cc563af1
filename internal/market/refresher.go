package market

import (
	"context"

	"go.uber.org/zap"
)

// HeldTickers lists the tickers somebody currently holds.
type HeldTickers interface {
	ListHeldTickers(ctx context.Context) ([]string, error)
}

// Refresher warms the price cache for every held ticker.
type Refresher struct {
	tickers HeldTickers
	prices  *Cached
	logger  *zap.Logger
}

func NewRefresher(tickers HeldTickers, prices *Cached, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{tickers: tickers, prices: prices, logger: logger}
}

// RunOnce refreshes each ticker in turn and returns how many succeeded. A failing
// ticker is logged and skipped.
func (r *Refresher) RunOnce(ctx context.Context) (int, error) {
	tickers, err := r.tickers.ListHeldTickers(ctx)
	if err != nil {
		return 0, err
	}
	ok := 0
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return ok, err
		}
		if _, err := r.prices.Refresh(ctx, t); err != nil {
			r.logger.Warn("price refresh failed", zap.String("ticker", t), zap.Error(err))
			continue
		}
		ok++
	}
	r.logger.Info("prices refreshed", zap.Int("ok", ok), zap.Int("total", len(tickers)))
	return ok, nil
}
