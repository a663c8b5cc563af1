package valuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/types"
)

type holdingsStub []types.Holding

func (h holdingsStub) Holdings(context.Context, string, *types.Currency) ([]types.Holding, error) {
	return h, nil
}

type pricesStub map[string]string

var asOf = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func (p pricesStub) LatestPrice(_ context.Context, ticker string) (types.LatestPrice, error) {
	s, ok := p[ticker]
	if !ok {
		return types.LatestPrice{}, errors.New("no price")
	}
	return types.LatestPrice{Ticker: ticker, LatestDate: asOf, Price: decimal.RequireFromString(s)}, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOverview(t *testing.T) {
	tests := []struct {
		name     string
		qty      int64
		avg      string
		last     string
		wantGain string
		wantPct  string
	}{
		{"gain", 10, "100", "110", "100", "10"},
		{"loss", 3, "30", "20", "-30", "-33.33"},
		{"pct rounds half up", 1, "8", "9.0004", "1.0004", "12.51"},
		{"flat", 7, "12.34", "12.34", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overview(types.Holding{Ticker: "AAPL", Quantity: tt.qty, AverageCost: dec(tt.avg)},
				types.LatestPrice{Price: dec(tt.last), LatestDate: asOf})
			assert.True(t, got.TotalGain.Equal(dec(tt.wantGain)), "gain %s", got.TotalGain)
			assert.True(t, got.TotalGainPercentage.Equal(dec(tt.wantPct)), "pct %s", got.TotalGainPercentage)
			assert.Equal(t, asOf, got.AsOf)
		})
	}
}

func TestService_Portfolio(t *testing.T) {
	holdings := holdingsStub{
		{Ticker: "AAPL", Currency: types.CurrencyUSD, Quantity: 10, AverageCost: dec("100")},
		{Ticker: "D05", Currency: types.CurrencySGD, Quantity: 100, AverageCost: dec("35.5")},
	}
	svc := NewService(holdings, pricesStub{"AAPL": "120", "D05": "36"}, nil)

	got, err := svc.Portfolio(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "AAPL", got.Data[0].Ticker)
	assert.True(t, got.Data[0].TotalGain.Equal(dec("200")))
	assert.Equal(t, types.CurrencySGD, got.Data[1].Currency)
	assert.True(t, got.Data[1].TotalGainPercentage.Equal(dec("1.41")))

	_, err = NewService(holdings, pricesStub{"AAPL": "120"}, nil).Portfolio(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, types.IsSystem(err))

	empty, err := NewService(holdingsStub{}, pricesStub{}, nil).Portfolio(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)
}
