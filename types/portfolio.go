package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type StocksPortfolio struct {
	Data []StockOverview `json:"data"`
}

type StockOverview struct {
	Ticker              string          `json:"ticker"`
	Currency            Currency        `json:"currency"`
	Quantity            int64           `json:"quantity"`
	AveragePrice        decimal.Decimal `json:"averagePrice"`
	LastPrice           decimal.Decimal `json:"lastPrice"`
	TotalGain           decimal.Decimal `json:"totalGain"`
	TotalGainPercentage decimal.Decimal `json:"totalGainPercentage"`
	AsOf                time.Time       `json:"asOf"`
}
