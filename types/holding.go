package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Holding struct {
	UserID      string          `json:"userId"`
	Ticker      string          `json:"ticker"`
	Currency    Currency        `json:"currency"`
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"averagePrice"`
}

// HistoricalHolding is a date range during which quantity and average cost held
// constant. EndDate is nil while the interval is open.
type HistoricalHolding struct {
	UserID      string          `json:"userId"`
	Ticker      string          `json:"ticker"`
	Currency    Currency        `json:"currency"`
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"averagePrice"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
}

func (h HistoricalHolding) Open() bool {
	return h.EndDate == nil
}

// ClosedOn returns a copy of h ending on end.
func (h HistoricalHolding) ClosedOn(end time.Time) HistoricalHolding {
	h.EndDate = &end
	return h
}

type RealizedPnL struct {
	UserID   string          `json:"userId"`
	Ticker   string          `json:"ticker"`
	Currency Currency        `json:"currency"`
	Date     time.Time       `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
}

// DerivedState is everything a replay produces for one key.
type DerivedState struct {
	Holding   *Holding            `json:"holding"`
	Realized  []RealizedPnL       `json:"realized"`
	Intervals []HistoricalHolding `json:"intervals"`
}
