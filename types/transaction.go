package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Side string

type Currency string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"

	CurrencyUSD Currency = "USD"
	CurrencySGD Currency = "SGD"
)

func (s Side) Valid() bool {
	return s == SideTypeBuy || s == SideTypeSell
}

// PositionKey identifies the transaction history a replay runs over.
type PositionKey struct {
	UserID   string   `json:"userId"`
	Ticker   string   `json:"ticker"`
	Currency Currency `json:"currency"`
}

func (k PositionKey) String() string {
	return k.UserID + "/" + k.Ticker + "/" + string(k.Currency)
}

type Transaction struct {
	ID       uuid.UUID       `json:"id"`
	Seq      int64           `json:"-"`
	UserID   string          `json:"userId"`
	Ticker   string          `json:"ticker"`
	Currency Currency        `json:"currency"`
	Date     time.Time       `json:"date"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Side     Side            `json:"transactionType"`
}

func (t Transaction) Key() PositionKey {
	return PositionKey{UserID: t.UserID, Ticker: t.Ticker, Currency: t.Currency}
}

// Before reports whether t sorts ahead of o: date first, then insertion sequence.
func (t Transaction) Before(o Transaction) bool {
	if !t.Date.Equal(o.Date) {
		return t.Date.Before(o.Date)
	}
	return t.Seq < o.Seq
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const DateLayout = time.DateOnly
