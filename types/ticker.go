package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type LatestPrice struct {
	Ticker     string          `json:"ticker"`
	LatestDate time.Time       `json:"latestDate"`
	Price      decimal.Decimal `json:"price"`
}

type TickerData struct {
	Ticker      string   `json:"ticker"`
	Currency    Currency `json:"currency"`
	Name        string   `json:"name"`
	HasEodPrice bool     `json:"hasEodPrice"`
	Exchange    string   `json:"exchange"`
	Acronym     string   `json:"acronym"`
	Mic         string   `json:"mic"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
}
