package engine

import (
	"portfolio/types"
)

const DefaultScale int32 = 2

// ReplayConfig carries the decimal scale used for average cost and realized P/L
// rounding, per currency.
type ReplayConfig struct {
	defaultScale int32
	scales       map[types.Currency]int32
}

func NewReplayConfig(defaultScale int32, scales map[types.Currency]int32) *ReplayConfig {
	s := make(map[types.Currency]int32, len(scales))
	for c, v := range scales {
		s[c] = v
	}
	return &ReplayConfig{
		defaultScale: defaultScale,
		scales:       s,
	}
}

func (c *ReplayConfig) Scale(currency types.Currency) int32 {
	if c == nil {
		return DefaultScale
	}
	if s, ok := c.scales[currency]; ok {
		return s
	}
	return c.defaultScale
}

// Supports reports whether currency has an explicit scale configured.
func (c *ReplayConfig) Supports(currency types.Currency) bool {
	if c == nil {
		return currency == types.CurrencyUSD || currency == types.CurrencySGD
	}
	_, ok := c.scales[currency]
	return ok
}
