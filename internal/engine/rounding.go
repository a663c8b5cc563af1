package engine

import (
	"github.com/shopspring/decimal"
)

// averageCost is the weighted mean of the held lot and the incoming lot,
// truncated toward zero at scale.
func averageCost(existingAvg decimal.Decimal, existingQty int64, price decimal.Decimal, qty int64, scale int32) decimal.Decimal {
	total := existingAvg.Mul(decimal.NewFromInt(existingQty)).
		Add(price.Mul(decimal.NewFromInt(qty)))
	q, _ := total.QuoRem(decimal.NewFromInt(existingQty+qty), scale)
	return q
}

// realizedAmount rounds half away from zero at scale.
func realizedAmount(price, avg decimal.Decimal, qty int64, scale int32) decimal.Decimal {
	return price.Sub(avg).Mul(decimal.NewFromInt(qty)).Round(scale)
}
