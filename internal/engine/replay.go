package engine

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"portfolio/types"
)

var FirstTransactionSellErr = errors.New("first transaction should be BUY")
var ShortSellNotAllowedErr = errors.New("short sell not allowed, cannot sell more than current holding")
var InvalidTransactionErr = errors.New("invalid transaction")
var MixedKeysErr = errors.New("transactions belong to different positions")

// position is the running quantity and cost basis during one replay.
type position struct {
	quantity    int64
	averageCost decimal.Decimal
}

// ledger accumulates the derived views while folding over the history. The open
// interval, when there is one, is always intervals[len(intervals)-1].
type ledger struct {
	key       types.PositionKey
	scale     int32
	pos       position
	realized  []types.RealizedPnL
	intervals []types.HistoricalHolding
}

// Replay recomputes holding, realized P/L and the holdings timeline from the full
// transaction history of one position. It never returns partial output: on error
// the DerivedState is empty.
func Replay(txs []types.Transaction, cfg *ReplayConfig) (types.DerivedState, error) {
	if len(txs) == 0 {
		return types.DerivedState{}, nil
	}
	ordered := append([]types.Transaction(nil), txs...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	key := ordered[0].Key()
	for _, tx := range ordered {
		if tx.Key() != key {
			return types.DerivedState{}, types.Validationf(MixedKeysErr, "cannot replay %s together with %s", tx.Key(), key)
		}
		if err := validate(tx); err != nil {
			return types.DerivedState{}, err
		}
	}
	if ordered[0].Side == types.SideTypeSell {
		return types.DerivedState{}, types.Validationf(FirstTransactionSellErr, "Transaction cannot be processed, first transaction should be BUY")
	}

	l := &ledger{key: key, scale: cfg.Scale(key.Currency)}
	l.open(ordered[0])
	for _, tx := range ordered[1:] {
		var err error
		switch tx.Side {
		case types.SideTypeBuy:
			l.buy(tx)
		case types.SideTypeSell:
			err = l.sell(tx)
		}
		if err != nil {
			return types.DerivedState{}, err
		}
	}
	return l.result(), nil
}

func validate(tx types.Transaction) error {
	if tx.Quantity <= 0 {
		return types.Validationf(InvalidTransactionErr, "Quantity must be greater than 0")
	}
	if !tx.Price.IsPositive() {
		return types.Validationf(InvalidTransactionErr, "Price must be greater than 0")
	}
	if !tx.Side.Valid() {
		return types.Validationf(InvalidTransactionErr, "unknown transaction type %q", tx.Side)
	}
	return nil
}

func (l *ledger) open(tx types.Transaction) {
	l.pos = position{quantity: tx.Quantity, averageCost: tx.Price}
	l.openInterval(tx.Date)
}

func (l *ledger) buy(tx types.Transaction) {
	newQty := l.pos.quantity + tx.Quantity
	l.pos.averageCost = averageCost(l.pos.averageCost, l.pos.quantity, tx.Price, tx.Quantity, l.scale)
	l.pos.quantity = newQty

	last, ok := l.openIndex()
	if ok && l.intervals[last].StartDate.Equal(tx.Date) {
		// same-day purchases merge into one interval
		l.intervals[last].Quantity = l.pos.quantity
		l.intervals[last].AverageCost = l.pos.averageCost
		return
	}
	if ok {
		l.intervals[last] = l.intervals[last].ClosedOn(dayBefore(tx.Date))
	}
	l.openInterval(tx.Date)
}

func (l *ledger) sell(tx types.Transaction) error {
	newQty := l.pos.quantity - tx.Quantity
	if newQty < 0 {
		return types.Validationf(ShortSellNotAllowedErr, "Cannot add SELL transaction, cannot sell more than current holding at this time")
	}
	l.realized = append(l.realized, types.RealizedPnL{
		UserID:   l.key.UserID,
		Ticker:   l.key.Ticker,
		Currency: l.key.Currency,
		Date:     tx.Date,
		Amount:   realizedAmount(tx.Price, l.pos.averageCost, tx.Quantity, l.scale),
	})
	l.pos.quantity = newQty

	if last, ok := l.openIndex(); ok {
		end := dayBefore(tx.Date)
		if l.intervals[last].StartDate.Equal(tx.Date) {
			end = tx.Date
		}
		l.intervals[last] = l.intervals[last].ClosedOn(end)
	}
	if newQty != 0 {
		l.openInterval(tx.Date)
	}
	return nil
}

func (l *ledger) openInterval(start time.Time) {
	l.intervals = append(l.intervals, types.HistoricalHolding{
		UserID:      l.key.UserID,
		Ticker:      l.key.Ticker,
		Currency:    l.key.Currency,
		Quantity:    l.pos.quantity,
		AverageCost: l.pos.averageCost,
		StartDate:   start,
	})
}

// openIndex returns the index of the open interval, if the position is not flat.
func (l *ledger) openIndex() (int, bool) {
	last := len(l.intervals) - 1
	if last < 0 || !l.intervals[last].Open() {
		return 0, false
	}
	return last, true
}

func (l *ledger) result() types.DerivedState {
	out := types.DerivedState{
		Realized:  l.realized,
		Intervals: l.intervals,
	}
	if l.pos.quantity > 0 {
		out.Holding = &types.Holding{
			UserID:      l.key.UserID,
			Ticker:      l.key.Ticker,
			Currency:    l.key.Currency,
			Quantity:    l.pos.quantity,
			AverageCost: l.pos.averageCost,
		}
	}
	return out
}

func dayBefore(d time.Time) time.Time {
	return d.AddDate(0, 0, -1)
}
