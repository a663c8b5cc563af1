package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"portfolio/types"
)

// ReplaceDerived swaps the stored holding, intervals and realized records of key
// for state. Must run inside the same transaction that took LockKey.
func (q *Queries) ReplaceDerived(ctx context.Context, key types.PositionKey, state types.DerivedState) error {
	args := []any{key.UserID, key.Ticker, string(key.Currency)}
	for _, table := range []string{"stock_holdings", "historical_stock_holdings", "released_profit_loss"} {
		if _, err := q.db.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1 AND ticker = $2 AND currency = $3`, args...); err != nil {
			return fmt.Errorf("clear %s %s: %w", table, key, err)
		}
	}
	if h := state.Holding; h != nil {
		if _, err := q.db.Exec(ctx, `INSERT INTO stock_holdings (user_id, ticker, currency, quantity, average_price)
			VALUES ($1, $2, $3, $4, $5)`, key.UserID, key.Ticker, string(key.Currency), h.Quantity, h.AverageCost); err != nil {
			return fmt.Errorf("insert holding %s: %w", key, err)
		}
	}
	for i, iv := range state.Intervals {
		if _, err := q.db.Exec(ctx, `INSERT INTO historical_stock_holdings
			(user_id, ticker, currency, position, quantity, average_price, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			key.UserID, key.Ticker, string(key.Currency), i, iv.Quantity, iv.AverageCost, iv.StartDate, iv.EndDate); err != nil {
			return fmt.Errorf("insert interval %s #%d: %w", key, i, err)
		}
	}
	for i, r := range state.Realized {
		if _, err := q.db.Exec(ctx, `INSERT INTO released_profit_loss (user_id, ticker, currency, position, date, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			key.UserID, key.Ticker, string(key.Currency), i, r.Date, r.Amount); err != nil {
			return fmt.Errorf("insert realized %s #%d: %w", key, i, err)
		}
	}
	return nil
}

func (q *Queries) ListHoldings(ctx context.Context, userID string, currency *types.Currency) ([]types.Holding, error) {
	var cur *string
	if currency != nil {
		s := string(*currency)
		cur = &s
	}
	rows, err := q.db.Query(ctx, `SELECT user_id, ticker, currency, quantity, average_price FROM stock_holdings
		WHERE user_id = $1 AND ($2::text IS NULL OR currency = $2)
		ORDER BY ticker, currency`, userID, cur)
	if err != nil {
		return nil, fmt.Errorf("list holdings %s: %w", userID, err)
	}
	return collect(rows, func(row pgx.Row) (types.Holding, error) {
		var h types.Holding
		var c string
		var avg decimal.Decimal
		if err := row.Scan(&h.UserID, &h.Ticker, &c, &h.Quantity, &avg); err != nil {
			return h, err
		}
		h.Currency = types.Currency(c)
		h.AverageCost = avg
		return h, nil
	})
}

func (q *Queries) ListHistoricalHoldings(ctx context.Context, userID string) ([]types.HistoricalHolding, error) {
	rows, err := q.db.Query(ctx, `SELECT user_id, ticker, currency, quantity, average_price, start_date, end_date
		FROM historical_stock_holdings WHERE user_id = $1
		ORDER BY ticker, currency, position`, userID)
	if err != nil {
		return nil, fmt.Errorf("list historical holdings %s: %w", userID, err)
	}
	return collect(rows, func(row pgx.Row) (types.HistoricalHolding, error) {
		var h types.HistoricalHolding
		var c string
		var avg decimal.Decimal
		var end *time.Time
		if err := row.Scan(&h.UserID, &h.Ticker, &c, &h.Quantity, &avg, &h.StartDate, &end); err != nil {
			return h, err
		}
		h.Currency = types.Currency(c)
		h.AverageCost = avg
		h.StartDate = types.DateOf(h.StartDate)
		if end != nil {
			d := types.DateOf(*end)
			h.EndDate = &d
		}
		return h, nil
	})
}

func (q *Queries) ListRealizedPnL(ctx context.Context, userID string, ticker *string, currency *types.Currency) ([]types.RealizedPnL, error) {
	var cur *string
	if currency != nil {
		s := string(*currency)
		cur = &s
	}
	rows, err := q.db.Query(ctx, `SELECT user_id, ticker, currency, date, amount FROM released_profit_loss
		WHERE user_id = $1 AND ($2::text IS NULL OR ticker = $2) AND ($3::text IS NULL OR currency = $3)
		ORDER BY date, ticker, currency, position`, userID, ticker, cur)
	if err != nil {
		return nil, fmt.Errorf("list realized %s: %w", userID, err)
	}
	return collect(rows, func(row pgx.Row) (types.RealizedPnL, error) {
		var r types.RealizedPnL
		var c string
		var amount decimal.Decimal
		if err := row.Scan(&r.UserID, &r.Ticker, &c, &r.Date, &amount); err != nil {
			return r, err
		}
		r.Currency = types.Currency(c)
		r.Amount = amount
		r.Date = types.DateOf(r.Date)
		return r, nil
	})
}

// ListHeldTickers returns the distinct tickers with a non-zero holding across
// all users.
func (q *Queries) ListHeldTickers(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, `SELECT DISTINCT ticker FROM stock_holdings WHERE quantity > 0 ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list held tickers: %w", err)
	}
	return collect(rows, func(row pgx.Row) (string, error) {
		var s string
		err := row.Scan(&s)
		return s, err
	})
}
