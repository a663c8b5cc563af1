package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"portfolio/types"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is the write surface available inside Database.InTx.
type Tx interface {
	LockKey(ctx context.Context, key types.PositionKey) error
	ListTransactionsByKey(ctx context.Context, key types.PositionKey) ([]types.Transaction, error)
	GetTransaction(ctx context.Context, id string) (types.Transaction, error)
	InsertTransaction(ctx context.Context, tx types.Transaction) (types.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ReplaceDerived(ctx context.Context, key types.PositionKey, state types.DerivedState) error
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const transactionColumns = `id, seq, user_id, ticker, currency, date, quantity, price, transaction_type`

func scanTransaction(row pgx.Row) (types.Transaction, error) {
	var (
		tx       types.Transaction
		currency string
		side     string
		price    decimal.Decimal
	)
	if err := row.Scan(&tx.ID, &tx.Seq, &tx.UserID, &tx.Ticker, &currency, &tx.Date, &tx.Quantity, &price, &side); err != nil {
		return types.Transaction{}, err
	}
	tx.Currency = types.Currency(currency)
	tx.Side = types.Side(side)
	tx.Price = price
	tx.Date = types.DateOf(tx.Date)
	return tx, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
