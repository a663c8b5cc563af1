package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"portfolio/types"
)

// LockKey takes a transaction-scoped advisory lock on key. Concurrent writers of
// the same key queue here until the holder commits or rolls back.
func (q *Queries) LockKey(ctx context.Context, key types.PositionKey) error {
	if _, err := q.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.String()); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	return nil
}

// ListTransactionsByKey returns the full history of key ordered by (date, seq).
func (q *Queries) ListTransactionsByKey(ctx context.Context, key types.PositionKey) ([]types.Transaction, error) {
	rows, err := q.db.Query(ctx, `SELECT `+transactionColumns+` FROM stock_transactions
		WHERE user_id = $1 AND ticker = $2 AND currency = $3
		ORDER BY date, seq`, key.UserID, key.Ticker, string(key.Currency))
	if err != nil {
		return nil, fmt.Errorf("list transactions %s: %w", key, err)
	}
	txs, err := collect(rows, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("scan transactions %s: %w", key, err)
	}
	return txs, nil
}

// GetTransaction retrieves a transaction by id.
func (q *Queries) GetTransaction(ctx context.Context, id string) (types.Transaction, error) {
	tx, err := scanTransaction(q.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM stock_transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Transaction{}, fmt.Errorf("transaction %s %w", id, ErrTransactionNotFound)
		}
		return types.Transaction{}, err
	}
	return tx, nil
}

// InsertTransaction stores tx and returns it with the assigned sequence.
func (q *Queries) InsertTransaction(ctx context.Context, tx types.Transaction) (types.Transaction, error) {
	err := q.db.QueryRow(ctx, `INSERT INTO stock_transactions
		(id, user_id, ticker, currency, date, quantity, price, transaction_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`,
		tx.ID, tx.UserID, tx.Ticker, string(tx.Currency), tx.Date, tx.Quantity, tx.Price, string(tx.Side),
	).Scan(&tx.Seq)
	if err != nil {
		return types.Transaction{}, fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	return tx, nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM stock_transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s %w", id, ErrTransactionNotFound)
	}
	return nil
}

// ListTransactionsPage returns one page of a user's transactions, newest first,
// together with the total row count. page is 1-based.
func (q *Queries) ListTransactionsPage(ctx context.Context, userID string, currency *types.Currency, page, pageSize int) ([]types.Transaction, int, error) {
	if page < 1 || pageSize < 1 || page-1 > math.MaxInt32/pageSize {
		return nil, 0, ErrInvalidPage
	}
	var cur *string
	if currency != nil {
		s := string(*currency)
		cur = &s
	}
	var total int
	if err := q.db.QueryRow(ctx, `SELECT count(*) FROM stock_transactions
		WHERE user_id = $1 AND ($2::text IS NULL OR currency = $2)`, userID, cur).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions %s: %w", userID, err)
	}
	rows, err := q.db.Query(ctx, `SELECT `+transactionColumns+` FROM stock_transactions
		WHERE user_id = $1 AND ($2::text IS NULL OR currency = $2)
		ORDER BY date DESC, seq DESC
		LIMIT $3 OFFSET $4`, userID, cur, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions %s: %w", userID, err)
	}
	txs, err := collect(rows, scanTransaction)
	if err != nil {
		return nil, 0, fmt.Errorf("scan transactions %s: %w", userID, err)
	}
	return txs, total, nil
}

// ListAllTransactions returns every transaction of a user ordered by (date, seq).
func (q *Queries) ListAllTransactions(ctx context.Context, userID string) ([]types.Transaction, error) {
	rows, err := q.db.Query(ctx, `SELECT `+transactionColumns+` FROM stock_transactions
		WHERE user_id = $1 ORDER BY date, seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions %s: %w", userID, err)
	}
	return collect(rows, scanTransaction)
}

// ListKeys returns every position key that has at least one transaction.
func (q *Queries) ListKeys(ctx context.Context) ([]types.PositionKey, error) {
	rows, err := q.db.Query(ctx, `SELECT DISTINCT user_id, ticker, currency FROM stock_transactions
		ORDER BY user_id, ticker, currency`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return collect(rows, func(row pgx.Row) (types.PositionKey, error) {
		var k types.PositionKey
		var cur string
		if err := row.Scan(&k.UserID, &k.Ticker, &cur); err != nil {
			return k, err
		}
		k.Currency = types.Currency(cur)
		return k, nil
	})
}
