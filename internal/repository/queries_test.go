package repository

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"portfolio/types"
)

type execCall struct {
	sql  string
	args []any
}

// mockDB records statements and answers QueryRow/Query from canned values.
type mockDB struct {
	execs    []execCall
	execTag  pgconn.CommandTag
	execErr  error
	row      []any
	rowErr   error
	rows     [][]any
	queryErr error
	queries  []execCall
}

func (m *mockDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.execs = append(m.execs, execCall{sql, args})
	return m.execTag, m.execErr
}

func (m *mockDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	m.queries = append(m.queries, execCall{sql, args})
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return &mockRows{data: m.rows, pos: -1}, nil
}

func (m *mockDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.queries = append(m.queries, execCall{sql, args})
	return mockRow{values: m.row, err: m.rowErr}
}

type mockRow struct {
	values []any
	err    error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type mockRows struct {
	pgx.Rows
	data [][]any
	pos  int
}

func (r *mockRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *mockRows) Scan(dest ...any) error { return assign(dest, r.data[r.pos]) }
func (r *mockRows) Err() error             { return nil }
func (r *mockRows) Close()                 {}

func assign(dest []any, src []any) error {
	if len(dest) != len(src) {
		return errors.New("column count mismatch")
	}
	for i := range dest {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(src[i]))
	}
	return nil
}

func txRow(id uuid.UUID, seq int64, date time.Time, qty int64, price string, side string) []any {
	return []any{id, seq, "u1", "AAPL", "USD", date, qty, decimal.RequireFromString(price), side}
}

func TestQueries_GetTransaction(t *testing.T) {
	id := uuid.New()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		row     []any
		rowErr  error
		wantErr error
	}{
		{"should throw ErrTransactionNotFound", nil, pgx.ErrNoRows, ErrTransactionNotFound},
		{"should pass through other errors", nil, errors.New("conn reset"), nil},
		{"should return transaction", txRow(id, 7, date, 10, "1.50", "SELL"), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New(&mockDB{row: tt.row, rowErr: tt.rowErr})
			got, err := q.GetTransaction(context.Background(), id.String())
			if tt.rowErr != nil {
				if err == nil {
					t.Fatalf("GetTransaction() expected error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("GetTransaction() error = %v, wantErr %v", err, tt.wantErr)
				}
				if tt.wantErr == nil && errors.Is(err, ErrTransactionNotFound) {
					t.Errorf("GetTransaction() error = %v, should not be not-found", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetTransaction() error = %v", err)
			}
			if got.ID != id || got.Seq != 7 || got.Side != types.SideTypeSell || got.Currency != types.CurrencyUSD {
				t.Errorf("GetTransaction() = %+v", got)
			}
			if !got.Price.Equal(decimal.RequireFromString("1.5")) || !got.Date.Equal(date) {
				t.Errorf("GetTransaction() price/date = %v %v", got.Price, got.Date)
			}
		})
	}
}

func TestQueries_DeleteTransaction(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr error
	}{
		{"should throw ErrTransactionNotFound", "DELETE 0", ErrTransactionNotFound},
		{"should delete", "DELETE 1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New(&mockDB{execTag: pgconn.NewCommandTag(tt.tag)})
			err := q.DeleteTransaction(context.Background(), uuid.NewString())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DeleteTransaction() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQueries_ListTransactionsPage(t *testing.T) {
	usd := types.CurrencyUSD
	tests := []struct {
		name       string
		page       int
		pageSize   int
		currency   *types.Currency
		wantErr    error
		wantOffset int
		wantCur    *string
	}{
		{"should reject page 0", 0, 10, nil, ErrInvalidPage, 0, nil},
		{"should reject page size 0", 1, 0, nil, ErrInvalidPage, 0, nil},
		{"should reject offset overflow", math.MaxInt, 10, nil, ErrInvalidPage, 0, nil},
		{"first page", 1, 10, nil, nil, 0, nil},
		{"third page with currency", 3, 5, &usd, nil, 10, func() *string { s := "USD"; return &s }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mockDB{row: []any{42}, rows: [][]any{txRow(uuid.New(), 1, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 1, "3", "BUY")}}
			got, total, err := New(db).ListTransactionsPage(context.Background(), "u1", tt.currency, tt.page, tt.pageSize)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ListTransactionsPage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if total != 42 || len(got) != 1 {
				t.Errorf("ListTransactionsPage() total = %d, len = %d", total, len(got))
			}
			list := db.queries[1]
			if !strings.Contains(list.sql, "ORDER BY date DESC, seq DESC") {
				t.Errorf("ListTransactionsPage() must order newest first: %s", list.sql)
			}
			if list.args[2] != tt.pageSize || list.args[3] != tt.wantOffset {
				t.Errorf("ListTransactionsPage() limit/offset = %v/%v", list.args[2], list.args[3])
			}
			cur, _ := list.args[1].(*string)
			if (cur == nil) != (tt.wantCur == nil) || (cur != nil && *cur != *tt.wantCur) {
				t.Errorf("ListTransactionsPage() currency arg = %v", list.args[1])
			}
		})
	}
}

func TestQueries_ReplaceDerived(t *testing.T) {
	key := types.PositionKey{UserID: "u1", Ticker: "AAPL", Currency: types.CurrencyUSD}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	full := types.DerivedState{
		Holding: &types.Holding{Quantity: 5, AverageCost: decimal.NewFromInt(10)},
		Intervals: []types.HistoricalHolding{
			{Quantity: 10, AverageCost: decimal.NewFromInt(10), StartDate: start, EndDate: &end},
			{Quantity: 5, AverageCost: decimal.NewFromInt(10), StartDate: end.AddDate(0, 0, 1)},
		},
		Realized: []types.RealizedPnL{{Date: end.AddDate(0, 0, 1), Amount: decimal.NewFromInt(25)}},
	}
	tests := []struct {
		name      string
		state     types.DerivedState
		wantExecs int
	}{
		{"flat position only clears", types.DerivedState{}, 3},
		{"full state", full, 3 + 1 + 2 + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mockDB{}
			if err := New(db).ReplaceDerived(context.Background(), key, tt.state); err != nil {
				t.Fatalf("ReplaceDerived() error = %v", err)
			}
			if len(db.execs) != tt.wantExecs {
				t.Fatalf("ReplaceDerived() execs = %d, want %d", len(db.execs), tt.wantExecs)
			}
			for _, e := range db.execs[:3] {
				if !strings.HasPrefix(e.sql, "DELETE") {
					t.Errorf("ReplaceDerived() must clear before insert, got %s", e.sql)
				}
			}
		})
	}
}

func TestQueries_ReplaceDerivedError(t *testing.T) {
	db := &mockDB{execErr: errors.New("boom")}
	err := New(db).ReplaceDerived(context.Background(), types.PositionKey{UserID: "u"}, types.DerivedState{})
	if err == nil || len(db.execs) != 1 {
		t.Errorf("ReplaceDerived() should stop at first failure, err = %v, execs = %d", err, len(db.execs))
	}
}

func TestQueries_LockKey(t *testing.T) {
	db := &mockDB{}
	key := types.PositionKey{UserID: "u1", Ticker: "D05", Currency: types.CurrencySGD}
	if err := New(db).LockKey(context.Background(), key); err != nil {
		t.Fatalf("LockKey() error = %v", err)
	}
	if !strings.Contains(db.execs[0].sql, "pg_advisory_xact_lock") || db.execs[0].args[0] != "u1/D05/SGD" {
		t.Errorf("LockKey() = %+v", db.execs[0])
	}
}
