package ledger

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"portfolio/internal/engine"
	"portfolio/internal/notify"
	"portfolio/internal/repository"
	"portfolio/types"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var minPrice = decimal.New(1, -2)

// Store is the persistence the service needs. *repository.Database satisfies it.
type Store interface {
	InTx(ctx context.Context, fn func(repository.Tx) error) error
	ListTransactionsPage(ctx context.Context, userID string, currency *types.Currency, page, pageSize int) ([]types.Transaction, int, error)
	ListAllTransactions(ctx context.Context, userID string) ([]types.Transaction, error)
	ListHoldings(ctx context.Context, userID string, currency *types.Currency) ([]types.Holding, error)
	ListHistoricalHoldings(ctx context.Context, userID string) ([]types.HistoricalHolding, error)
	ListRealizedPnL(ctx context.Context, userID string, ticker *string, currency *types.Currency) ([]types.RealizedPnL, error)
	ListKeys(ctx context.Context) ([]types.PositionKey, error)
}

// TickerValidator looks up reference data for a ticker.
type TickerValidator interface {
	TickerData(ctx context.Context, ticker string) (types.TickerData, error)
}

type Options struct {
	PageSize int
	// Tickers, when set, rejects transactions whose currency differs from the
	// ticker's listing currency.
	Tickers TickerValidator
}

type Service struct {
	store     Store
	replay    *engine.ReplayConfig
	publisher notify.Publisher
	tickers   TickerValidator
	pageSize  int
	logger    *zap.Logger
}

func NewService(store Store, replay *engine.ReplayConfig, publisher notify.Publisher, logger *zap.Logger, opts Options) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		store:     store,
		replay:    replay,
		publisher: publisher,
		tickers:   opts.Tickers,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// NewTransaction is the input of AddTransaction.
type NewTransaction struct {
	UserID   string
	Ticker   string
	Currency types.Currency
	Date     time.Time
	Quantity int64
	Price    decimal.Decimal
	Side     types.Side
}

// AddTransaction records a transaction and recomputes the derived state of its
// position. Nothing is written when the resulting history would be invalid.
func (s *Service) AddTransaction(ctx context.Context, in NewTransaction) (types.Transaction, error) {
	tx, err := s.prepare(ctx, in)
	if err != nil {
		return types.Transaction{}, err
	}
	key := tx.Key()

	var stored types.Transaction
	err = s.store.InTx(ctx, func(q repository.Tx) error {
		if err := q.LockKey(ctx, key); err != nil {
			return err
		}
		history, err := q.ListTransactionsByKey(ctx, key)
		if err != nil {
			return err
		}
		candidate := tx
		// the store assigns a seq greater than any existing one
		candidate.Seq = math.MaxInt64
		state, err := engine.Replay(append(history, candidate), s.replay)
		if err != nil {
			return err
		}
		if stored, err = q.InsertTransaction(ctx, tx); err != nil {
			return err
		}
		return q.ReplaceDerived(ctx, key, state)
	})
	if err != nil {
		s.logger.Warn("add transaction rejected", zap.Stringer("key", key), zap.Error(err))
		return types.Transaction{}, classify(err, "failed to add transaction")
	}
	s.logger.Info("transaction added",
		zap.Stringer("id", stored.ID),
		zap.Stringer("key", key),
		zap.String("side", string(stored.Side)),
		zap.Int64("quantity", stored.Quantity),
	)
	s.publish(ctx, notify.KindTransactionAdded, key)
	return stored, nil
}

// DeleteTransaction removes a transaction and recomputes the derived state of its
// position from the remaining history.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return types.Validationf(err, "Invalid transaction id %q", id)
	}
	id = parsed.String()

	var key types.PositionKey
	err = s.store.InTx(ctx, func(q repository.Tx) error {
		existing, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		key = existing.Key()
		if err := q.LockKey(ctx, key); err != nil {
			return err
		}
		history, err := q.ListTransactionsByKey(ctx, key)
		if err != nil {
			return err
		}
		remaining := make([]types.Transaction, 0, len(history))
		found := false
		for _, t := range history {
			if t.ID == parsed {
				found = true
				continue
			}
			remaining = append(remaining, t)
		}
		if !found {
			// removed by a concurrent writer while we waited for the lock
			return repository.ErrTransactionNotFound
		}
		state, err := engine.Replay(remaining, s.replay)
		if err != nil {
			return err
		}
		if err := q.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		return q.ReplaceDerived(ctx, key, state)
	})
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return types.NotFoundf(err, "Transaction with id %s not found", id)
		}
		s.logger.Warn("delete transaction rejected", zap.String("id", id), zap.Error(err))
		return classify(err, "failed to delete transaction")
	}
	s.logger.Info("transaction deleted", zap.String("id", id), zap.Stringer("key", key))
	s.publish(ctx, notify.KindTransactionDeleted, key)
	return nil
}

// Rebuild recomputes and stores the derived state of key from its stored history.
func (s *Service) Rebuild(ctx context.Context, key types.PositionKey) (types.DerivedState, error) {
	var state types.DerivedState
	err := s.store.InTx(ctx, func(q repository.Tx) error {
		if err := q.LockKey(ctx, key); err != nil {
			return err
		}
		history, err := q.ListTransactionsByKey(ctx, key)
		if err != nil {
			return err
		}
		if state, err = engine.Replay(history, s.replay); err != nil {
			return err
		}
		return q.ReplaceDerived(ctx, key, state)
	})
	if err != nil {
		return types.DerivedState{}, classify(err, "failed to rebuild "+key.String())
	}
	s.publish(ctx, notify.KindPositionRebuilt, key)
	return state, nil
}

// RebuildAll rebuilds every stored position. A failing key does not stop the
// others; all failures are returned joined. progress may be nil.
func (s *Service) RebuildAll(ctx context.Context, progress func(done, total int)) (int, error) {
	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		return 0, types.Systemf(err, "failed to list positions")
	}
	var errs []error
	rebuilt := 0
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return rebuilt, err
		}
		if _, err := s.Rebuild(ctx, key); err != nil {
			s.logger.Error("rebuild failed", zap.Stringer("key", key), zap.Error(err))
			errs = append(errs, err)
		} else {
			rebuilt++
		}
		if progress != nil {
			progress(i+1, len(keys))
		}
	}
	return rebuilt, errors.Join(errs...)
}

func (s *Service) prepare(ctx context.Context, in NewTransaction) (types.Transaction, error) {
	tx := types.Transaction{
		ID:       uuid.New(),
		UserID:   strings.TrimSpace(in.UserID),
		Ticker:   strings.ToUpper(strings.TrimSpace(in.Ticker)),
		Currency: types.Currency(strings.ToUpper(strings.TrimSpace(string(in.Currency)))),
		Date:     types.DateOf(in.Date),
		Quantity: in.Quantity,
		Price:    in.Price,
		Side:     types.Side(strings.ToUpper(string(in.Side))),
	}
	switch {
	case tx.UserID == "":
		return tx, types.Validationf(nil, "userId must not be blank")
	case tx.Ticker == "":
		return tx, types.Validationf(nil, "ticker must not be blank")
	case in.Date.IsZero():
		return tx, types.Validationf(nil, "date is required")
	case tx.Quantity < 1:
		return tx, types.Validationf(engine.InvalidTransactionErr, "Quantity must be greater than 0")
	case tx.Price.LessThan(minPrice):
		return tx, types.Validationf(engine.InvalidTransactionErr, "Price must be greater than 0")
	case !tx.Side.Valid():
		return tx, types.Validationf(engine.InvalidTransactionErr, "Unknown transaction type %q", in.Side)
	case !s.replay.Supports(tx.Currency):
		return tx, types.Validationf(nil, "Unsupported currency %q", in.Currency)
	}
	if s.tickers != nil {
		data, err := s.tickers.TickerData(ctx, tx.Ticker)
		if err != nil {
			return tx, classify(err, "failed to look up ticker "+tx.Ticker)
		}
		if data.Currency != "" && !strings.EqualFold(string(data.Currency), string(tx.Currency)) {
			return tx, types.Validationf(nil, "Ticker %s is traded in %s, not %s", tx.Ticker, data.Currency, tx.Currency)
		}
	}
	return tx, nil
}

func (s *Service) publish(ctx context.Context, kind notify.Kind, key types.PositionKey) {
	e := notify.NewEvent(kind, key)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("notification failed", zap.String("event_id", e.ID), zap.Stringer("key", key), zap.Error(err))
	}
}

// classify keeps typed errors as they are and turns everything else into a
// SystemError.
func classify(err error, msg string) error {
	if types.IsValidation(err) || types.IsNotFound(err) || types.IsSystem(err) {
		return err
	}
	return types.Systemf(err, "%s", msg)
}
