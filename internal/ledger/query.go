package ledger

import (
	"context"
	"math"
	"strings"

	"portfolio/types"
)

// Page is one page of a user's transactions, newest first.
type Page struct {
	Items      []types.Transaction `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"totalPages"`
}

// ListTransactions returns page (1-based) of the user's transactions. A pageSize
// of 0 selects the configured default.
func (s *Service) ListTransactions(ctx context.Context, userID string, currency *types.Currency, page, pageSize int) (Page, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return Page{}, err
	}
	if page < 1 {
		return Page{}, types.Validationf(nil, "page must be greater than 0")
	}
	switch {
	case pageSize == 0:
		pageSize = s.pageSize
	case pageSize < 0:
		return Page{}, types.Validationf(nil, "pageSize must be greater than 0")
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	if page-1 > math.MaxInt32/pageSize {
		return Page{}, types.Validationf(nil, "page %d is out of range", page)
	}
	items, total, err := s.store.ListTransactionsPage(ctx, userID, currency, page, pageSize)
	if err != nil {
		return Page{}, types.Systemf(err, "failed to list transactions")
	}
	if items == nil {
		items = []types.Transaction{}
	}
	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Transactions returns every transaction of the user in replay order.
func (s *Service) Transactions(ctx context.Context, userID string) ([]types.Transaction, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListAllTransactions(ctx, userID)
	if err != nil {
		return nil, types.Systemf(err, "failed to list transactions")
	}
	return txs, nil
}

func (s *Service) Holdings(ctx context.Context, userID string, currency *types.Currency) ([]types.Holding, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.store.ListHoldings(ctx, userID, currency)
	if err != nil {
		return nil, types.Systemf(err, "failed to list holdings")
	}
	if holdings == nil {
		holdings = []types.Holding{}
	}
	return holdings, nil
}

func (s *Service) HistoricalHoldings(ctx context.Context, userID string) ([]types.HistoricalHolding, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	intervals, err := s.store.ListHistoricalHoldings(ctx, userID)
	if err != nil {
		return nil, types.Systemf(err, "failed to list historical holdings")
	}
	if intervals == nil {
		intervals = []types.HistoricalHolding{}
	}
	return intervals, nil
}

func (s *Service) RealizedPnL(ctx context.Context, userID string, ticker *string, currency *types.Currency) ([]types.RealizedPnL, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	if ticker != nil {
		up := strings.ToUpper(strings.TrimSpace(*ticker))
		ticker = &up
	}
	records, err := s.store.ListRealizedPnL(ctx, userID, ticker, currency)
	if err != nil {
		return nil, types.Systemf(err, "failed to list realized profit and loss")
	}
	if records == nil {
		records = []types.RealizedPnL{}
	}
	return records, nil
}

// requireUser returns userID trimmed the way AddTransaction stores it.
func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", types.Validationf(nil, "userId must not be blank")
	}
	return userID, nil
}
