package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"portfolio/internal/ledger"
	"portfolio/types"
)

type LedgerService interface {
	AddTransaction(ctx context.Context, in ledger.NewTransaction) (types.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, userID string, currency *types.Currency, page, pageSize int) (ledger.Page, error)
	Holdings(ctx context.Context, userID string, currency *types.Currency) ([]types.Holding, error)
	HistoricalHoldings(ctx context.Context, userID string) ([]types.HistoricalHolding, error)
	RealizedPnL(ctx context.Context, userID string, ticker *string, currency *types.Currency) ([]types.RealizedPnL, error)
	Rebuild(ctx context.Context, key types.PositionKey) (types.DerivedState, error)
}

type PortfolioService interface {
	Portfolio(ctx context.Context, userID string) (types.StocksPortfolio, error)
}

type StocksHandler struct {
	Ledger    LedgerService
	Portfolio PortfolioService
	Logger    *zap.Logger
}

func (h *StocksHandler) Register(r *gin.Engine) {
	g := r.Group("/v1/stocks")
	g.POST("/transaction", h.addTransaction)
	g.DELETE("/transaction/:id", h.deleteTransaction)
	g.GET("/transactions", h.transactions)
	g.GET("/holdings", h.holdings)
	g.GET("/portfolio", h.portfolio)
	g.GET("/historicalHoldings", h.historicalHoldings)
	g.GET("/realizedPnL", h.realizedPnL)
	g.POST("/rebuild", h.rebuild)
}

type transactionRequest struct {
	UserID          string          `json:"userId"`
	Ticker          string          `json:"ticker"`
	Date            string          `json:"date"`
	Quantity        int64           `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	TransactionType string          `json:"transactionType"`
}

func (h *StocksHandler) addTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	date, err := time.Parse(types.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		Error(c, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD", nil)
		return
	}
	tx, err := h.Ledger.AddTransaction(c.Request.Context(), ledger.NewTransaction{
		UserID:   req.UserID,
		Ticker:   req.Ticker,
		Currency: types.Currency(req.Currency),
		Date:     date,
		Quantity: req.Quantity,
		Price:    req.Price,
		Side:     types.Side(req.TransactionType),
	})
	if err != nil {
		Fail(c, h.logger(), err)
		return
	}
	Created(c, tx)
}

func (h *StocksHandler) deleteTransaction(c *gin.Context) {
	if err := h.Ledger.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, h.logger(), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StocksHandler) transactions(c *gin.Context) {
	page, ok := intParam(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := intParam(c, "pageSize", 0)
	if !ok {
		return
	}
	result, err := h.Ledger.ListTransactions(c.Request.Context(), c.Query("userId"), currencyQuery(c), page, pageSize)
	if err != nil {
		Fail(c, h.logger(), err)
		return
	}
	Ok(c, result.Items, map[string]any{
		"page":       result.Page,
		"pageSize":   result.PageSize,
		"total":      result.Total,
		"totalPages": result.TotalPages,
	})
}

func (h *StocksHandler) holdings(c *gin.Context) {
	holdings, err := h.Ledger.Holdings(c.Request.Context(), c.Query("userId"), currencyQuery(c))
	if err != nil {
		Fail(c, h.logger(), err)
		return
	}
	Ok(c, holdings, nil)
}

func (h *StocksHandler) portfolio(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		Error(c, http.StatusBadRequest, "userId must not be blank", nil)
		return
	}
	p, err := h.Portfolio.Portfolio(c.Request.Context(), userID)
	if err != nil {
		Fail(c, h.logger(), err)
		return
	}
	Ok(c, p, nil)
}

func (h *StocksHandler) historicalHoldings(c *gin.Context) {
	intervals, err := h.Ledger.HistoricalHoldings(c.Request.Context(), c.Query("userId"))
	if err != nil {
		Fail(c, h.logger(), err)
		return
	}
	Ok(c, intervals, nil)
}

func (h *StocksHandler) realizedPnL(c *gin.Context) {
	var ticker *string
	if v := strings.TrimSpace(c.Query("ticker")); v != "" {
		ticker = &v
	}
	records, err := h.Ledger.RealizedPnL(c.Request.Context(), c.Query("userId"), ticker, currencyQuery(c))
	if err != nil {
		Fail(c, h.logger(), err)
		return
	}
	Ok(c, records, nil)
}

func (h *StocksHandler) rebuild(c *gin.Context) {
	var key types.PositionKey
	if err := c.ShouldBindJSON(&key); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	key.UserID = strings.TrimSpace(key.UserID)
	key.Ticker = strings.ToUpper(strings.TrimSpace(key.Ticker))
	key.Currency = types.Currency(strings.ToUpper(string(key.Currency)))
	if key.UserID == "" || key.Ticker == "" || key.Currency == "" {
		Error(c, http.StatusBadRequest, "userId, ticker and currency are required", nil)
		return
	}
	state, err := h.Ledger.Rebuild(c.Request.Context(), key)
	if err != nil {
		Fail(c, h.logger(), err)
		return
	}
	Ok(c, state, nil)
}

func (h *StocksHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func currencyQuery(c *gin.Context) *types.Currency {
	v := strings.ToUpper(strings.TrimSpace(c.Query("currency")))
	if v == "" {
		return nil
	}
	cur := types.Currency(v)
	return &cur
}

// intParam reads an optional integer query parameter, answering 400 itself when
// the value is malformed.
func intParam(c *gin.Context, key string, def int) (int, bool) {
	val := c.Query(key)
	if val == "" {
		return def, true
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		Error(c, http.StatusBadRequest, key+" must be an integer", nil)
		return 0, false
	}
	return i, true
}
