package market

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"portfolio/internal/cache"
	"portfolio/types"
)

// Cached serves prices and ticker data from a cache.Store, falling back to the
// wrapped provider on a miss. Cache failures are logged and never surface.
type Cached struct {
	next   Provider
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewCached(next Provider, store cache.Store, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, store: store, ttl: ttl, logger: logger}
}

func priceKey(ticker string) string  { return "price:" + ticker }
func tickerKey(ticker string) string { return "ticker:" + ticker }

func (c *Cached) LatestPrice(ctx context.Context, ticker string) (types.LatestPrice, error) {
	var p types.LatestPrice
	if c.load(ctx, priceKey(ticker), &p) {
		return p, nil
	}
	return c.Refresh(ctx, ticker)
}

// Refresh fetches the latest price from upstream and overwrites the cached copy.
func (c *Cached) Refresh(ctx context.Context, ticker string) (types.LatestPrice, error) {
	p, err := c.next.LatestPrice(ctx, ticker)
	if err != nil {
		return types.LatestPrice{}, err
	}
	c.save(ctx, priceKey(ticker), p)
	return p, nil
}

func (c *Cached) TickerData(ctx context.Context, ticker string) (types.TickerData, error) {
	var d types.TickerData
	if c.load(ctx, tickerKey(ticker), &d) {
		return d, nil
	}
	d, err := c.next.TickerData(ctx, ticker)
	if err != nil {
		return types.TickerData{}, err
	}
	c.save(ctx, tickerKey(ticker), d)
	return d, nil
}

func (c *Cached) load(ctx context.Context, key string, out any) bool {
	b, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		c.logger.Warn("cache entry unreadable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cached) save(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}
