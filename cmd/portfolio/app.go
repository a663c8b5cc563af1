package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio/internal/cache"
	"portfolio/internal/config"
	"portfolio/internal/engine"
	"portfolio/internal/ledger"
	"portfolio/internal/logger"
	"portfolio/internal/market"
	"portfolio/internal/notify"
	"portfolio/internal/repository"
	"portfolio/internal/valuation"
)

// app holds every wired dependency of one process.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	db        *repository.Database
	redis     redis.UniversalClient
	prices    *market.Cached
	ledger    *ledger.Service
	valuation *valuation.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath, envOnly)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := repository.NewDatabase(ctx, cfg.DB.URL, repository.Options{
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
		MaxConnLifetime: cfg.DB.ConnMaxLifetime,
		MaxConnIdleTime: cfg.DB.ConnMaxIdleTime,
	})
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{cfg: cfg, logger: log, db: db}

	if usesRedis(cfg) {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, continuing", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
	}

	var store cache.Store = cache.NewMemoryStore()
	if strings.EqualFold(cfg.Cache.Backend, "redis") {
		store = cache.NewRedisStore(a.redis, cfg.Cache.Prefix)
	}
	client := market.NewClient(cfg.Market.BaseURL, log.Named("market"), market.ClientOptions{
		Timeout:   cfg.Market.Timeout,
		PricePath: cfg.Market.PricePath,
		DatePath:  cfg.Market.DatePath,
	})
	a.prices = market.NewCached(client, store, cfg.Market.CacheTTL, log.Named("market"))

	opts := ledger.Options{PageSize: cfg.Ledger.DefaultPageSize}
	if cfg.Ledger.ValidateTickerCurrency {
		opts.Tickers = a.prices
	}
	replay := engine.NewReplayConfig(engine.DefaultScale, cfg.Ledger.Scales())
	a.ledger = ledger.NewService(db, replay, a.publisher(), log.Named("ledger"), opts)
	a.valuation = valuation.NewService(a.ledger, a.prices, log.Named("valuation"))

	log.Info("portfolio initialised",
		zap.String("env", cfg.App.Env),
		zap.Strings("currencies", cfg.Ledger.Currencies),
		zap.String("cache", cfg.Cache.Backend),
		zap.String("notify", cfg.Notify.Backend),
	)
	return a, nil
}

func (a *app) publisher() notify.Publisher {
	switch strings.ToLower(a.cfg.Notify.Backend) {
	case "redis":
		return notify.NewRedisPublisher(a.redis, a.cfg.Notify.Channel)
	case "none", "":
		return notify.Nop{}
	default:
		return notify.NewLogPublisher(a.logger.Named("notify"))
	}
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.db.Close()
	_ = a.logger.Sync()
}

func usesRedis(cfg config.Config) bool {
	return strings.EqualFold(cfg.Cache.Backend, "redis") || strings.EqualFold(cfg.Notify.Backend, "redis")
}
