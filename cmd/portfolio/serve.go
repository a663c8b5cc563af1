package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cronrunner "portfolio/internal/cron"
	"portfolio/internal/handler"
	"portfolio/internal/market"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	if a.cfg.DB.MigrateOnStart {
		if err := a.db.Migrate(ctx); err != nil {
			logger.Error("migrate failed", zap.Error(err))
			return err
		}
	}

	if strings.EqualFold(a.cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(logger.Named("http"), a.cfg.Server.CORSOrigins,
		&handler.HealthHandler{DB: a.db},
		&handler.StocksHandler{Ledger: a.ledger, Portfolio: a.valuation, Logger: logger.Named("http")},
	)
	srv := &http.Server{
		Addr:    a.cfg.Server.HTTPAddr,
		Handler: router,
	}

	runner := cronrunner.New(logger.Named("cron"), ctx)
	if a.cfg.Cron.Enabled {
		refresher := market.NewRefresher(a.db, a.prices, logger.Named("refresh"))
		if _, err := runner.Add("price_refresh", a.cfg.Cron.PriceRefresh, func(ctx context.Context) error {
			_, err := refresher.RunOnce(ctx)
			return err
		}); err != nil {
			return err
		}
		runner.Start()
		defer runner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
			return err
		}
	}

	logger.Info("shutting down", zap.Duration("timeout", a.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
