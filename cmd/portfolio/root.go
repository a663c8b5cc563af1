package main

import (
	"context"

	"github.com/spf13/cobra"

	"portfolio/internal/config"
)

var (
	configPath string
	envOnly    bool
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Stock portfolio ledger service",
	Long: `Portfolio records BUY/SELL stock transactions per user and keeps, for every
(user, ticker, currency), the current holding, the realized profit and loss of
each sale and the timeline of historical holdings.

Commands:
  serve    - run the HTTP API and scheduled jobs
  migrate  - create or update the database schema
  rebuild  - recompute derived state from stored transactions
  export   - write transactions or realized P/L as CSV`,
	SilenceUsage: true,
}

// Execute runs the root command with ctx, which is cancelled on SIGINT/SIGTERM.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.Path(), "config file (env PORTFOLIO_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&envOnly, "env-only", false, "skip the config file and read PORTFOLIO_* environment variables only")
}
