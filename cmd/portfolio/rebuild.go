package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"portfolio/types"
)

var (
	rebuildAll      bool
	rebuildUser     string
	rebuildTicker   string
	rebuildCurrency string
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute holdings, realized P/L and historical holdings from stored transactions",
	Long: `Rebuild replays the stored transaction history and replaces the derived state.

Examples:
  portfolio rebuild --user u1 --ticker AAPL --currency USD
  portfolio rebuild --all`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
	rebuildCmd.Flags().BoolVar(&rebuildAll, "all", false, "rebuild every stored position")
	rebuildCmd.Flags().StringVar(&rebuildUser, "user", "", "user id")
	rebuildCmd.Flags().StringVar(&rebuildTicker, "ticker", "", "ticker")
	rebuildCmd.Flags().StringVar(&rebuildCurrency, "currency", "", "currency")
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	key := types.PositionKey{
		UserID:   strings.TrimSpace(rebuildUser),
		Ticker:   strings.ToUpper(strings.TrimSpace(rebuildTicker)),
		Currency: types.Currency(strings.ToUpper(strings.TrimSpace(rebuildCurrency))),
	}
	if !rebuildAll && (key.UserID == "" || key.Ticker == "" || key.Currency == "") {
		return errors.New("either --all or --user, --ticker and --currency are required")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	out := cmd.OutOrStdout()

	if !rebuildAll {
		state, err := a.ledger.Rebuild(cmd.Context(), key)
		if err != nil {
			return err
		}
		qty := int64(0)
		if state.Holding != nil {
			qty = state.Holding.Quantity
		}
		fmt.Fprintf(out, "%s: quantity %d, %d intervals, %d realized records\n", key, qty, len(state.Intervals), len(state.Realized))
		return nil
	}

	var bar *progressbar.ProgressBar
	rebuilt, err := a.ledger.RebuildAll(cmd.Context(), func(done, total int) {
		if bar == nil {
			bar = initProgressBar(total)
		}
		_ = bar.Set(done)
	})
	if bar != nil {
		_ = bar.Finish()
	}
	fmt.Fprintf(out, "\nrebuilt %d positions\n", rebuilt)
	return err
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Rebuilding positions..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
