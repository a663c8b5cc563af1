package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"portfolio/internal/export"
)

var (
	exportUser   string
	exportKind   string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a user's transactions or realized P/L as CSV",
	Long: `Examples:
  portfolio export --user u1 --kind transactions -o transactions.csv
  portfolio export --user u1 --kind realized`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportUser, "user", "", "user id (required)")
	exportCmd.Flags().StringVar(&exportKind, "kind", "transactions", "transactions | realized")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "output file, - for stdout")
	_ = exportCmd.MarkFlagRequired("user")
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	var write func(io.Writer) error
	switch strings.ToLower(exportKind) {
	case "transactions":
		txs, err := a.ledger.Transactions(ctx, exportUser)
		if err != nil {
			return err
		}
		write = func(w io.Writer) error { return export.WriteTransactionsCSV(w, txs) }
	case "realized":
		records, err := a.ledger.RealizedPnL(ctx, exportUser, nil, nil)
		if err != nil {
			return err
		}
		write = func(w io.Writer) error { return export.WriteRealizedCSV(w, records) }
	default:
		return fmt.Errorf("unknown export kind %q", exportKind)
	}

	if exportOutput == "-" {
		return write(cmd.OutOrStdout())
	}
	return export.WriteFile(exportOutput, write)
}
