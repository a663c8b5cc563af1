package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"portfolio/types"
)

// WriteFile creates path and hands it to write.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTransactionsCSV writes transactions to any io.Writer as CSV.
func WriteTransactionsCSV(w io.Writer, txs []types.Transaction) error {
	cw := csv.NewWriter(w)

	header := []string{
		"id",
		"user_id",
		"ticker",
		"currency",
		"date", // YYYY-MM-DD
		"transaction_type",
		"quantity",
		"price",
		"amount",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range txs {
		gross := tx.Price.Mul(decimal.NewFromInt(tx.Quantity))
		record := []string{
			tx.ID.String(),
			tx.UserID,
			tx.Ticker,
			string(tx.Currency),
			tx.Date.Format(types.DateLayout),
			string(tx.Side),
			strconv.FormatInt(tx.Quantity, 10),
			tx.Price.String(),
			Display(gross, tx.Currency),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record %s: %w", tx.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteRealizedCSV writes realized profit and loss records as CSV.
func WriteRealizedCSV(w io.Writer, records []types.RealizedPnL) error {
	cw := csv.NewWriter(w)

	header := []string{"user_id", "ticker", "currency", "date", "amount", "display"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		record := []string{
			r.UserID,
			r.Ticker,
			string(r.Currency),
			r.Date.Format(types.DateLayout),
			r.Amount.String(),
			Display(r.Amount, r.Currency),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Display formats amount with the currency's symbol and minor-unit digits.
func Display(amount decimal.Decimal, currency types.Currency) string {
	// to get a never nil currency I need to go through the Money constructor
	cur := money.New(0, string(currency)).Currency()
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
	return money.New(minor, string(currency)).Display()
}
