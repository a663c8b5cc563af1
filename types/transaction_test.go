package types

import (
	"testing"
	"time"
)

func TestTransactionBefore(t *testing.T) {
	d1 := time.Date(2023, 10, 9, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	tests := []struct {
		name string
		a, b Transaction
		want bool
	}{
		{"earlier date", Transaction{Date: d1, Seq: 5}, Transaction{Date: d2, Seq: 1}, true},
		{"later date", Transaction{Date: d2, Seq: 1}, Transaction{Date: d1, Seq: 5}, false},
		{"same date lower seq", Transaction{Date: d1, Seq: 1}, Transaction{Date: d1, Seq: 2}, true},
		{"same date higher seq", Transaction{Date: d1, Seq: 3}, Transaction{Date: d1, Seq: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(tt.b); got != tt.want {
				t.Errorf("Before() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateOf(t *testing.T) {
	in := time.Date(2023, 10, 10, 23, 59, 0, 0, time.FixedZone("X", 3600))
	got := DateOf(in)
	want := time.Date(2023, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf() = %v, want %v", got, want)
	}
}

func TestHistoricalHoldingClosedOnCopies(t *testing.T) {
	start := time.Date(2023, 10, 10, 0, 0, 0, 0, time.UTC)
	open := HistoricalHolding{Quantity: 10, StartDate: start}
	closed := open.ClosedOn(start.AddDate(0, 0, 3))
	if !open.Open() {
		t.Errorf("original interval must stay open")
	}
	if closed.Open() || !closed.EndDate.Equal(start.AddDate(0, 0, 3)) {
		t.Errorf("closed interval end = %v", closed.EndDate)
	}
}
