package positions

import (
	"testing"
	"time"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/logger"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func day(s string) contracts.Day {
	d, err := contracts.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestReconstructor(now string) *Reconstructor {
	d := day(now)
	return New(logger.Nop(), fixedClock{t: d.Time()})
}

func TestReconstructBuySell(t *testing.T) {
	r := newTestReconstructor("2024-01-10")
	txs := []contracts.Transaction{
		{Ticker: "AAPL", Type: contracts.TxBuy, Shares: 10, Price: 150, Date: day("2024-01-02")},
		{Ticker: "AAPL", Type: contracts.TxSell, Shares: 4, Price: 155, Date: day("2024-01-05")},
	}

	table, err := r.Reconstruct(txs, Options{IncludeCash: true})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	// 9 calendar days, Jan 2 through Jan 10
	if len(table) != 9 {
		t.Fatalf("expected 9 days, got %d", len(table))
	}
	if got := table[day("2024-01-02")]["AAPL"]; got != 10 {
		t.Errorf("Jan 2: got %v, want 10", got)
	}
	if got := table[day("2024-01-04")]["AAPL"]; got != 10 {
		t.Errorf("Jan 4 (no activity): got %v, want 10", got)
	}
	if got := table[day("2024-01-05")]["AAPL"]; got != 6 {
		t.Errorf("Jan 5 (after sell): got %v, want 6", got)
	}
	if got := table[day("2024-01-10")]["AAPL"]; got != 6 {
		t.Errorf("Jan 10: got %v, want 6", got)
	}
}

func TestReconstructSameDaySequenceOrder(t *testing.T) {
	r := newTestReconstructor("2024-01-03")
	// ledger stores the sell first but sequence says buy happened first
	txs := []contracts.Transaction{
		{Ticker: "MSFT", Type: contracts.TxSell, Shares: 5, Price: 400, Date: day("2024-01-02"), Sequence: 2},
		{Ticker: "MSFT", Type: contracts.TxBuy, Shares: 8, Price: 398, Date: day("2024-01-02"), Sequence: 1},
	}

	table, err := r.Reconstruct(txs, Options{IncludeCash: true})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if got := table[day("2024-01-02")]["MSFT"]; got != 3 {
		t.Errorf("end of day position: got %v, want 3", got)
	}
}

func TestReconstructExcludesCash(t *testing.T) {
	r := newTestReconstructor("2024-01-05")
	txs := []contracts.Transaction{
		{Ticker: "AAPL", Type: contracts.TxBuy, Shares: 10, Price: 150, Date: day("2024-01-02")},
		{Ticker: contracts.CashTicker, Type: contracts.TxBuy, Shares: 500, Price: 1, Date: day("2024-01-02")},
	}

	table, err := r.Reconstruct(txs, Options{IncludeCash: false})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	row := table[day("2024-01-03")]
	if _, ok := row[contracts.CashTicker]; ok {
		t.Error("cash should be excluded")
	}
	if row["AAPL"] != 10 {
		t.Errorf("AAPL: got %v", row["AAPL"])
	}

	table, err = r.Reconstruct(txs, Options{IncludeCash: true})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if got := table[day("2024-01-03")][contracts.CashTicker]; got != 500 {
		t.Errorf("cash balance: got %v, want 500", got)
	}
}

func TestReconstructDateBounds(t *testing.T) {
	r := newTestReconstructor("2024-02-01")
	txs := []contracts.Transaction{
		{Ticker: "AAPL", Type: contracts.TxBuy, Shares: 10, Price: 150, Date: day("2024-01-02")},
	}

	table, err := r.Reconstruct(txs, Options{
		Start:       day("2024-01-05"),
		End:         day("2024-01-08"),
		IncludeCash: true,
	})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if len(table) != 4 {
		t.Fatalf("expected 4 days, got %d", len(table))
	}
	// position carried into the window even though the buy predates it
	if got := table[day("2024-01-05")]["AAPL"]; got != 10 {
		t.Errorf("carried position: got %v, want 10", got)
	}
	if _, ok := table[day("2024-01-02")]; ok {
		t.Error("days before Start should be absent")
	}
}

func TestReconstructEmptyAndInvalid(t *testing.T) {
	r := newTestReconstructor("2024-01-10")

	table, err := r.Reconstruct(nil, Options{IncludeCash: true})
	if err != nil {
		t.Fatalf("empty ledger should not error: %v", err)
	}
	if len(table) != 0 {
		t.Errorf("expected empty table, got %d days", len(table))
	}

	bad := []contracts.Transaction{
		{Ticker: "AAPL", Type: contracts.TxBuy, Shares: -1, Price: 150, Date: day("2024-01-02")},
	}
	if _, err := r.Reconstruct(bad, Options{IncludeCash: true}); err == nil {
		t.Error("expected error for invalid transaction")
	}
}

func TestReconstructNegativePositionAllowed(t *testing.T) {
	// ledger may record sells beyond holdings; the table reflects it
	r := newTestReconstructor("2024-01-05")
	txs := []contracts.Transaction{
		{Ticker: "TSLA", Type: contracts.TxSell, Shares: 5, Price: 250, Date: day("2024-01-02")},
	}
	table, err := r.Reconstruct(txs, Options{IncludeCash: true})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if got := table[day("2024-01-03")]["TSLA"]; got != -5 {
		t.Errorf("got %v, want -5", got)
	}
}
