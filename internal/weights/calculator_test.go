package weights

import (
	"math"
	"testing"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/logger"
)

func day(s string) contracts.Day {
	d, err := contracts.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeBasicWeights(t *testing.T) {
	c := New(logger.Nop())

	positions := contracts.PositionTable{
		day("2024-01-02"): {"AAPL": 10, "MSFT": 5},
	}
	prices := map[string]contracts.PriceHistory{
		"AAPL": {Ticker: "AAPL", Candles: []contracts.Candle{
			{Date: day("2024-01-02"), Close: 100},
		}},
		"MSFT": {Ticker: "MSFT", Candles: []contracts.Candle{
			{Date: day("2024-01-02"), Close: 200},
		}},
	}

	w := c.Compute(positions, prices)
	row := w[day("2024-01-02")]
	// AAPL: 1000, MSFT: 1000 → 0.5 each
	if !almostEqual(row["AAPL"], 0.5) || !almostEqual(row["MSFT"], 0.5) {
		t.Errorf("got %v", row)
	}
}

func TestComputeCashAtParValue(t *testing.T) {
	c := New(logger.Nop())

	positions := contracts.PositionTable{
		day("2024-01-02"): {"AAPL": 10, contracts.CashTicker: 500},
	}
	prices := map[string]contracts.PriceHistory{
		"AAPL": {Ticker: "AAPL", Candles: []contracts.Candle{
			{Date: day("2024-01-02"), Close: 150},
		}},
	}

	w := c.Compute(positions, prices)
	row := w[day("2024-01-02")]
	// AAPL: 1500, cash: 500, total 2000
	if !almostEqual(row["AAPL"], 0.75) {
		t.Errorf("AAPL weight: got %v, want 0.75", row["AAPL"])
	}
	if !almostEqual(row[contracts.CashTicker], 0.25) {
		t.Errorf("cash weight: got %v, want 0.25", row[contracts.CashTicker])
	}
}

func TestComputeForwardFillsWeekend(t *testing.T) {
	c := New(logger.Nop())

	// Jan 6-7 2024 is a weekend; Friday close carries over
	positions := contracts.PositionTable{
		day("2024-01-05"): {"AAPL": 10},
		day("2024-01-06"): {"AAPL": 10},
	}
	prices := map[string]contracts.PriceHistory{
		"AAPL": {Ticker: "AAPL", Candles: []contracts.Candle{
			{Date: day("2024-01-05"), Close: 120},
		}},
	}

	w := c.Compute(positions, prices)
	if !almostEqual(w[day("2024-01-06")]["AAPL"], 1.0) {
		t.Errorf("weekend weight: got %v", w[day("2024-01-06")])
	}
}

func TestComputeZeroTotalValue(t *testing.T) {
	c := New(logger.Nop())

	// position fully sold: all weights zero, not NaN
	positions := contracts.PositionTable{
		day("2024-01-08"): {"AAPL": 0, contracts.CashTicker: 0},
	}
	prices := map[string]contracts.PriceHistory{
		"AAPL": {Ticker: "AAPL", Candles: []contracts.Candle{
			{Date: day("2024-01-08"), Close: 100},
		}},
	}

	w := c.Compute(positions, prices)
	for ticker, v := range w[day("2024-01-08")] {
		if v != 0 || math.IsNaN(v) {
			t.Errorf("%s: got %v, want 0", ticker, v)
		}
	}
}

func TestComputeMissingPriceHistory(t *testing.T) {
	c := New(logger.Nop())

	positions := contracts.PositionTable{
		day("2024-01-02"): {"AAPL": 10, "UNKNOWN": 100},
	}
	prices := map[string]contracts.PriceHistory{
		"AAPL": {Ticker: "AAPL", Candles: []contracts.Candle{
			{Date: day("2024-01-02"), Close: 100},
		}},
	}

	w := c.Compute(positions, prices)
	row := w[day("2024-01-02")]
	if !almostEqual(row["AAPL"], 1.0) {
		t.Errorf("AAPL should carry full weight, got %v", row["AAPL"])
	}
	if row["UNKNOWN"] != 0 {
		t.Errorf("unpriced ticker should weigh zero, got %v", row["UNKNOWN"])
	}
}

func TestCashWeightSeries(t *testing.T) {
	w := contracts.WeightTable{
		day("2024-01-02"): {"AAPL": 0.8, contracts.CashTicker: 0.2},
		day("2024-01-03"): {"AAPL": 1.0},
	}
	series := CashWeightSeries(w)
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if !almostEqual(series[0].Value, 0.2) {
		t.Errorf("Jan 2 cash weight: got %v", series[0].Value)
	}
	if series[1].Value != 0 {
		t.Errorf("Jan 3 cash weight: got %v", series[1].Value)
	}
}
