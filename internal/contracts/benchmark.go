package contracts

import (
	"fmt"
	"strings"
)

// BenchmarkRef names the comparison series for relative statistics:
// either a single ticker (e.g. "SPY") or another portfolio.
type BenchmarkRef struct {
	Ticker    string `json:"ticker,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// TickerBenchmark references a single ticker.
func TickerBenchmark(ticker string) BenchmarkRef {
	return BenchmarkRef{Ticker: ticker}
}

// PortfolioBenchmark references another portfolio by name.
func PortfolioBenchmark(name string) BenchmarkRef {
	return BenchmarkRef{Portfolio: name}
}

// IsTicker reports whether the reference names a ticker.
func (b BenchmarkRef) IsTicker() bool {
	return b.Ticker != ""
}

// IsPortfolio reports whether the reference names a portfolio.
func (b BenchmarkRef) IsPortfolio() bool {
	return b.Portfolio != ""
}

// Validate ensures exactly one variant is set.
func (b BenchmarkRef) Validate() error {
	hasTicker := strings.TrimSpace(b.Ticker) != ""
	hasPortfolio := strings.TrimSpace(b.Portfolio) != ""
	if hasTicker == hasPortfolio {
		return fmt.Errorf("benchmark must name exactly one of ticker or portfolio")
	}
	return nil
}

func (b BenchmarkRef) String() string {
	if b.IsTicker() {
		return "ticker:" + b.Ticker
	}
	return "portfolio:" + b.Portfolio
}
