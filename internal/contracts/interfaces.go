package contracts

import (
	"context"
	"time"
)

// TransactionLedger is the read side of a portfolio's transaction store.
// Implementations: JSON file store, PostgreSQL store.
type TransactionLedger interface {
	// Transactions returns all entries of the named portfolio in
	// stored order (not necessarily sorted by date).
	Transactions(ctx context.Context, portfolio string) ([]Transaction, error)

	// LastModified reports when the portfolio's ledger last changed.
	// Drives returns-cache invalidation.
	LastModified(ctx context.Context, portfolio string) (time.Time, error)

	// List returns the names of all known portfolios.
	List(ctx context.Context) ([]string, error)
}

// PriceHistoryProvider fetches daily OHLCV history for tickers.
type PriceHistoryProvider interface {
	// Fetch returns daily candles for one ticker covering [start, end].
	// A zero start means the full available history.
	Fetch(ctx context.Context, ticker string, start, end Day) (PriceHistory, error)

	// FetchBatch fetches several tickers. Tickers that fail are absent
	// from the result map; err is non-nil only when nothing succeeded.
	FetchBatch(ctx context.Context, tickers []string, start, end Day) (map[string]PriceHistory, error)
}

// LivePriceProvider supplies current prices for the live "today" return.
type LivePriceProvider interface {
	// CurrentPrices returns the latest price per ticker. Missing
	// tickers are absent from the map.
	CurrentPrices(ctx context.Context, tickers []string) (map[string]float64, error)
}

// Clock abstracts time.Now so live-return logic is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
