// Package returns derives daily, resampled, and rolling return series
// for tickers and portfolios, backed by a two-tier cache.
package returns

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/internal/positions"
	"github.com/quantterm/backend/internal/weights"
	"github.com/quantterm/backend/pkg/logger"
)

// Computer wires the cache, position reconstruction, and weight
// calculation into portfolio-level return series.
type Computer struct {
	cache  *Cache
	ledger contracts.TransactionLedger
	prices contracts.PriceHistoryProvider
	live   contracts.LivePriceProvider
	recon  *positions.Reconstructor
	wcalc  *weights.Calculator
	clock  contracts.Clock
	log    *logger.Logger
}

// NewComputer builds a Computer. live may be nil, in which case the
// live-append operations report an error. clock may be nil.
func NewComputer(
	cache *Cache,
	ledger contracts.TransactionLedger,
	prices contracts.PriceHistoryProvider,
	live contracts.LivePriceProvider,
	clock contracts.Clock,
	log *logger.Logger,
) *Computer {
	if clock == nil {
		clock = contracts.SystemClock{}
	}
	return &Computer{
		cache:  cache,
		ledger: ledger,
		prices: prices,
		live:   live,
		recon:  positions.New(log, clock),
		wcalc:  weights.New(log),
		clock:  clock,
		log:    log.WithComponent("returns"),
	}
}

// Cache exposes the underlying cache for invalidation endpoints.
func (c *Computer) Cache() *Cache {
	return c.cache
}

// Ledger exposes the transaction source for listing endpoints.
func (c *Computer) Ledger() contracts.TransactionLedger {
	return c.ledger
}

// Range bounds a request; zero values are open on that side.
type Range struct {
	Start contracts.Day
	End   contracts.Day
}

// TickerReturns computes daily percentage change of closes for one
// ticker, optionally bounded and resampled.
func (c *Computer) TickerReturns(ctx context.Context, ticker string, r Range, interval Interval) (contracts.ReturnSeries, error) {
	end := r.End
	if end.IsZero() {
		end = contracts.DayOf(c.clock.Now())
	}
	hist, err := c.prices.Fetch(ctx, ticker, contracts.Day{}, end)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", ticker, err)
	}
	series := DailyFromCloses(hist).Slice(r.Start, r.End)
	return Resample(series, interval), nil
}

// DailyReturns returns the cached per-ticker daily return table for a
// portfolio, bounded to the range.
func (c *Computer) DailyReturns(ctx context.Context, portfolio string, r Range) (contracts.ReturnTable, error) {
	table, err := c.cache.Get(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	out := make(contracts.ReturnTable, len(table))
	for ticker, series := range table {
		sliced := series.Slice(r.Start, r.End)
		if len(sliced) > 0 {
			out[ticker] = sliced
		}
	}
	return out, nil
}

// FixedWeightReturns computes portfolio returns with static weights.
// Nil weights means equal weighting across the table's tickers;
// otherwise weights are normalized to sum to 1 over the tickers
// present. Days where a ticker has no observation contribute 0 for it.
func (c *Computer) FixedWeightReturns(ctx context.Context, portfolio string, r Range, w map[string]float64) (contracts.ReturnSeries, error) {
	table, err := c.DailyReturns(ctx, portfolio, r)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return contracts.ReturnSeries{}, nil
	}

	tickers := table.Tickers()
	norm := make(map[string]float64, len(tickers))
	if w == nil {
		for _, t := range tickers {
			norm[t] = 1.0 / float64(len(tickers))
		}
	} else {
		total := 0.0
		for _, t := range tickers {
			total += w[t]
		}
		if total == 0 {
			return contracts.ReturnSeries{}, nil
		}
		for _, t := range tickers {
			norm[t] = w[t] / total
		}
	}

	byDate := make(map[string]map[contracts.Day]float64, len(tickers))
	dates := make(map[contracts.Day]struct{})
	for _, t := range tickers {
		byDate[t] = table[t].ByDate()
		for d := range byDate[t] {
			dates[d] = struct{}{}
		}
	}

	out := make(contracts.ReturnSeries, 0, len(dates))
	for d := range dates {
		sum := 0.0
		for _, t := range tickers {
			if v, ok := byDate[t][d]; ok {
				sum += norm[t] * v
			}
		}
		out = append(out, contracts.ReturnPoint{Date: d, Value: sum})
	}
	out.Sort()
	return out, nil
}

// PortfolioOptions controls the time-varying computation.
type PortfolioOptions struct {
	Range       Range
	IncludeCash bool
	Interval    Interval
}

// TimeVaryingReturns is the central algorithm: daily weights crossed
// with per-ticker daily returns on the intersection of their calendar
// dates. Cash carries weight but contributes zero return.
func (c *Computer) TimeVaryingReturns(ctx context.Context, portfolio string, opts PortfolioOptions) (contracts.ReturnSeries, error) {
	weightTable, err := c.DailyWeights(ctx, portfolio, opts.Range, opts.IncludeCash)
	if err != nil {
		return nil, err
	}
	if len(weightTable) == 0 {
		return contracts.ReturnSeries{}, nil
	}

	table, err := c.DailyReturns(ctx, portfolio, opts.Range)
	if err != nil {
		return nil, err
	}

	// Union of ticker return dates. A weight day enters the output only
	// when at least one ticker has an observation there, which is what
	// drops non-trading calendar days from the position table.
	byDate := make(map[string]map[contracts.Day]float64, len(table))
	returnDates := make(map[contracts.Day]struct{})
	for ticker, series := range table {
		byDate[ticker] = series.ByDate()
		for d := range byDate[ticker] {
			returnDates[d] = struct{}{}
		}
	}

	// A portfolio holding only cash has no ticker return dates; its
	// return is zero on every weight day, not an empty series.
	if len(returnDates) == 0 {
		out := make(contracts.ReturnSeries, 0, len(weightTable))
		for _, day := range weightTable.Days() {
			out = append(out, contracts.ReturnPoint{Date: day, Value: 0})
		}
		return Resample(out, opts.Interval), nil
	}

	out := make(contracts.ReturnSeries, 0, len(weightTable))
	for _, day := range weightTable.Days() {
		if _, ok := returnDates[day]; !ok {
			continue
		}
		sum := 0.0
		for ticker, weight := range weightTable[day] {
			if strings.EqualFold(ticker, contracts.CashTicker) {
				continue // 현금 수익률은 0
			}
			if v, ok := byDate[ticker][day]; ok {
				sum += weight * v
			}
		}
		out = append(out, contracts.ReturnPoint{Date: day, Value: sum})
	}

	return Resample(out, opts.Interval), nil
}

// DailyWeights reconstructs positions and converts them to
// market-value weights over the range.
func (c *Computer) DailyWeights(ctx context.Context, portfolio string, r Range, includeCash bool) (contracts.WeightTable, error) {
	txs, err := c.ledger.Transactions(ctx, portfolio)
	if err != nil {
		return nil, fmt.Errorf("load transactions for %s: %w", portfolio, err)
	}

	posTable, err := c.recon.Reconstruct(txs, positions.Options{
		Start:       r.Start,
		End:         r.End,
		IncludeCash: includeCash,
	})
	if err != nil {
		return nil, err
	}
	if len(posTable) == 0 {
		return contracts.WeightTable{}, nil
	}

	tickers := make([]string, 0)
	for _, t := range posTable.Tickers() {
		if !strings.EqualFold(t, contracts.CashTicker) {
			tickers = append(tickers, t)
		}
	}

	priceBatch := map[string]contracts.PriceHistory{}
	if len(tickers) > 0 {
		end := r.End
		if end.IsZero() {
			end = contracts.DayOf(c.clock.Now())
		}
		priceBatch, err = c.prices.FetchBatch(ctx, tickers, contracts.Day{}, end)
		if err != nil {
			return nil, fmt.Errorf("fetch price batch for %s: %w", portfolio, err)
		}
	}

	return c.wcalc.Compute(posTable, priceBatch), nil
}

// BenchmarkReturns resolves a benchmark reference to its daily return
// series: a ticker's raw returns or another portfolio's time-varying
// returns.
func (c *Computer) BenchmarkReturns(ctx context.Context, ref contracts.BenchmarkRef, r Range, interval Interval) (contracts.ReturnSeries, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if ref.IsTicker() {
		return c.TickerReturns(ctx, ref.Ticker, r, interval)
	}
	return c.TimeVaryingReturns(ctx, ref.Portfolio, PortfolioOptions{
		Range:       r,
		IncludeCash: true,
		Interval:    interval,
	})
}

// CorrelationMatrix computes pairwise return correlations over each
// pair's common dates.
func (c *Computer) CorrelationMatrix(ctx context.Context, portfolio string, r Range) (map[string]map[string]float64, error) {
	table, err := c.DailyReturns(ctx, portfolio, r)
	if err != nil {
		return nil, err
	}
	tickers := table.Tickers()
	matrix := make(map[string]map[string]float64, len(tickers))
	for _, a := range tickers {
		matrix[a] = make(map[string]float64, len(tickers))
		for _, b := range tickers {
			if a == b {
				matrix[a][b] = 1.0
				continue
			}
			av, bv := contracts.AlignedValues(table[a], table[b])
			matrix[a][b] = correlation(av, bv)
		}
	}
	return matrix, nil
}

// CashDrag summarizes the opportunity cost of the cash allocation.
type CashDrag struct {
	AvgCashWeight      float64 `json:"avg_cash_weight"`
	CashDragBps        float64 `json:"cash_drag_bps"`
	CashDragAnnualized float64 `json:"cash_drag_annualized"`
	PeriodDays         int     `json:"period_days"`
}

// ComputeCashDrag estimates annualized return lost to uninvested cash:
// average cash weight × average annualized market return.
func (c *Computer) ComputeCashDrag(ctx context.Context, portfolio string, r Range) (CashDrag, error) {
	weightTable, err := c.DailyWeights(ctx, portfolio, r, true)
	if err != nil {
		return CashDrag{}, err
	}
	if len(weightTable) == 0 {
		return CashDrag{}, nil
	}

	cashSeries := weights.CashWeightSeries(weightTable)
	avg := 0.0
	for _, p := range cashSeries {
		avg += p.Value
	}
	avg /= float64(len(cashSeries))

	table, err := c.DailyReturns(ctx, portfolio, r)
	if err != nil {
		return CashDrag{}, err
	}

	// mean daily return across all tickers, annualized linearly
	sum, count := 0.0, 0
	for _, series := range table {
		for _, p := range series {
			sum += p.Value
			count++
		}
	}
	dragBps := 0.0
	if count > 0 {
		annualized := (sum / float64(count)) * contracts.TradingDaysPerYear
		dragBps = avg * annualized * 10000
	}

	return CashDrag{
		AvgCashWeight:      avg,
		CashDragBps:        dragBps,
		CashDragAnnualized: dragBps / 10000,
		PeriodDays:         len(weightTable),
	}, nil
}

// correlation is the Pearson coefficient; NaN-free inputs assumed,
// returns 0 for degenerate series.
func correlation(a, b []float64) float64 {
	n := len(a)
	if n < 2 || n != len(b) {
		return 0
	}
	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / (math.Sqrt(varA) * math.Sqrt(varB))
}
