// Package positions rebuilds daily share counts from a portfolio's
// transaction history.
package positions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/logger"
)

// Options controls a reconstruction run.
type Options struct {
	Start       contracts.Day // zero = from first transaction
	End         contracts.Day // zero = through today
	IncludeCash bool
}

// Reconstructor turns transaction logs into a PositionTable.
type Reconstructor struct {
	log   *logger.Logger
	clock contracts.Clock
}

// New creates a Reconstructor. clock may be nil (system clock).
func New(log *logger.Logger, clock contracts.Clock) *Reconstructor {
	if clock == nil {
		clock = contracts.SystemClock{}
	}
	return &Reconstructor{
		log:   log.WithComponent("positions"),
		clock: clock,
	}
}

// Reconstruct replays transactions into end-of-day holdings for every
// calendar day from the first transaction through Options.End.
//
// 같은 날짜의 거래는 sequence 순서, sequence가 같으면 원장 순서 유지
func (r *Reconstructor) Reconstruct(txs []contracts.Transaction, opts Options) (contracts.PositionTable, error) {
	filtered := make([]contracts.Transaction, 0, len(txs))
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("invalid transaction: %w", err)
		}
		if !opts.IncludeCash && strings.EqualFold(tx.Ticker, contracts.CashTicker) {
			continue
		}
		filtered = append(filtered, tx)
	}
	if len(filtered) == 0 {
		return contracts.PositionTable{}, nil
	}

	// Stable sort keeps ledger order for entries with equal (date, sequence).
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Date != filtered[j].Date {
			return filtered[i].Date.Before(filtered[j].Date)
		}
		return filtered[i].Sequence < filtered[j].Sequence
	})

	// Net share change per day per ticker.
	changes := make(map[contracts.Day]map[string]float64)
	tickers := make(map[string]struct{})
	for _, tx := range filtered {
		row := changes[tx.Date]
		if row == nil {
			row = make(map[string]float64)
			changes[tx.Date] = row
		}
		row[tx.Ticker] += tx.SignedShares()
		tickers[tx.Ticker] = struct{}{}
	}

	first := filtered[0].Date
	end := opts.End
	if end.IsZero() {
		end = contracts.DayOf(r.clock.Now())
	}
	if end.Before(first) {
		return contracts.PositionTable{}, nil
	}

	table := make(contracts.PositionTable, end.Sub(first)+1)
	current := make(map[string]float64, len(tickers))
	for t := range tickers {
		current[t] = 0
	}

	for day := first; !day.After(end); day = day.AddDays(1) {
		if row, ok := changes[day]; ok {
			for ticker, delta := range row {
				current[ticker] += delta
				if current[ticker] < 0 {
					r.log.Warnf("position in %s went negative on %s (%.4f shares), ledger sells more than held",
						ticker, day, current[ticker])
				}
			}
		}

		if !opts.Start.IsZero() && day.Before(opts.Start) {
			continue
		}
		snapshot := make(map[string]float64, len(current))
		for ticker, shares := range current {
			snapshot[ticker] = shares
		}
		table[day] = snapshot
	}

	return table, nil
}
