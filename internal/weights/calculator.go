// Package weights turns daily positions and close prices into daily
// portfolio weights.
package weights

import (
	"strings"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/logger"
)

// Calculator computes market-value weights from a position table.
type Calculator struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Calculator {
	return &Calculator{log: log.WithComponent("weights")}
}

// Compute builds a WeightTable from positions and per-ticker price
// history. FREE CASH is valued at 1.0 per unit. Regular tickers use the
// close on each day, forward-filled across non-trading days. Tickers
// with no price data (or days before their first candle) contribute
// zero market value. Days where total value is zero get all-zero
// weights rather than NaN.
func (c *Calculator) Compute(positions contracts.PositionTable, prices map[string]contracts.PriceHistory) contracts.WeightTable {
	if len(positions) == 0 {
		return contracts.WeightTable{}
	}

	warned := make(map[string]bool)
	table := make(contracts.WeightTable, len(positions))

	for _, day := range positions.Days() {
		row := positions[day]

		values := make(map[string]float64, len(row))
		total := 0.0
		for ticker, qty := range row {
			mv := 0.0
			if strings.EqualFold(ticker, contracts.CashTicker) {
				// 현금은 수량이 곧 달러 가치
				mv = qty
			} else if hist, ok := prices[ticker]; ok {
				if price, found := hist.CloseOn(day); found {
					mv = qty * price
				}
			} else if !warned[ticker] {
				c.log.Warnf("no price history for %s, valuing position at zero", ticker)
				warned[ticker] = true
			}
			values[ticker] = mv
			total += mv
		}

		weightRow := make(map[string]float64, len(values))
		for ticker, mv := range values {
			if total > 0 {
				weightRow[ticker] = mv / total
			} else {
				weightRow[ticker] = 0.0
			}
		}
		table[day] = weightRow
	}

	return table
}

// CashWeightSeries extracts the FREE CASH weight per day, for cash-drag
// reporting. Days without a cash row report zero.
func CashWeightSeries(weights contracts.WeightTable) contracts.ReturnSeries {
	series := make(contracts.ReturnSeries, 0, len(weights))
	for _, day := range weights.Days() {
		w := 0.0
		for ticker, v := range weights[day] {
			if strings.EqualFold(ticker, contracts.CashTicker) {
				w = v
				break
			}
		}
		series = append(series, contracts.ReturnPoint{Date: day, Value: w})
	}
	return series
}
