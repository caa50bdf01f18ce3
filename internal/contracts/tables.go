package contracts

import "sort"

// PositionTable maps each calendar day to the share count held per
// ticker on that day (after applying the day's transactions).
// FREE CASH rows carry the cash balance instead of shares.
type PositionTable map[Day]map[string]float64

// WeightTable maps each calendar day to per-ticker portfolio weights.
// Weights on a day sum to 1.0 unless total portfolio value is zero.
type WeightTable map[Day]map[string]float64

// Days returns the table's days in ascending order.
func (t PositionTable) Days() []Day {
	return sortedDays(t)
}

// Days returns the table's days in ascending order.
func (t WeightTable) Days() []Day {
	return sortedDays(t)
}

// Tickers returns every ticker appearing on any day, sorted.
func (t PositionTable) Tickers() []string {
	return collectTickers(t)
}

// Tickers returns every ticker appearing on any day, sorted.
func (t WeightTable) Tickers() []string {
	return collectTickers(t)
}

func sortedDays(t map[Day]map[string]float64) []Day {
	days := make([]Day, 0, len(t))
	for d := range t {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

func collectTickers(t map[Day]map[string]float64) []string {
	seen := make(map[string]struct{})
	for _, row := range t {
		for ticker := range row {
			seen[ticker] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
