package contracts

import "sort"

// ReturnPoint is one daily simple return.
type ReturnPoint struct {
	Date  Day     `json:"date"`
	Value float64 `json:"value"`
}

// ReturnSeries is a date-ascending sequence of daily simple returns.
type ReturnSeries []ReturnPoint

// Values returns the return values in series order.
func (s ReturnSeries) Values() []float64 {
	vals := make([]float64, len(s))
	for i, p := range s {
		vals[i] = p.Value
	}
	return vals
}

// Dates returns the dates in series order.
func (s ReturnSeries) Dates() []Day {
	dates := make([]Day, len(s))
	for i, p := range s {
		dates[i] = p.Date
	}
	return dates
}

// Sort orders the series by date ascending, in place.
func (s ReturnSeries) Sort() {
	sort.Slice(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Slice returns the sub-series within [start, end] inclusive. Zero
// bounds are open on that side.
func (s ReturnSeries) Slice(start, end Day) ReturnSeries {
	out := make(ReturnSeries, 0, len(s))
	for _, p := range s {
		if !start.IsZero() && p.Date.Before(start) {
			continue
		}
		if !end.IsZero() && p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Last returns the final point and true, or a zero point and false when
// the series is empty.
func (s ReturnSeries) Last() (ReturnPoint, bool) {
	if len(s) == 0 {
		return ReturnPoint{}, false
	}
	return s[len(s)-1], true
}

// ByDate builds a date-keyed lookup map.
func (s ReturnSeries) ByDate() map[Day]float64 {
	m := make(map[Day]float64, len(s))
	for _, p := range s {
		m[p.Date] = p.Value
	}
	return m
}

// AlignedValues inner-joins two series on date and returns the paired
// values in ascending date order. Dates present in only one series are
// dropped.
//
// 통계 비교는 항상 교집합 날짜에서만 계산
func AlignedValues(a, b ReturnSeries) (av, bv []float64) {
	bByDate := b.ByDate()
	for _, p := range a {
		if bval, ok := bByDate[p.Date]; ok {
			av = append(av, p.Value)
			bv = append(bv, bval)
		}
	}
	return av, bv
}

// ReturnTable maps ticker to its daily return series.
type ReturnTable map[string]ReturnSeries

// Tickers returns the table's tickers in sorted order.
func (t ReturnTable) Tickers() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
