package stats

import (
	"math"
	"sort"
)

// minVaRObservations is the floor below which historical VaR is noise.
const minVaRObservations = 20

// Quantile computes the q-quantile (0 ≤ q ≤ 1) with linear
// interpolation between order statistics; NaN for empty input.
func Quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 || q < 0 || q > 1 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// VaR is the historical Value at Risk at the given confidence: the
// (1−confidence) quantile of the return distribution. Expected to be
// negative. NaN for fewer than 20 observations.
func VaR(values []float64, confidence float64) float64 {
	if len(values) < minVaRObservations {
		return math.NaN()
	}
	return Quantile(values, 1-confidence)
}

// CVaR (expected shortfall) is the mean of all returns at or below the
// VaR threshold. NaN for fewer than 20 observations.
func CVaR(values []float64, confidence float64) float64 {
	if len(values) < minVaRObservations {
		return math.NaN()
	}
	threshold := Quantile(values, 1-confidence)

	sum, count := 0.0, 0
	for _, v := range values {
		if v <= threshold {
			sum += v
			count++
		}
	}
	if count == 0 {
		return threshold
	}
	return sum / float64(count)
}
