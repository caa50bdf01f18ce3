// Package stats implements the statistics engine: pure functions over
// return series. No I/O, no caching. Every function returns NaN when
// its minimum sample size is not met or a denominator degenerates.
package stats

import (
	"math"

	"github.com/quantterm/backend/internal/contracts"
)

// Mean is the arithmetic mean; NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std is the sample standard deviation (ddof=1); NaN for n < 2.
func Std(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	mean := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// Variance is the sample variance (ddof=1); NaN for n < 2.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	mean := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(values)-1)
}

// Skewness is the bias-corrected sample skewness (the pandas
// definition); NaN for n < 3 or zero dispersion.
func Skewness(values []float64) float64 {
	n := float64(len(values))
	if len(values) < 3 {
		return math.NaN()
	}
	mean := Mean(values)
	var m2, m3 float64
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return math.NaN()
	}
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// Kurtosis is the bias-corrected sample excess kurtosis (the pandas
// definition); NaN for n < 4 or zero dispersion.
func Kurtosis(values []float64) float64 {
	n := float64(len(values))
	if len(values) < 4 {
		return math.NaN()
	}
	mean := Mean(values)
	var m2, m4 float64
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	if m2 == 0 {
		return math.NaN()
	}
	s2 := m2 / (n - 1) // sample variance
	term := m4 / (s2 * s2)
	return (n*(n+1)/((n-1)*(n-2)*(n-3)))*term - 3*(n-1)*(n-1)/((n-2)*(n-3))
}

// Min returns the smallest value; NaN for an empty slice.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value; NaN for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// TotalReturn is the geometric total, ∏(1+r) − 1; NaN for empty input.
func TotalReturn(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	growth := 1.0
	for _, v := range values {
		growth *= 1 + v
	}
	return growth - 1
}

// AnnualizedReturn is the mean daily return scaled by 252.
func AnnualizedReturn(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return Mean(values) * contracts.TradingDaysPerYear
}

// AnnualizedVolatility is sample std scaled by sqrt(252); NaN for n < 2.
func AnnualizedVolatility(values []float64) float64 {
	std := Std(values)
	if math.IsNaN(std) {
		return math.NaN()
	}
	return std * math.Sqrt(contracts.TradingDaysPerYear)
}

// DownsideRisk is the annualized downside deviation below a daily
// target: sqrt(mean((r−target)² | r < target)) × sqrt(252). Returns 0
// when no observation falls below target; NaN for n < 2.
func DownsideRisk(values []float64, target float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	var ss float64
	count := 0
	for _, v := range values {
		if v < target {
			d := v - target
			ss += d * d
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	return math.Sqrt(ss/float64(count)) * math.Sqrt(contracts.TradingDaysPerYear)
}

// MaxDrawdown is the deepest drop of the wealth index from its running
// maximum; NaN for n < 2.
func MaxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	cumulative := 1.0
	runningMax := math.Inf(-1)
	worst := 0.0
	for _, v := range values {
		cumulative *= 1 + v
		if cumulative > runningMax {
			runningMax = cumulative
		}
		dd := cumulative/runningMax - 1
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// DistributionStats summarizes a return distribution.
type DistributionStats struct {
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Skew     float64 `json:"skew"`
	Kurtosis float64 `json:"kurtosis"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Count    int     `json:"count"`
}

// Describe computes the full distribution summary. Each field carries
// its own minimum-sample guard.
func Describe(values []float64) DistributionStats {
	return DistributionStats{
		Mean:     Mean(values),
		Std:      Std(values),
		Skew:     Skewness(values),
		Kurtosis: Kurtosis(values),
		Min:      Min(values),
		Max:      Max(values),
		Count:    len(values),
	}
}
