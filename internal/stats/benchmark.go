package stats

import (
	"math"

	"github.com/quantterm/backend/internal/contracts"
)

// Two-series metrics. All of these expect the inputs already aligned
// to common dates (equal length, position i in both slices is the same
// date) — see contracts.AlignedValues for the inner join.

// minCaptureObservations is the floor for capture ratios.
const minCaptureObservations = 10

// Covariance is the sample covariance (ddof=1); NaN for n < 2.
func Covariance(a, b []float64) float64 {
	n := len(a)
	if n < 2 || n != len(b) {
		return math.NaN()
	}
	meanA, meanB := Mean(a), Mean(b)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}
	return sum / float64(n-1)
}

// Beta = Cov(portfolio, benchmark) / Var(benchmark); NaN for n < 2 or
// zero benchmark variance.
func Beta(portfolio, benchmark []float64) float64 {
	if len(portfolio) < 2 || len(portfolio) != len(benchmark) {
		return math.NaN()
	}
	benchVar := Variance(benchmark)
	if benchVar == 0 || math.IsNaN(benchVar) {
		return math.NaN()
	}
	return Covariance(portfolio, benchmark) / benchVar
}

// Alpha is Jensen's alpha, annualized:
// annualized(p) − [rf + beta × (annualized(b) − rf)].
func Alpha(portfolio, benchmark []float64, riskFree float64) float64 {
	beta := Beta(portfolio, benchmark)
	if math.IsNaN(beta) {
		return math.NaN()
	}
	return AnnualizedReturn(portfolio) - (riskFree + beta*(AnnualizedReturn(benchmark)-riskFree))
}

// TrackingError = std(portfolio − benchmark, ddof=1) × sqrt(252);
// NaN for n < 2.
func TrackingError(portfolio, benchmark []float64) float64 {
	n := len(portfolio)
	if n < 2 || n != len(benchmark) {
		return math.NaN()
	}
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		diff[i] = portfolio[i] - benchmark[i]
	}
	return Std(diff) * math.Sqrt(contracts.TradingDaysPerYear)
}

// InformationRatio = annualized(portfolio − benchmark) / tracking
// error; NaN when tracking error is NaN or 0.
func InformationRatio(portfolio, benchmark []float64) float64 {
	te := TrackingError(portfolio, benchmark)
	if math.IsNaN(te) || te == 0 {
		return math.NaN()
	}
	n := len(portfolio)
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		diff[i] = portfolio[i] - benchmark[i]
	}
	return AnnualizedReturn(diff) / te
}

// MeanExcessReturn is the annualized mean of portfolio − benchmark;
// NaN for n < 2.
func MeanExcessReturn(portfolio, benchmark []float64) float64 {
	n := len(portfolio)
	if n < 2 || n != len(benchmark) {
		return math.NaN()
	}
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		diff[i] = portfolio[i] - benchmark[i]
	}
	return AnnualizedReturn(diff)
}

// Correlation is the Pearson coefficient; NaN for n < 2 or zero
// dispersion in either series.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if n < 2 || n != len(b) {
		return math.NaN()
	}
	stdA, stdB := Std(a), Std(b)
	if stdA == 0 || stdB == 0 || math.IsNaN(stdA) || math.IsNaN(stdB) {
		return math.NaN()
	}
	return Covariance(a, b) / (stdA * stdB)
}

// RSquared is the squared correlation.
func RSquared(portfolio, benchmark []float64) float64 {
	corr := Correlation(portfolio, benchmark)
	if math.IsNaN(corr) {
		return math.NaN()
	}
	return corr * corr
}

// CaptureRatios returns (up, down) capture percentages:
// mean(p | b>0)/mean(b | b>0) × 100 and the symmetric down-period
// ratio. NaN for fewer than 10 common observations, for a side with no
// qualifying periods, or a zero benchmark mean on that side.
func CaptureRatios(portfolio, benchmark []float64) (up, down float64) {
	n := len(portfolio)
	if n < minCaptureObservations || n != len(benchmark) {
		return math.NaN(), math.NaN()
	}

	var upP, upB, downP, downB []float64
	for i := 0; i < n; i++ {
		switch {
		case benchmark[i] > 0:
			upP = append(upP, portfolio[i])
			upB = append(upB, benchmark[i])
		case benchmark[i] < 0:
			downP = append(downP, portfolio[i])
			downB = append(downB, benchmark[i])
		}
	}

	up = math.NaN()
	if len(upB) > 0 {
		if m := Mean(upB); m != 0 {
			up = Mean(upP) / m * 100
		}
	}
	down = math.NaN()
	if len(downB) > 0 {
		if m := Mean(downB); m != 0 {
			down = Mean(downP) / m * 100
		}
	}
	return up, down
}
