package stats

import (
	"math"

	"github.com/quantterm/backend/internal/contracts"
)

// SharpeRatio: (mean(excess) / std(excess, ddof=1)) × sqrt(252), where
// excess = returns − riskFree/252. NaN for n < 2 or zero variance.
func SharpeRatio(values []float64, riskFree float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	dailyRF := riskFree / contracts.TradingDaysPerYear
	excess := make([]float64, len(values))
	for i, v := range values {
		excess[i] = v - dailyRF
	}
	std := Std(excess)
	if std == 0 || math.IsNaN(std) {
		return math.NaN()
	}
	return (Mean(excess) / std) * math.Sqrt(contracts.TradingDaysPerYear)
}

// SortinoRatio: same numerator as Sharpe but the denominator is the
// root-mean-square of returns below the daily target (not ddof
// adjusted). NaN when no downside observation exists.
func SortinoRatio(values []float64, riskFree, target float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	dailyRF := riskFree / contracts.TradingDaysPerYear
	dailyTarget := target / contracts.TradingDaysPerYear

	var ss float64
	count := 0
	for _, v := range values {
		if v < dailyTarget {
			d := v - dailyTarget
			ss += d * d
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	downsideStd := math.Sqrt(ss / float64(count))
	if downsideStd == 0 {
		return math.NaN()
	}

	meanExcess := Mean(values) - dailyRF
	return (meanExcess / downsideStd) * math.Sqrt(contracts.TradingDaysPerYear)
}

// TreynorRatio: annualized excess return per unit of beta, over
// date-aligned series. NaN when beta is NaN or 0.
func TreynorRatio(portfolio, benchmark []float64, riskFree float64) float64 {
	beta := Beta(portfolio, benchmark)
	if math.IsNaN(beta) || beta == 0 {
		return math.NaN()
	}
	if len(portfolio) < 2 {
		return math.NaN()
	}
	return (AnnualizedReturn(portfolio) - riskFree) / beta
}
