package returns

import (
	"math"

	"github.com/quantterm/backend/internal/contracts"
)

// Rolling metrics over an already-computed return series. All of these
// are pure; empty input or a series shorter than the window yields an
// empty result.

// RollingVolatility computes trailing-window sample standard deviation
// annualized by sqrt(252). The first window−1 points are dropped.
func RollingVolatility(series contracts.ReturnSeries, window int) contracts.ReturnSeries {
	if window < 2 || len(series) < window {
		return contracts.ReturnSeries{}
	}

	out := make(contracts.ReturnSeries, 0, len(series)-window+1)
	for i := window - 1; i < len(series); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += series[j].Value
		}
		mean := sum / float64(window)

		ss := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := series[j].Value - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(window-1)) // ddof=1

		out = append(out, contracts.ReturnPoint{
			Date:  series[i].Date,
			Value: std * math.Sqrt(contracts.TradingDaysPerYear),
		})
	}
	return out
}

// RollingReturns computes trailing-window compounded returns,
// ∏(1+r) − 1 over each window. The first window−1 points are dropped.
func RollingReturns(series contracts.ReturnSeries, window int) contracts.ReturnSeries {
	if window < 1 || len(series) < window {
		return contracts.ReturnSeries{}
	}

	out := make(contracts.ReturnSeries, 0, len(series)-window+1)
	for i := window - 1; i < len(series); i++ {
		growth := 1.0
		for j := i - window + 1; j <= i; j++ {
			growth *= 1 + series[j].Value
		}
		out = append(out, contracts.ReturnPoint{Date: series[i].Date, Value: growth - 1})
	}
	return out
}

// Drawdowns returns the distance from the running all-time high of the
// wealth index: cumulative / runningMax − 1. Values are ≤ 0.
func Drawdowns(series contracts.ReturnSeries) contracts.ReturnSeries {
	if len(series) == 0 {
		return contracts.ReturnSeries{}
	}

	out := make(contracts.ReturnSeries, 0, len(series))
	cumulative := 1.0
	runningMax := math.Inf(-1)
	for _, p := range series {
		cumulative *= 1 + p.Value
		if cumulative > runningMax {
			runningMax = cumulative
		}
		out = append(out, contracts.ReturnPoint{Date: p.Date, Value: cumulative/runningMax - 1})
	}
	return out
}

// TimeUnderWater counts consecutive days below the running maximum of
// the wealth index, resetting to 0 at every new high.
func TimeUnderWater(series contracts.ReturnSeries) contracts.ReturnSeries {
	if len(series) == 0 {
		return contracts.ReturnSeries{}
	}

	out := make(contracts.ReturnSeries, 0, len(series))
	cumulative := 1.0
	runningMax := math.Inf(-1)
	underwater := 0
	for _, p := range series {
		cumulative *= 1 + p.Value
		if cumulative >= runningMax {
			runningMax = cumulative
			underwater = 0
		} else {
			underwater++
		}
		out = append(out, contracts.ReturnPoint{Date: p.Date, Value: float64(underwater)})
	}
	return out
}

// CumulativeReturns converts daily returns to cumulative returns from
// the series start: ∏(1+r) − 1 at each point.
func CumulativeReturns(series contracts.ReturnSeries) contracts.ReturnSeries {
	out := make(contracts.ReturnSeries, 0, len(series))
	growth := 1.0
	for _, p := range series {
		growth *= 1 + p.Value
		out = append(out, contracts.ReturnPoint{Date: p.Date, Value: growth - 1})
	}
	return out
}
