package stats

import (
	"math"

	"github.com/quantterm/backend/internal/contracts"
)

// RiskMetrics is the convenience aggregate for benchmark-relative
// analysis: one alignment pass, every metric computed from it. Fields
// are independently NaN when undefined.
type RiskMetrics struct {
	Beta             float64 `json:"beta"`
	Alpha            float64 `json:"alpha"`
	TrackingError    float64 `json:"tracking_error"`
	InformationRatio float64 `json:"information_ratio"`
	Sharpe           float64 `json:"sharpe"`
	Sortino          float64 `json:"sortino"`
	Treynor          float64 `json:"treynor"`
	Correlation      float64 `json:"correlation"`
	RSquared         float64 `json:"r_squared"`
	Volatility       float64 `json:"volatility"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	UpCapture        float64 `json:"up_capture"`
	DownCapture      float64 `json:"down_capture"`
	MeanExcess       float64 `json:"mean_excess"`
	Observations     int     `json:"observations"`
}

// ComputeRiskMetrics aligns the two series once (inner join on date)
// and derives the full bundle. Sharpe/Sortino/volatility/drawdown use
// the portfolio's own full series, not the aligned subset, matching
// the single-series definitions.
func ComputeRiskMetrics(portfolio, benchmark contracts.ReturnSeries, riskFree float64) RiskMetrics {
	pv := portfolio.Values()
	av, bv := contracts.AlignedValues(portfolio, benchmark)
	up, down := CaptureRatios(av, bv)

	return RiskMetrics{
		Beta:             Beta(av, bv),
		Alpha:            Alpha(av, bv, riskFree),
		TrackingError:    TrackingError(av, bv),
		InformationRatio: InformationRatio(av, bv),
		Sharpe:           SharpeRatio(pv, riskFree),
		Sortino:          SortinoRatio(pv, riskFree, 0),
		Treynor:          TreynorRatio(av, bv, riskFree),
		Correlation:      Correlation(av, bv),
		RSquared:         RSquared(av, bv),
		Volatility:       AnnualizedVolatility(pv),
		MaxDrawdown:      MaxDrawdown(pv),
		UpCapture:        up,
		DownCapture:      down,
		MeanExcess:       MeanExcessReturn(av, bv),
		Observations:     len(av),
	}
}

// PerformanceSummary bundles single-series performance numbers.
type PerformanceSummary struct {
	TotalReturn      float64           `json:"total_return"`
	AnnualizedReturn float64           `json:"annualized_return"`
	Volatility       float64           `json:"volatility"`
	Sharpe           float64           `json:"sharpe"`
	Sortino          float64           `json:"sortino"`
	MaxDrawdown      float64           `json:"max_drawdown"`
	VaR95            float64           `json:"var_95"`
	CVaR95           float64           `json:"cvar_95"`
	Distribution     DistributionStats `json:"distribution"`
}

// Summarize computes the single-series performance bundle at 95%
// VaR confidence.
func Summarize(series contracts.ReturnSeries, riskFree float64) PerformanceSummary {
	v := series.Values()
	return PerformanceSummary{
		TotalReturn:      TotalReturn(v),
		AnnualizedReturn: AnnualizedReturn(v),
		Volatility:       AnnualizedVolatility(v),
		Sharpe:           SharpeRatio(v, riskFree),
		Sortino:          SortinoRatio(v, riskFree, 0),
		MaxDrawdown:      MaxDrawdown(v),
		VaR95:            VaR(v, 0.95),
		CVaR95:           CVaR(v, 0.95),
		Distribution:     Describe(v),
	}
}

// Sanitize replaces NaN and infinities with the given sentinel so a
// bundle can cross a JSON boundary. Encoders reject NaN literals.
func sanitize(v, sentinel float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sentinel
	}
	return v
}

// NaNToZero returns a copy of the metrics with undefined values
// flattened to 0 for JSON transport. The Observations count lets the
// caller tell a true zero from an undefined metric.
func (m RiskMetrics) NaNToZero() RiskMetrics {
	out := m
	out.Beta = sanitize(m.Beta, 0)
	out.Alpha = sanitize(m.Alpha, 0)
	out.TrackingError = sanitize(m.TrackingError, 0)
	out.InformationRatio = sanitize(m.InformationRatio, 0)
	out.Sharpe = sanitize(m.Sharpe, 0)
	out.Sortino = sanitize(m.Sortino, 0)
	out.Treynor = sanitize(m.Treynor, 0)
	out.Correlation = sanitize(m.Correlation, 0)
	out.RSquared = sanitize(m.RSquared, 0)
	out.Volatility = sanitize(m.Volatility, 0)
	out.MaxDrawdown = sanitize(m.MaxDrawdown, 0)
	out.UpCapture = sanitize(m.UpCapture, 0)
	out.DownCapture = sanitize(m.DownCapture, 0)
	out.MeanExcess = sanitize(m.MeanExcess, 0)
	return out
}

// NaNToZero flattens undefined values to 0 for JSON transport.
func (s PerformanceSummary) NaNToZero() PerformanceSummary {
	out := s
	out.TotalReturn = sanitize(s.TotalReturn, 0)
	out.AnnualizedReturn = sanitize(s.AnnualizedReturn, 0)
	out.Volatility = sanitize(s.Volatility, 0)
	out.Sharpe = sanitize(s.Sharpe, 0)
	out.Sortino = sanitize(s.Sortino, 0)
	out.MaxDrawdown = sanitize(s.MaxDrawdown, 0)
	out.VaR95 = sanitize(s.VaR95, 0)
	out.CVaR95 = sanitize(s.CVaR95, 0)
	out.Distribution.Mean = sanitize(s.Distribution.Mean, 0)
	out.Distribution.Std = sanitize(s.Distribution.Std, 0)
	out.Distribution.Skew = sanitize(s.Distribution.Skew, 0)
	out.Distribution.Kurtosis = sanitize(s.Distribution.Kurtosis, 0)
	out.Distribution.Min = sanitize(s.Distribution.Min, 0)
	out.Distribution.Max = sanitize(s.Distribution.Max, 0)
	return out
}
