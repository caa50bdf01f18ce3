package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/internal/returns"
)

// seriesResponse is the wire shape for a single return series.
type seriesResponse struct {
	Name     string                  `json:"name"`
	Interval string                  `json:"interval"`
	Points   []contracts.ReturnPoint `json:"points"`
}

func (h *Handlers) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	names, err := h.computer.Ledger().List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"portfolios": names})
}

// PortfolioReturns serves the time-varying portfolio return series.
// Query params: start, end, interval, include_cash, live.
func (h *Handlers) PortfolioReturns(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	interval, err := parseInterval(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	series, err := h.computer.TimeVaryingReturns(r.Context(), name, returns.PortfolioOptions{
		Range:       rng,
		IncludeCash: boolParam(r, "include_cash", true),
		Interval:    interval,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	// Live append only makes sense on the unresampled series.
	if interval == returns.Daily && boolParam(r, "live", false) {
		appended, err := h.computer.AppendLivePortfolioReturn(r.Context(), series, name)
		if err != nil {
			h.log.Warnf("live append failed for %s: %v", name, err)
		} else {
			series = appended
		}
	}

	respondJSON(w, http.StatusOK, seriesResponse{
		Name:     name,
		Interval: string(interval),
		Points:   series,
	})
}

// DailyReturnTable serves the cached per-ticker daily return table.
func (h *Handlers) DailyReturnTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	table, err := h.computer.DailyReturns(r.Context(), name, rng)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":    name,
		"tickers": table,
	})
}

// PortfolioWeights serves the daily market-value weight table.
func (h *Handlers) PortfolioWeights(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	table, err := h.computer.DailyWeights(r.Context(), name, rng, boolParam(r, "include_cash", true))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":    name,
		"weights": table,
	})
}

// TickerReturns serves a single ticker's daily return series.
func (h *Handlers) TickerReturns(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	interval, err := parseInterval(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	series, err := h.computer.TickerReturns(r.Context(), ticker, rng, interval)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	if interval == returns.Daily && boolParam(r, "live", false) {
		appended, err := h.computer.AppendLiveTickerReturn(r.Context(), series, ticker)
		if err != nil {
			h.log.Warnf("live append failed for %s: %v", ticker, err)
		} else {
			series = appended
		}
	}

	respondJSON(w, http.StatusOK, seriesResponse{
		Name:     ticker,
		Interval: string(interval),
		Points:   series,
	})
}

// applyRollingMetric dispatches a metric name over a daily series.
func applyRollingMetric(metric string, series contracts.ReturnSeries, window int) (contracts.ReturnSeries, error) {
	switch metric {
	case "volatility":
		return returns.RollingVolatility(series, window), nil
	case "returns":
		return returns.RollingReturns(series, window), nil
	case "drawdown":
		return returns.Drawdowns(series), nil
	case "time-under-water":
		return returns.TimeUnderWater(series), nil
	case "cumulative":
		return returns.CumulativeReturns(series), nil
	default:
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
}

// RollingMetric serves one of the rolling/path metrics over the
// time-varying portfolio series: volatility, returns, drawdown,
// time-under-water, cumulative.
func (h *Handlers) RollingMetric(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, metric := vars["name"], vars["metric"]

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	series, err := h.computer.TimeVaryingReturns(r.Context(), name, returns.PortfolioOptions{
		Range:       rng,
		IncludeCash: boolParam(r, "include_cash", true),
		Interval:    returns.Daily,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	out, err := applyRollingMetric(metric, series, intParam(r, "window", 21))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusOK, seriesResponse{
		Name:     name,
		Interval: string(returns.Daily),
		Points:   out,
	})
}

// TickerRollingMetric serves the same rolling metrics over a single
// ticker's daily return series.
func (h *Handlers) TickerRollingMetric(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ticker, metric := vars["ticker"], vars["metric"]

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	series, err := h.computer.TickerReturns(r.Context(), ticker, rng, returns.Daily)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	out, err := applyRollingMetric(metric, series, intParam(r, "window", 21))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusOK, seriesResponse{
		Name:     ticker,
		Interval: string(returns.Daily),
		Points:   out,
	})
}

// FixedWeightReturns serves portfolio returns under static weights.
// weights is "TICKER:W,TICKER:W"; omitted means equal weighting.
func (h *Handlers) FixedWeightReturns(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var weights map[string]float64
	if raw := r.URL.Query().Get("weights"); raw != "" {
		weights, err = parseWeights(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
	}

	series, err := h.computer.FixedWeightReturns(r.Context(), name, rng, weights)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, seriesResponse{
		Name:     name,
		Interval: string(returns.Daily),
		Points:   series,
	})
}
