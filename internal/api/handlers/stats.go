package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/internal/returns"
	"github.com/quantterm/backend/internal/stats"
)

// RiskMetrics serves benchmark-relative risk statistics for a
// portfolio. The benchmark is either benchmark_ticker or
// benchmark_portfolio, exactly one required.
func (h *Handlers) RiskMetrics(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	ref := contracts.BenchmarkRef{
		Ticker:    r.URL.Query().Get("benchmark_ticker"),
		Portfolio: r.URL.Query().Get("benchmark_portfolio"),
	}
	if err := ref.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	portfolio, err := h.computer.TimeVaryingReturns(r.Context(), name, returns.PortfolioOptions{
		Range:       rng,
		IncludeCash: boolParam(r, "include_cash", true),
		Interval:    returns.Daily,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	benchmark, err := h.computer.BenchmarkReturns(r.Context(), ref, rng, returns.Daily)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Errorf("benchmark %s: %w", ref, err))
		return
	}

	riskFree := h.riskFreeRate(r)
	metrics := stats.ComputeRiskMetrics(portfolio, benchmark, riskFree)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":      name,
		"benchmark": ref.String(),
		"metrics":   metrics.NaNToZero(),
	})
}

// Summary serves standalone distribution and performance statistics
// for a portfolio, no benchmark required.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

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

	riskFree := h.riskFreeRate(r)
	summary := stats.Summarize(series, riskFree)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":    name,
		"summary": summary.NaNToZero(),
	})
}

// Correlation serves the pairwise ticker correlation matrix.
func (h *Handlers) Correlation(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	matrix, err := h.computer.CorrelationMatrix(r.Context(), name, rng)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":   name,
		"matrix": matrix,
	})
}

// CashDrag serves the cash opportunity-cost summary.
func (h *Handlers) CashDrag(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rng, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	drag, err := h.computer.ComputeCashDrag(r.Context(), name, rng)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":      name,
		"cash_drag": drag,
	})
}
