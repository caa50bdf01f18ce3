// Package handlers implements the HTTP endpoints for the returns and
// statistics API.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/internal/returns"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
)

// RiskFreeSource supplies the default annualized risk-free rate.
type RiskFreeSource interface {
	Rate(ctx context.Context) float64
}

// Handlers bundles the endpoint dependencies.
type Handlers struct {
	computer *returns.Computer
	cfg      *config.Config
	riskFree RiskFreeSource
	log      *logger.Logger
}

// New builds the handler set. riskFree may be nil, in which case the
// configured rate is the only default.
func New(computer *returns.Computer, cfg *config.Config, riskFree RiskFreeSource, log *logger.Logger) *Handlers {
	return &Handlers{
		computer: computer,
		cfg:      cfg,
		riskFree: riskFree,
		log:      log.WithComponent("handlers"),
	}
}

// riskFreeRate resolves the rate for one request: explicit query param,
// then the live source, then the configured fallback.
func (h *Handlers) riskFreeRate(r *http.Request) float64 {
	if s := r.URL.Query().Get("risk_free"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	if h.riskFree != nil {
		return h.riskFree.Rate(r.Context())
	}
	return h.cfg.RiskFreeRate
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// parseRange reads optional start/end query params (YYYY-MM-DD).
func parseRange(r *http.Request) (returns.Range, error) {
	var rng returns.Range
	if s := r.URL.Query().Get("start"); s != "" {
		d, err := contracts.ParseDay(s)
		if err != nil {
			return rng, fmt.Errorf("invalid start date %q", s)
		}
		rng.Start = d
	}
	if s := r.URL.Query().Get("end"); s != "" {
		d, err := contracts.ParseDay(s)
		if err != nil {
			return rng, fmt.Errorf("invalid end date %q", s)
		}
		rng.End = d
	}
	return rng, nil
}

func parseInterval(r *http.Request) (returns.Interval, error) {
	s := r.URL.Query().Get("interval")
	if s == "" {
		return returns.Daily, nil
	}
	return returns.ParseInterval(s)
}

func boolParam(r *http.Request, name string, def bool) bool {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

// parseWeights parses "TICKER:W,TICKER:W" into a weight map.
func parseWeights(raw string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, part := range strings.Split(raw, ",") {
		ticker, val, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid weight entry %q", part)
		}
		w, err := strconv.ParseFloat(val, 64)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("invalid weight for %s: %q", ticker, val)
		}
		out[ticker] = w
	}
	return out, nil
}

func intParam(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
