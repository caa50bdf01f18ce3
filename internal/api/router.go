package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quantterm/backend/internal/api/handlers"
	"github.com/quantterm/backend/pkg/logger"
)

func newRouter(h *handlers.Handlers, log *logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverMiddleware(log))
	r.Use(requestLogMiddleware(log))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/portfolios", h.ListPortfolios).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios/{name}/returns", h.PortfolioReturns).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios/{name}/returns/daily", h.DailyReturnTable).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios/{name}/weights", h.PortfolioWeights).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios/{name}/rolling/{metric}", h.RollingMetric).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios/{name}/stats", h.RiskMetrics).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios/{name}/summary", h.Summary).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios/{name}/correlation", h.Correlation).Methods(http.MethodGet)
	v1.HandleFunc("/portfolios/{name}/cash-drag", h.CashDrag).Methods(http.MethodGet)

	v1.HandleFunc("/portfolios/{name}/returns/fixed", h.FixedWeightReturns).Methods(http.MethodGet)

	v1.HandleFunc("/tickers/{ticker}/returns", h.TickerReturns).Methods(http.MethodGet)
	v1.HandleFunc("/tickers/{ticker}/rolling/{metric}", h.TickerRollingMetric).Methods(http.MethodGet)

	v1.HandleFunc("/cache", h.InvalidateAll).Methods(http.MethodDelete)
	v1.HandleFunc("/cache/{name}", h.Invalidate).Methods(http.MethodDelete)

	return r
}
