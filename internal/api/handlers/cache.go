package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Invalidate drops every cache tier for one portfolio.
func (h *Handlers) Invalidate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	h.computer.Cache().Invalidate(r.Context(), name)
	h.log.Infof("cache invalidated for %s", name)
	respondJSON(w, http.StatusOK, map[string]string{"invalidated": name})
}

// InvalidateAll drops every cache tier for all portfolios.
func (h *Handlers) InvalidateAll(w http.ResponseWriter, r *http.Request) {
	h.computer.Cache().InvalidateAll(r.Context())
	h.log.Info("all caches invalidated")
	respondJSON(w, http.StatusOK, map[string]string{"invalidated": "all"})
}
