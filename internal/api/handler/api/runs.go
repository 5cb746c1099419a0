// internal/api/handler/api/runs.go
package api

import (
	"net/http"
	"strconv"

	"github.com/minjia/goldgap/internal/api/response"
	"github.com/minjia/goldgap/internal/export"
	"github.com/minjia/goldgap/internal/storage/run"
)

// RunsHandler serves valuation run queries.
type RunsHandler struct {
	store run.Store
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(store run.Store) *RunsHandler {
	return &RunsHandler{store: store}
}

// Latest returns the most recent run.
func (h *RunsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.store.Latest(r.Context())
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	response.JSON(w, http.StatusOK, export.ToRunJSON(latest))
}

// List returns recent runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.store.List(r.Context(), limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]export.RunJSON, 0, len(runs))
	for _, rn := range runs {
		out = append(out, export.ToRunJSON(rn))
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"runs":  out,
		"total": len(out),
		"limit": limit,
	})
}

// GetByID returns a single run by ID.
func (h *RunsHandler) GetByID(w http.ResponseWriter, r *http.Request, id string) {
	rn, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	response.JSON(w, http.StatusOK, export.ToRunJSON(rn))
}
