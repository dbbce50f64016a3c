// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/curata/curata/internal/adapters/repository"
)

// DeadlineDependencies defines the interface for deadline queries.
type DeadlineDependencies interface {
	UpcomingDeadlines(ctx context.Context, n int) ([]repository.DeadlineEntry, error)
}

// DeadlinesHandler handles upcoming-deadline requests.
type DeadlinesHandler struct {
	deps     DeadlineDependencies
	maxLimit int
}

// NewDeadlinesHandler creates a new deadlines handler.
func NewDeadlinesHandler(deps DeadlineDependencies, maxLimit int) *DeadlinesHandler {
	return &DeadlinesHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleDeadlines handles GET /deadlines?limit=N requests.
func (h *DeadlinesHandler) HandleDeadlines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if parsed > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		n = parsed
	}
	entries, err := h.deps.UpcomingDeadlines(r.Context(), n)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []repository.DeadlineEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
