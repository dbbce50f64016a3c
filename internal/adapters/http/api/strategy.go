// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/curata/curata/internal/domain/strategy"
)

// StrategyDependencies defines the interface for strategy analysis.
type StrategyDependencies interface {
	Recommendations(ctx context.Context) (strategy.Report, error)
	Patterns(ctx context.Context) (strategy.Summary, error)
}

// StrategyHandler handles strategy analysis requests.
type StrategyHandler struct {
	deps StrategyDependencies
}

// NewStrategyHandler creates a new strategy handler.
func NewStrategyHandler(deps StrategyDependencies) *StrategyHandler {
	return &StrategyHandler{deps: deps}
}

// HandleRecommendations handles GET /strategy/recommendations requests.
func (h *StrategyHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report, err := h.deps.Recommendations(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandlePatterns handles GET /strategy/patterns requests.
func (h *StrategyHandler) HandlePatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	summary, err := h.deps.Patterns(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
