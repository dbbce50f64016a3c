// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/curata/curata/internal/domain/dedupe"
	"github.com/curata/curata/internal/domain/model"
)

// OpportunityDependencies defines the interface for opportunity ingestion
// and catalog reads.
type OpportunityDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, opp model.Opportunity) bool
	Opportunity(ctx context.Context, id string) (model.Opportunity, error)
	TrackOpportunity(ctx context.Context, id string, profile model.UserProfile) (model.Opportunity, error)
}

// OpportunitiesHandler handles opportunity requests.
type OpportunitiesHandler struct {
	deps OpportunityDependencies
}

// NewOpportunitiesHandler creates a new opportunities handler.
func NewOpportunitiesHandler(deps OpportunityDependencies) *OpportunitiesHandler {
	return &OpportunitiesHandler{deps: deps}
}

// HandleCreate handles POST /opportunities requests.
func (h *OpportunitiesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req opportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	opp := req.toModel()
	if opp.ID == "" {
		opp.ID = "opp-" + uuid.NewString()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), opp.ID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", OpportunityID: opp.ID, Duplicate: true})
		return
	}

	// Try to enqueue for async processing
	if ok := h.deps.Enqueue(r.Context(), opp); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), opp.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", OpportunityID: opp.ID, Duplicate: false})
}

// HandleItem dispatches GET /opportunities/{id} and
// POST /opportunities/{id}/track requests.
func (h *OpportunitiesHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/opportunities/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if id, ok := strings.CutSuffix(path, "/track"); ok {
		h.handleTrack(w, r, id)
		return
	}
	if strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}
	h.handleGet(w, r, path)
}

func (h *OpportunitiesHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	opp, err := h.deps.Opportunity(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

func (h *OpportunitiesHandler) handleTrack(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost || id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Profile profilePayload `json:"profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	opp, err := h.deps.TrackOpportunity(r.Context(), id, req.Profile.toModel())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opp)
}
