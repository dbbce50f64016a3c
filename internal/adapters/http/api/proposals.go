// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/curata/curata/internal/domain/model"
)

// ProposalDependencies defines the interface for proposal drafting.
type ProposalDependencies interface {
	DraftProposal(ctx context.Context, profile model.UserProfile, opportunityID string, tone model.Tone) (model.ProposalDraft, error)
	DraftVariants(ctx context.Context, profile model.UserProfile, opportunityID string) ([]model.ProposalDraft, error)
}

// ProposalsHandler handles proposal drafting requests.
type ProposalsHandler struct {
	deps ProposalDependencies
}

// NewProposalsHandler creates a new proposals handler.
func NewProposalsHandler(deps ProposalDependencies) *ProposalsHandler {
	return &ProposalsHandler{deps: deps}
}

// proposalRequest mirrors the schema for POST /proposals. Omitting the tone
// requests one draft per supported tone.
type proposalRequest struct {
	Profile       profilePayload `json:"profile"`
	OpportunityID string         `json:"opportunity_id"`
	Tone          string         `json:"tone"`
}

func (p proposalRequest) validate() error {
	if strings.TrimSpace(p.OpportunityID) == "" {
		return errors.New("missing opportunity_id")
	}
	if p.Tone != "" {
		if _, err := model.ParseTone(p.Tone); err != nil {
			return errors.New("invalid tone; must be formal, engaging or impact-driven")
		}
	}
	return nil
}

// HandleDraft handles POST /proposals requests.
func (h *ProposalsHandler) HandleDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if req.Tone == "" {
		variants, err := h.deps.DraftVariants(r.Context(), req.Profile.toModel(), strings.TrimSpace(req.OpportunityID))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, variants)
		return
	}

	tone, _ := model.ParseTone(req.Tone)
	draft, err := h.deps.DraftProposal(r.Context(), req.Profile.toModel(), strings.TrimSpace(req.OpportunityID), tone)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}
