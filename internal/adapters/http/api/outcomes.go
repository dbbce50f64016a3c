// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/curata/curata/internal/domain/model"
)

// OutcomeDependencies defines the interface for the outcome history.
type OutcomeDependencies interface {
	RecordOutcome(ctx context.Context, outcome model.SubmissionOutcome) (model.SubmissionOutcome, error)
	DecideOutcome(ctx context.Context, proposalID string, status model.OutcomeStatus) (model.SubmissionOutcome, error)
}

// OutcomesHandler handles submission outcome requests.
type OutcomesHandler struct {
	deps OutcomeDependencies
}

// NewOutcomesHandler creates a new outcomes handler.
func NewOutcomesHandler(deps OutcomeDependencies) *OutcomesHandler {
	return &OutcomesHandler{deps: deps}
}

// outcomeRequest mirrors the schema for POST /outcomes.
type outcomeRequest struct {
	ProposalID    string `json:"proposal_id"`
	OpportunityID string `json:"opportunity_id"`
	Tone          string `json:"tone"`
	Status        string `json:"status"`
	SubmittedAt   string `json:"submitted_at"`
}

func (o outcomeRequest) validate() error {
	switch {
	case strings.TrimSpace(o.OpportunityID) == "":
		return errors.New("missing opportunity_id")
	case strings.TrimSpace(o.Tone) == "":
		return errors.New("missing tone")
	}
	if _, err := model.ParseTone(o.Tone); err != nil {
		return errors.New("invalid tone; must be formal, engaging or impact-driven")
	}
	if o.Status != "" {
		if _, err := model.ParseOutcomeStatus(o.Status); err != nil {
			return errors.New("invalid status; must be pending, accepted or rejected")
		}
	}
	if o.SubmittedAt != "" {
		if _, err := time.Parse(time.RFC3339, o.SubmittedAt); err != nil {
			return errors.New("invalid submitted_at; must be RFC3339")
		}
	}
	return nil
}

func (o outcomeRequest) toModel() model.SubmissionOutcome {
	tone, _ := model.ParseTone(o.Tone)
	out := model.SubmissionOutcome{
		ProposalID:    strings.TrimSpace(o.ProposalID),
		OpportunityID: strings.TrimSpace(o.OpportunityID),
		Tone:          tone,
	}
	if o.Status != "" {
		out.Status, _ = model.ParseOutcomeStatus(o.Status)
	}
	if o.SubmittedAt != "" {
		out.SubmittedAt, _ = time.Parse(time.RFC3339, o.SubmittedAt)
	}
	return out
}

// HandleRecord handles POST /outcomes requests.
func (h *OutcomesHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	recorded, err := h.deps.RecordOutcome(r.Context(), req.toModel())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recorded)
}

// HandleDecision handles POST /outcomes/{proposal_id}/decision requests.
func (h *OutcomesHandler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/outcomes/")
	proposalID, ok := strings.CutSuffix(path, "/decision")
	if !ok || proposalID == "" || strings.Contains(proposalID, "/") {
		http.NotFound(w, r)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	status, err := model.ParseOutcomeStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid status; must be accepted or rejected"))
		return
	}

	decided, err := h.deps.DecideOutcome(r.Context(), proposalID, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decided)
}
