// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/curata/curata/internal/domain/model"
	"github.com/curata/curata/internal/domain/scout"
)

// RankDependencies defines the interface for relevance ranking.
type RankDependencies interface {
	RankForProfile(ctx context.Context, profile model.UserProfile, filter *scout.Filter, limit int) ([]model.ScoredOpportunity, error)
}

// RankHandler handles ranking requests.
type RankHandler struct {
	deps     RankDependencies
	maxLimit int
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies, maxLimit int) *RankHandler {
	return &RankHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// rankRequest mirrors the schema for POST /rank.
type rankRequest struct {
	Profile  profilePayload `json:"profile"`
	Types    []string       `json:"types"`
	MinScore float64        `json:"min_score"`
	Limit    int            `json:"limit"`
}

func (r rankRequest) filter() (*scout.Filter, error) {
	if len(r.Types) == 0 && r.MinScore == 0 {
		return nil, nil
	}
	f := &scout.Filter{MinScore: r.MinScore}
	for _, raw := range r.Types {
		t, err := model.ParseOpportunityType(raw)
		if err != nil {
			return nil, err
		}
		f.Types = append(f.Types, t)
	}
	return f, nil
}

// HandleRank handles POST /rank requests.
func (h *RankHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.Profile.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if req.Limit == 0 || req.Limit > h.maxLimit {
		req.Limit = h.maxLimit
	}
	filter, err := req.filter()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ranked, err := h.deps.RankForProfile(r.Context(), req.Profile.toModel(), filter, req.Limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if ranked == nil {
		ranked = []model.ScoredOpportunity{}
	}
	writeJSON(w, http.StatusOK, ranked)
}
