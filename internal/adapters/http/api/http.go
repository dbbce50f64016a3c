// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/curata/curata/internal/adapters/repository"
	"github.com/curata/curata/internal/domain/dedupe"
	"github.com/curata/curata/internal/domain/model"
	"github.com/curata/curata/internal/domain/scout"
	"github.com/curata/curata/internal/domain/strategy"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an opportunity for async ingestion. Returns false on
	// backpressure or an invalid record.
	Enqueue(ctx context.Context, opp model.Opportunity) bool

	// Catalog read and bookmark operations.
	Opportunity(ctx context.Context, id string) (model.Opportunity, error)
	TrackOpportunity(ctx context.Context, id string, profile model.UserProfile) (model.Opportunity, error)
	UpcomingDeadlines(ctx context.Context, n int) ([]repository.DeadlineEntry, error)

	// Relevance ranking.
	RankForProfile(ctx context.Context, profile model.UserProfile, filter *scout.Filter, limit int) ([]model.ScoredOpportunity, error)

	// Outcome history and strategy analysis.
	RecordOutcome(ctx context.Context, outcome model.SubmissionOutcome) (model.SubmissionOutcome, error)
	DecideOutcome(ctx context.Context, proposalID string, status model.OutcomeStatus) (model.SubmissionOutcome, error)
	Recommendations(ctx context.Context) (strategy.Report, error)
	Patterns(ctx context.Context) (strategy.Summary, error)

	// Proposal drafting.
	DraftProposal(ctx context.Context, profile model.UserProfile, opportunityID string, tone model.Tone) (model.ProposalDraft, error)
	DraftVariants(ctx context.Context, profile model.UserProfile, opportunityID string) ([]model.ProposalDraft, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	opportunitiesHandler *OpportunitiesHandler
	rankHandler          *RankHandler
	outcomesHandler      *OutcomesHandler
	strategyHandler      *StrategyHandler
	proposalsHandler     *ProposalsHandler
	deadlinesHandler     *DeadlinesHandler
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxRankLimit     int
	maxDeadlineLimit int
}

// WithMaxRankLimit caps the limit accepted by the ranking endpoint.
func WithMaxRankLimit(n int) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxRankLimit = n
		}
	}
}

// WithMaxDeadlineLimit caps the limit accepted by the deadlines endpoint.
func WithMaxDeadlineLimit(n int) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxDeadlineLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{
		maxRankLimit:     100,
		maxDeadlineLimit: 50,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		opportunitiesHandler: NewOpportunitiesHandler(deps),
		rankHandler:          NewRankHandler(deps, cfg.maxRankLimit),
		outcomesHandler:      NewOutcomesHandler(deps),
		strategyHandler:      NewStrategyHandler(deps),
		proposalsHandler:     NewProposalsHandler(deps),
		deadlinesHandler:     NewDeadlinesHandler(deps, cfg.maxDeadlineLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/opportunities", MetricsMiddleware(s.opportunitiesHandler.HandleCreate, "opportunities"))
	mux.HandleFunc("/opportunities/", MetricsMiddleware(s.opportunitiesHandler.HandleItem, "opportunity"))
	mux.HandleFunc("/rank", MetricsMiddleware(s.rankHandler.HandleRank, "rank"))
	mux.HandleFunc("/outcomes", MetricsMiddleware(s.outcomesHandler.HandleRecord, "outcomes"))
	mux.HandleFunc("/outcomes/", MetricsMiddleware(s.outcomesHandler.HandleDecision, "outcome_decision"))
	mux.HandleFunc("/strategy/recommendations", MetricsMiddleware(s.strategyHandler.HandleRecommendations, "recommendations"))
	mux.HandleFunc("/strategy/patterns", MetricsMiddleware(s.strategyHandler.HandlePatterns, "patterns"))
	mux.HandleFunc("/proposals", MetricsMiddleware(s.proposalsHandler.HandleDraft, "proposals"))
	mux.HandleFunc("/deadlines", MetricsMiddleware(s.deadlinesHandler.HandleDeadlines, "deadlines"))
}

// profilePayload mirrors the user_profile schema shared by several requests.
type profilePayload struct {
	Name             string   `json:"name"`
	Specializations  []string `json:"specializations"`
	Interests        []string `json:"interests"`
	PastAchievements []string `json:"past_achievements"`
}

func (p profilePayload) toModel() model.UserProfile {
	return model.UserProfile{
		Name:             p.Name,
		Specializations:  p.Specializations,
		Interests:        p.Interests,
		PastAchievements: p.PastAchievements,
	}
}

func (p profilePayload) validate() error {
	if len(p.Specializations) == 0 && len(p.Interests) == 0 {
		return errors.New("profile needs at least one specialization or interest")
	}
	return nil
}

// opportunityRequest mirrors the schema for POST /opportunities.
type opportunityRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Deadline    string   `json:"deadline"`
	BudgetRange string   `json:"budget_range"`
	Location    string   `json:"location"`
	Source      string   `json:"source"`
	Keywords    []string `json:"keywords"`
}

func (o opportunityRequest) validate() error {
	switch {
	case strings.TrimSpace(o.Title) == "":
		return errors.New("missing title")
	case strings.TrimSpace(o.Type) == "":
		return errors.New("missing type")
	case strings.TrimSpace(o.Deadline) == "":
		return errors.New("missing deadline")
	}
	if _, err := model.ParseOpportunityType(o.Type); err != nil {
		return errors.New("invalid type; must be exhibition, grant, residency or call")
	}
	if _, err := parseDeadline(o.Deadline); err != nil {
		return errors.New("invalid deadline; must be RFC3339 or YYYY-MM-DD")
	}
	return nil
}

func (o opportunityRequest) toModel() model.Opportunity {
	typ, _ := model.ParseOpportunityType(o.Type)
	deadline, _ := parseDeadline(o.Deadline)
	return model.Opportunity{
		ID:          strings.TrimSpace(o.ID),
		Title:       strings.TrimSpace(o.Title),
		Description: o.Description,
		Type:        typ,
		Deadline:    deadline,
		BudgetRange: o.BudgetRange,
		Location:    o.Location,
		Source:      o.Source,
		Keywords:    o.Keywords,
	}
}

// parseDeadline accepts RFC3339 timestamps and bare dates.
func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

type ackResponse struct {
	Status        string `json:"status"`
	OpportunityID string `json:"opportunity_id,omitempty"`
	Duplicate     bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates upstream sentinel errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, "already_decided", err)
	case errors.Is(err, repository.ErrDuplicateProposal):
		writeError(w, http.StatusConflict, "duplicate_proposal", err)
	case errors.Is(err, repository.ErrInvalidDecision),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, strategy.ErrInvalidOutcome),
		errors.Is(err, scout.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
