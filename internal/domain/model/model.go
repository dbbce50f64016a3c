// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// OpportunityType classifies an opportunity record.
type OpportunityType string

// Supported opportunity types.
const (
	TypeExhibition OpportunityType = "exhibition"
	TypeGrant      OpportunityType = "grant"
	TypeResidency  OpportunityType = "residency"
	TypeCall       OpportunityType = "call"
)

// Valid reports whether t is one of the supported types.
func (t OpportunityType) Valid() bool {
	switch t {
	case TypeExhibition, TypeGrant, TypeResidency, TypeCall:
		return true
	}
	return false
}

// ParseOpportunityType parses a type string case-insensitively.
func ParseOpportunityType(s string) (OpportunityType, error) {
	t := OpportunityType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown opportunity type: %q", s)
	}
	return t, nil
}

// Tone is the style label attached to a generated proposal.
type Tone string

// Supported proposal tones.
const (
	ToneFormal       Tone = "formal"
	ToneEngaging     Tone = "engaging"
	ToneImpactDriven Tone = "impact-driven"
)

// Valid reports whether t is one of the supported tones.
func (t Tone) Valid() bool {
	switch t {
	case ToneFormal, ToneEngaging, ToneImpactDriven:
		return true
	}
	return false
}

// ParseTone parses a tone string case-insensitively.
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tone: %q", s)
	}
	return t, nil
}

// OutcomeStatus is the decision state of a submitted proposal.
type OutcomeStatus string

// Supported outcome statuses.
const (
	StatusPending  OutcomeStatus = "pending"
	StatusAccepted OutcomeStatus = "accepted"
	StatusRejected OutcomeStatus = "rejected"
)

// Valid reports whether s is one of the supported statuses.
func (s OutcomeStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// ParseOutcomeStatus parses a status string case-insensitively.
func ParseOutcomeStatus(s string) (OutcomeStatus, error) {
	st := OutcomeStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown outcome status: %q", s)
	}
	return st, nil
}

// Decided reports whether s carries a final decision.
func (s OutcomeStatus) Decided() bool {
	return s == StatusAccepted || s == StatusRejected
}

// UserProfile describes the person opportunities are ranked for.
// Read-only to the scout once scoring begins.
type UserProfile struct {
	Name             string   `json:"name"`
	Specializations  []string `json:"specializations"`
	Interests        []string `json:"interests"`
	PastAchievements []string `json:"past_achievements,omitempty"`
}

// HasSignal reports whether the profile carries anything to score against.
func (p UserProfile) HasSignal() bool {
	return len(p.Specializations) > 0 || len(p.Interests) > 0
}

// Opportunity represents a professional opportunity record supplied by a
// source connector or generator. Keywords are derived from the description
// when the record arrives without them. RelevanceScore and Tracked are the
// only fields mutated after creation: both are attached when a user
// bookmarks the opportunity.
type Opportunity struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Type           OpportunityType `json:"type"`
	Deadline       time.Time       `json:"deadline"`
	BudgetRange    string          `json:"budget_range,omitempty"`
	Location       string          `json:"location,omitempty"`
	Source         string          `json:"source"`
	Keywords       []string        `json:"keywords"`
	RelevanceScore float64         `json:"relevance_score"`
	Tracked        bool            `json:"tracked"`
}

// Expired reports whether the deadline is strictly before now.
func (o Opportunity) Expired(now time.Time) bool {
	return o.Deadline.Before(now)
}

// ScoredOpportunity wraps an Opportunity carrying its computed relevance
// score with a human-readable rationale naming the matched keywords.
type ScoredOpportunity struct {
	Opportunity
	Rationale []string `json:"rationale"`
}

// SubmissionOutcome records the result of a submitted proposal. Created when
// a proposal is submitted, decided at most once, never deleted.
type SubmissionOutcome struct {
	ProposalID    string        `json:"proposal_id"`
	OpportunityID string        `json:"opportunity_id"`
	Tone          Tone          `json:"tone"`
	Status        OutcomeStatus `json:"status"`
	SubmittedAt   time.Time     `json:"submitted_at"`
	DecidedAt     *time.Time    `json:"decided_at,omitempty"`
}

// StrategyRecommendation is a derived, never persisted suggestion for one
// strategy dimension.
type StrategyRecommendation struct {
	Dimension            string  `json:"dimension"`
	RecommendedValue     string  `json:"recommended_value"`
	Confidence           float64 `json:"confidence"`
	SupportingSampleSize int     `json:"supporting_sample_size"`
	Rationale            string  `json:"rationale"`
}

// ProposalDraft is templated proposal text generated for an opportunity.
type ProposalDraft struct {
	ProposalID    string    `json:"proposal_id"`
	OpportunityID string    `json:"opportunity_id"`
	Content       string    `json:"content"`
	Tone          Tone      `json:"tone"`
	WordCount     int       `json:"word_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}
