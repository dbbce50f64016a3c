// Package repository defines the in-memory stores behind the service:
// the opportunity catalog with its deadline index and the append-only
// submission outcome log.
package repository

import (
	"context"
	"time"

	"github.com/curata/curata/internal/domain/model"
)

// DeadlineEntry is one row of an upcoming-deadline query.
type DeadlineEntry struct {
	Opportunity   model.Opportunity `json:"opportunity"`
	DaysRemaining int               `json:"days_remaining"`
	// ReminderWindow labels how close the deadline is: "1_day", "3_days",
	// "1_week", or "" when outside every reminder window.
	ReminderWindow string `json:"reminder_window,omitempty"`
}

// OpportunityStore provides access to the opportunity catalog.
type OpportunityStore interface {
	// Insert adds a new opportunity. Returns ErrDuplicateOpportunity when
	// the id is already present.
	Insert(ctx context.Context, opp model.Opportunity) error

	// Get returns the opportunity with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Opportunity, error)

	// Track bookmarks an opportunity, attaching the relevance score it was
	// bookmarked at. Returns the updated record or ErrNotFound.
	Track(ctx context.Context, id string, relevance float64) (model.Opportunity, error)

	// Snapshot returns a copy of the whole catalog ordered by id ascending,
	// suitable as a ranking pool.
	Snapshot(ctx context.Context) []model.Opportunity

	// UpcomingDeadlines returns up to n opportunities whose deadline is at
	// or after now, ordered by deadline ascending then id ascending.
	UpcomingDeadlines(ctx context.Context, now time.Time, n int) ([]DeadlineEntry, error)

	// Count returns the number of opportunities in the catalog.
	Count(ctx context.Context) int
}

// OutcomeLog is the append-only history of submission outcomes.
type OutcomeLog interface {
	// Append records a new outcome. Returns ErrDuplicateProposal when the
	// proposal id is already present.
	Append(ctx context.Context, outcome model.SubmissionOutcome) error

	// Decide attaches a final decision to a pending outcome, exactly once.
	// Returns ErrNotFound for unknown proposals, ErrAlreadyDecided when a
	// decision was attached before, and ErrInvalidDecision when status is
	// not accepted or rejected.
	Decide(ctx context.Context, proposalID string, status model.OutcomeStatus, decidedAt time.Time) (model.SubmissionOutcome, error)

	// Snapshot returns a copy of the full history in append order.
	Snapshot(ctx context.Context) []model.SubmissionOutcome

	// Count returns the number of recorded outcomes.
	Count(ctx context.Context) int

	// PendingCount returns the number of outcomes still awaiting a decision.
	PendingCount(ctx context.Context) int
}
