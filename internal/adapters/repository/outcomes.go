package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/curata/curata/internal/domain/model"
	"github.com/curata/curata/pkg/metrics"
)

// InMemoryOutcomeLog implements OutcomeLog with an append-order slice and a
// proposal-id index. History is never deleted: the strategy analyzer needs
// the full record.
type InMemoryOutcomeLog struct {
	mu      sync.RWMutex
	history []model.SubmissionOutcome
	byID    map[string]int // proposal id -> index into history
	pending int
}

// NewOutcomeLog constructs an empty outcome log.
func NewOutcomeLog() *InMemoryOutcomeLog {
	return &InMemoryOutcomeLog{
		byID: make(map[string]int),
	}
}

// Append records a new outcome at the end of the history.
func (l *InMemoryOutcomeLog) Append(ctx context.Context, outcome model.SubmissionOutcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byID[outcome.ProposalID]; ok {
		metrics.RecordErrorByComponent("outcome_log", "duplicate_proposal")
		return fmt.Errorf("proposal %q: %w", outcome.ProposalID, ErrDuplicateProposal)
	}

	l.byID[outcome.ProposalID] = len(l.history)
	l.history = append(l.history, outcome)
	if !outcome.Status.Decided() {
		l.pending++
	}
	metrics.UpdateOutcomesTotal(len(l.history))
	metrics.UpdatePendingOutcomes(l.pending)
	return nil
}

// Decide attaches a final decision to a pending outcome, exactly once.
func (l *InMemoryOutcomeLog) Decide(ctx context.Context, proposalID string, status model.OutcomeStatus, decidedAt time.Time) (model.SubmissionOutcome, error) {
	if !status.Decided() {
		return model.SubmissionOutcome{}, fmt.Errorf("status %q: %w", status, ErrInvalidDecision)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.byID[proposalID]
	if !ok {
		metrics.RecordErrorByComponent("outcome_log", "not_found")
		return model.SubmissionOutcome{}, fmt.Errorf("proposal %q: %w", proposalID, ErrNotFound)
	}
	if l.history[idx].Status.Decided() {
		metrics.RecordErrorByComponent("outcome_log", "already_decided")
		return model.SubmissionOutcome{}, fmt.Errorf("proposal %q: %w", proposalID, ErrAlreadyDecided)
	}

	l.history[idx].Status = status
	l.history[idx].DecidedAt = &decidedAt
	l.pending--
	metrics.UpdatePendingOutcomes(l.pending)
	return l.history[idx], nil
}

// Snapshot returns a copy of the history in append order.
func (l *InMemoryOutcomeLog) Snapshot(ctx context.Context) []model.SubmissionOutcome {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.SubmissionOutcome, len(l.history))
	copy(out, l.history)
	return out
}

// Count returns the number of recorded outcomes.
func (l *InMemoryOutcomeLog) Count(ctx context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.history)
}

// PendingCount returns the number of undecided outcomes.
func (l *InMemoryOutcomeLog) PendingCount(ctx context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pending
}
