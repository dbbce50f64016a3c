package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/curata/curata/internal/domain/model"
	"github.com/curata/curata/pkg/metrics"
)

// Treap-based deadline index over the opportunity catalog.
//
// Ordering: deadline ASC, then opportunity id ASC (deterministic). In-order
// traversal walks from the most urgent deadline outward, so upcoming-deadline
// queries stop after n hits instead of sorting the whole catalog.

// deadline reminder window thresholds, mirroring the reminder schedule the
// calendar keeps for users (1 week / 3 days / 1 day before the deadline).
const (
	reminderWeekDays  = 7
	reminderShortDays = 3
	reminderFinalDays = 1
)

type deadlineNode struct {
	id       string
	deadline int64 // unix seconds
	prio     uint64
	left     *deadlineNode
	right    *deadlineNode
}

// deadlineLess orders by (deadline, id) ascending.
func deadlineLess(aDeadline int64, aID string, bDeadline int64, bID string) bool {
	if aDeadline != bDeadline {
		return aDeadline < bDeadline
	}
	return aID < bID
}

// idPriority derives a stable pseudo-random treap priority from the id, so
// rebuilding the index from the same records yields the same shape.
func idPriority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func deadlineInsert(n *deadlineNode, id string, deadline int64) *deadlineNode {
	if n == nil {
		return &deadlineNode{id: id, deadline: deadline, prio: idPriority(id)}
	}
	if deadlineLess(deadline, id, n.deadline, n.id) {
		n.left = deadlineInsert(n.left, id, deadline)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = deadlineInsert(n.right, id, deadline)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	return n
}

func rotateRight(y *deadlineNode) *deadlineNode {
	x := y.left
	y.left = x.right
	x.right = y
	return x
}

func rotateLeft(x *deadlineNode) *deadlineNode {
	y := x.right
	x.right = y.left
	y.left = x
	return y
}

// collectUpcoming walks in deadline order, skipping entries before cutoff,
// until limit entries are collected.
func collectUpcoming(n *deadlineNode, cutoff int64, limit int, out *[]string) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectUpcoming(n.left, cutoff, limit, out)
	if len(*out) < limit && n.deadline >= cutoff {
		*out = append(*out, n.id)
	}
	if len(*out) < limit {
		collectUpcoming(n.right, cutoff, limit, out)
	}
}

// InMemoryOpportunityStore implements OpportunityStore with a map catalog
// plus a treap deadline index.
type InMemoryOpportunityStore struct {
	mu   sync.RWMutex
	byID map[string]model.Opportunity
	root *deadlineNode
}

// NewOpportunityStore constructs an empty in-memory opportunity store.
func NewOpportunityStore() *InMemoryOpportunityStore {
	return &InMemoryOpportunityStore{
		byID: make(map[string]model.Opportunity),
	}
}

// Insert adds a new opportunity to the catalog and the deadline index.
func (s *InMemoryOpportunityStore) Insert(ctx context.Context, opp model.Opportunity) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[opp.ID]; ok {
		metrics.RecordErrorByComponent("repository", "duplicate_opportunity")
		return ErrDuplicateOpportunity
	}
	s.byID[opp.ID] = opp
	s.root = deadlineInsert(s.root, opp.ID, opp.Deadline.Unix())
	metrics.UpdateOpportunitiesTotal(len(s.byID))
	return nil
}

// Get returns the opportunity with the given id.
func (s *InMemoryOpportunityStore) Get(ctx context.Context, id string) (model.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opp, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Opportunity{}, ErrNotFound
	}
	return opp, nil
}

// Track bookmarks an opportunity and attaches the relevance score it was
// bookmarked at. The deadline index is unaffected.
func (s *InMemoryOpportunityStore) Track(ctx context.Context, id string, relevance float64) (model.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Opportunity{}, ErrNotFound
	}
	opp.Tracked = true
	opp.RelevanceScore = relevance
	s.byID[id] = opp
	return opp, nil
}

// Snapshot returns a copy of the catalog ordered by id ascending.
func (s *InMemoryOpportunityStore) Snapshot(ctx context.Context) []model.Opportunity {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Opportunity, 0, len(s.byID))
	for _, opp := range s.byID {
		out = append(out, opp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpcomingDeadlines returns up to n entries at or after now in deadline order.
func (s *InMemoryOpportunityStore) UpcomingDeadlines(ctx context.Context, now time.Time, n int) ([]DeadlineEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, n)
	collectUpcoming(s.root, now.Unix(), n, &ids)

	out := make([]DeadlineEntry, 0, len(ids))
	for _, id := range ids {
		opp, ok := s.byID[id]
		if !ok {
			continue
		}
		days := int(opp.Deadline.Sub(now).Hours() / 24)
		out = append(out, DeadlineEntry{
			Opportunity:    opp,
			DaysRemaining:  days,
			ReminderWindow: reminderWindow(days),
		})
	}
	return out, nil
}

// Count returns the catalog size.
func (s *InMemoryOpportunityStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// reminderWindow maps days remaining to the tightest matching window label.
func reminderWindow(days int) string {
	switch {
	case days < 0:
		return ""
	case days <= reminderFinalDays:
		return "1_day"
	case days <= reminderShortDays:
		return "3_days"
	case days <= reminderWeekDays:
		return "1_week"
	default:
		return ""
	}
}
