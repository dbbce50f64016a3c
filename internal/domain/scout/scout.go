// Package scout ranks opportunity pools by fit to a user profile.
//
// Ranking is a pure computation: identical inputs produce identical output
// sequences, so the scout is safe to call from concurrent handlers without
// locking.
package scout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/curata/curata/internal/domain/model"
)

// Default scoring configuration constants. Specialization matches weigh
// twice as much as generic interest matches unless configured otherwise.
const (
	defaultSpecializationWeight = 2.0
	defaultInterestWeight       = 1.0
)

// Option applies a configuration option to the Scout.
type Option func(*Scout)

// WithWeights sets the per-category match weights.
func WithWeights(specialization, interest float64) Option {
	return func(s *Scout) {
		if specialization > 0 {
			s.specializationWeight = specialization
		}
		if interest > 0 {
			s.interestWeight = interest
		}
	}
}

// WithClock overrides the time source used for deadline expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Scout) {
		if now != nil {
			s.now = now
		}
	}
}

// Filter narrows a ranking request. Zero value means no filtering.
type Filter struct {
	Types    []model.OpportunityType
	MinScore float64
}

func (f *Filter) allowsType(t model.OpportunityType) bool {
	if f == nil || len(f.Types) == 0 {
		return true
	}
	for _, want := range f.Types {
		if t == want {
			return true
		}
	}
	return false
}

// Scout computes relevance scores for opportunities against a profile.
type Scout struct {
	specializationWeight float64
	interestWeight       float64
	now                  func() time.Time
}

// New creates a Scout with configuration options.
func New(opts ...Option) *Scout {
	s := &Scout{
		specializationWeight: defaultSpecializationWeight,
		interestWeight:       defaultInterestWeight,
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank scores every non-expired opportunity in pool against profile and
// returns them sorted by relevance score descending, with deterministic
// tie-breaks on earlier deadline and then ascending opportunity id.
//
// An empty pool is a valid terminal state and yields an empty slice, not an
// error. A profile with neither specializations nor interests has no signal
// to score against and fails with ErrInvalidProfile.
func (s *Scout) Rank(ctx context.Context, profile model.UserProfile, pool []model.Opportunity, filter *Filter) ([]model.ScoredOpportunity, error) {
	if !profile.HasSignal() {
		return nil, fmt.Errorf("profile %q: %w", profile.Name, ErrInvalidProfile)
	}

	specs, interests := profileTerms(profile)

	// Maximum possible weighted overlap for this profile; used to keep
	// scores in [0,1].
	maxOverlap := s.specializationWeight*float64(len(specs)) + s.interestWeight*float64(len(interests))

	now := s.now()
	scored := make([]model.ScoredOpportunity, 0, len(pool))
	for _, opp := range pool {
		// Presenting an expired opportunity would be a correctness
		// violation, so expired entries are removed, not scored at zero.
		if opp.Expired(now) {
			continue
		}
		if !filter.allowsType(opp.Type) {
			continue
		}

		score, rationale := s.score(opp, specs, interests, maxOverlap)
		if filter != nil && score < filter.MinScore {
			continue
		}
		so := model.ScoredOpportunity{Opportunity: opp, Rationale: rationale}
		so.RelevanceScore = score
		scored = append(scored, so)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		if !scored[i].Deadline.Equal(scored[j].Deadline) {
			return scored[i].Deadline.Before(scored[j].Deadline)
		}
		return scored[i].ID < scored[j].ID
	})

	return scored, nil
}

// score computes the weighted keyword overlap for one opportunity. The
// rationale is never empty: it either names every matched keyword or states
// that nothing overlapped.
func (s *Scout) score(opp model.Opportunity, specs, interests map[string]struct{}, maxOverlap float64) (float64, []string) {
	var sum float64
	var rationale []string
	seen := make(map[string]struct{}, len(opp.Keywords))

	for _, kw := range opp.Keywords {
		term := normalizeTerm(kw)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		if _, ok := specs[term]; ok {
			sum += s.specializationWeight
			rationale = append(rationale, fmt.Sprintf("matched specialization %q", term))
			continue
		}
		if _, ok := interests[term]; ok {
			sum += s.interestWeight
			rationale = append(rationale, fmt.Sprintf("matched interest %q", term))
		}
	}

	if len(rationale) == 0 {
		return 0, []string{"no keyword overlap"}
	}

	score := sum / maxOverlap
	if score > 1 {
		score = 1
	}
	return score, rationale
}

// profileTerms normalizes the profile's term sets. A term listed both as a
// specialization and an interest counts once, at the specialization weight.
func profileTerms(profile model.UserProfile) (specs, interests map[string]struct{}) {
	specs = make(map[string]struct{}, len(profile.Specializations))
	for _, t := range profile.Specializations {
		if term := normalizeTerm(t); term != "" {
			specs[term] = struct{}{}
		}
	}
	interests = make(map[string]struct{}, len(profile.Interests))
	for _, t := range profile.Interests {
		term := normalizeTerm(t)
		if term == "" {
			continue
		}
		if _, ok := specs[term]; ok {
			continue
		}
		interests[term] = struct{}{}
	}
	return specs, interests
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
