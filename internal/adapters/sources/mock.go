package sources

import (
	"context"
	"time"

	"github.com/curata/curata/internal/domain/model"
)

// MockSource serves a small built-in catalog for demos and local runs.
// Deadlines are generated relative to the clock so the catalog never goes
// stale.
type MockSource struct {
	now func() time.Time
}

// MockOption applies a configuration option to the MockSource.
type MockOption func(*MockSource)

// WithMockClock overrides the clock used to derive relative deadlines.
func WithMockClock(now func() time.Time) MockOption {
	return func(s *MockSource) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMockSource creates a demo source with configuration options.
func NewMockSource(opts ...MockOption) *MockSource {
	s := &MockSource{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source.
func (s *MockSource) Name() string { return "mock" }

// Fetch returns the demo catalog.
func (s *MockSource) Fetch(ctx context.Context) ([]model.Opportunity, error) {
	now := s.now()
	daysOut := func(d int) time.Time {
		return now.Add(time.Duration(d) * 24 * time.Hour).Truncate(time.Hour)
	}

	return []model.Opportunity{
		{
			ID:          "opp-mock-001",
			Title:       "Digital Arts Exhibition",
			Description: "Curated exhibition of artists exploring technology and human experience. Submit 3-5 completed works with an artist statement and high-res images.",
			Type:        model.TypeExhibition,
			Deadline:    daysOut(30),
			Location:    "ArtNow Gallery",
			Source:      s.Name(),
		},
		{
			ID:          "opp-mock-002",
			Title:       "Creative Innovation Grant",
			Description: "Grant for projects at the intersection of traditional and digital media. Project proposal, budget breakdown, and letters of support required.",
			Type:        model.TypeGrant,
			Deadline:    daysOut(90),
			BudgetRange: "$50,000",
			Source:      s.Name(),
		},
		{
			ID:          "opp-mock-003",
			Title:       "Responsible Technology Residency",
			Description: "A one-year residency to explore the implications of generative tools in creative practice. Research proposal and recommendation letters required.",
			Type:        model.TypeResidency,
			Deadline:    daysOut(105),
			Location:    "Center for Responsible Technology",
			Source:      s.Name(),
		},
		{
			ID:          "opp-mock-004",
			Title:       "Open Call: Projection Mapping Festival",
			Description: "We are seeking visionary installations at the intersection of light, architecture, and interactive media for the spring festival.",
			Type:        model.TypeCall,
			Deadline:    daysOut(14),
			Location:    "Riverside Arts District",
			Source:      s.Name(),
		},
		{
			ID:          "opp-mock-005",
			Title:       "Emerging Media Exhibition: Machine Made",
			Description: "Group exhibition of computational and machine-assisted works. Prior exhibition experience preferred, statement of process required.",
			Type:        model.TypeExhibition,
			Deadline:    daysOut(45),
			Location:    "Machine Made Gallery",
			Source:      s.Name(),
		},
	}, nil
}
