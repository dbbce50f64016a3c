package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/curata/curata/internal/adapters/http/api"
	"github.com/curata/curata/internal/adapters/repository"
	"github.com/curata/curata/internal/domain/model"
	"github.com/curata/curata/internal/domain/scout"
	"github.com/curata/curata/internal/domain/strategy"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeduper struct {
	seen map[string]bool
}

func (m *mockDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeduper) Unrecord(ctx context.Context, id string) {
	if m.seen != nil {
		delete(m.seen, id)
	}
}

func (m *mockDeduper) Size() int64 {
	return int64(len(m.seen))
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// mockDependencies implements api.Dependencies with scripted responses.
type mockDependencies struct {
	*mockDeduper

	enqueueSuccess bool
	enqueued       []model.Opportunity

	catalog map[string]model.Opportunity

	rankResult []model.ScoredOpportunity
	rankErr    error
	lastFilter *scout.Filter
	lastLimit  int

	recorded   []model.SubmissionOutcome
	recordErr  error
	decided    model.SubmissionOutcome
	decideErr  error
	report     strategy.Report
	summary    strategy.Summary
	draft      model.ProposalDraft
	draftErr   error
	variants   []model.ProposalDraft
	deadlines  []repository.DeadlineEntry
	deadlineEr error
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		mockDeduper:    &mockDeduper{},
		enqueueSuccess: true,
		catalog:        make(map[string]model.Opportunity),
	}
}

func (m *mockDependencies) Enqueue(ctx context.Context, opp model.Opportunity) bool {
	if m.enqueueSuccess {
		m.enqueued = append(m.enqueued, opp)
		return true
	}
	return false
}

func (m *mockDependencies) Opportunity(ctx context.Context, id string) (model.Opportunity, error) {
	opp, ok := m.catalog[id]
	if !ok {
		return model.Opportunity{}, fmt.Errorf("opportunity %q: %w", id, repository.ErrNotFound)
	}
	return opp, nil
}

func (m *mockDependencies) TrackOpportunity(ctx context.Context, id string, profile model.UserProfile) (model.Opportunity, error) {
	opp, ok := m.catalog[id]
	if !ok {
		return model.Opportunity{}, fmt.Errorf("opportunity %q: %w", id, repository.ErrNotFound)
	}
	opp.Tracked = true
	opp.RelevanceScore = 0.5
	return opp, nil
}

func (m *mockDependencies) UpcomingDeadlines(ctx context.Context, n int) ([]repository.DeadlineEntry, error) {
	if m.deadlineEr != nil {
		return nil, m.deadlineEr
	}
	if n > len(m.deadlines) {
		return m.deadlines, nil
	}
	return m.deadlines[:n], nil
}

func (m *mockDependencies) RankForProfile(ctx context.Context, profile model.UserProfile, filter *scout.Filter, limit int) ([]model.ScoredOpportunity, error) {
	m.lastFilter = filter
	m.lastLimit = limit
	if m.rankErr != nil {
		return nil, m.rankErr
	}
	return m.rankResult, nil
}

func (m *mockDependencies) RecordOutcome(ctx context.Context, outcome model.SubmissionOutcome) (model.SubmissionOutcome, error) {
	if m.recordErr != nil {
		return model.SubmissionOutcome{}, m.recordErr
	}
	if outcome.ProposalID == "" {
		outcome.ProposalID = "prop-generated"
	}
	if outcome.Status == "" {
		outcome.Status = model.StatusPending
	}
	m.recorded = append(m.recorded, outcome)
	return outcome, nil
}

func (m *mockDependencies) DecideOutcome(ctx context.Context, proposalID string, status model.OutcomeStatus) (model.SubmissionOutcome, error) {
	if m.decideErr != nil {
		return model.SubmissionOutcome{}, m.decideErr
	}
	out := m.decided
	out.ProposalID = proposalID
	out.Status = status
	return out, nil
}

func (m *mockDependencies) Recommendations(ctx context.Context) (strategy.Report, error) {
	return m.report, nil
}

func (m *mockDependencies) Patterns(ctx context.Context) (strategy.Summary, error) {
	return m.summary, nil
}

func (m *mockDependencies) DraftProposal(ctx context.Context, profile model.UserProfile, opportunityID string, tone model.Tone) (model.ProposalDraft, error) {
	if m.draftErr != nil {
		return model.ProposalDraft{}, m.draftErr
	}
	d := m.draft
	d.OpportunityID = opportunityID
	d.Tone = tone
	return d, nil
}

func (m *mockDependencies) DraftVariants(ctx context.Context, profile model.UserProfile, opportunityID string) ([]model.ProposalDraft, error) {
	if m.draftErr != nil {
		return nil, m.draftErr
	}
	return m.variants, nil
}

func newTestMux(deps *mockDependencies, opts ...api.ServerOption) *http.ServeMux {
	statsProvider := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
	server := api.NewServer(deps, statsProvider, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newMockDependencies()
		mux := newTestMux(deps)

		Convey("Then health endpoint should be accessible", func() {
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats endpoint should be accessible", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)

			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})
	})
}

func TestOpportunities_Create(t *testing.T) {
	Convey("Given the opportunities endpoint", t, func() {
		deps := newMockDependencies()
		mux := newTestMux(deps)

		validBody := `{
			"id": "opp-1",
			"title": "Light Festival Open Call",
			"description": "Projection works wanted.",
			"type": "call",
			"deadline": "2026-10-01T00:00:00Z"
		}`

		Convey("When posting a valid opportunity", func() {
			w := postJSON(mux, "/opportunities", validBody)

			Convey("Then it should be accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(len(deps.enqueued), ShouldEqual, 1)
				So(deps.enqueued[0].ID, ShouldEqual, "opp-1")
				So(deps.enqueued[0].Type, ShouldEqual, model.TypeCall)
			})
		})

		Convey("When posting the same opportunity twice", func() {
			postJSON(mux, "/opportunities", validBody)
			w := postJSON(mux, "/opportunities", validBody)

			Convey("Then the second post should report a duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var ack map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["duplicate"], ShouldEqual, true)
				So(len(deps.enqueued), ShouldEqual, 1)
			})
		})

		Convey("When posting without an id", func() {
			w := postJSON(mux, "/opportunities", `{
				"title": "Residency",
				"type": "residency",
				"deadline": "2026-11-15"
			}`)

			Convey("Then an id should be generated", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)

				var ack map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["opportunity_id"], ShouldNotBeEmpty)
			})
		})

		Convey("When posting malformed JSON", func() {
			w := postJSON(mux, "/opportunities", `{not json`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting without a title", func() {
			w := postJSON(mux, "/opportunities", `{"type":"call","deadline":"2026-10-01"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting an unknown type", func() {
			w := postJSON(mux, "/opportunities", `{"title":"x","type":"lottery","deadline":"2026-10-01"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting an unparseable deadline", func() {
			w := postJSON(mux, "/opportunities", `{"title":"x","type":"call","deadline":"soon"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue rejects the record", func() {
			deps.enqueueSuccess = false
			w := postJSON(mux, "/opportunities", validBody)

			Convey("Then the client should see backpressure", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			})

			Convey("And the id should be retryable", func() {
				So(deps.SeenAndRecord(context.Background(), "opp-1"), ShouldBeFalse)
			})
		})

		Convey("When using the wrong method", func() {
			w := get(mux, "/opportunities")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestOpportunities_GetAndTrack(t *testing.T) {
	Convey("Given a catalog with one opportunity", t, func() {
		deps := newMockDependencies()
		deps.catalog["opp-1"] = model.Opportunity{
			ID:       "opp-1",
			Title:    "Light Festival Open Call",
			Type:     model.TypeCall,
			Deadline: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		}
		mux := newTestMux(deps)

		Convey("When getting an existing opportunity", func() {
			w := get(mux, "/opportunities/opp-1")

			So(w.Code, ShouldEqual, http.StatusOK)
			var opp model.Opportunity
			So(json.Unmarshal(w.Body.Bytes(), &opp), ShouldBeNil)
			So(opp.ID, ShouldEqual, "opp-1")
		})

		Convey("When getting a missing opportunity", func() {
			w := get(mux, "/opportunities/nope")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When tracking an existing opportunity", func() {
			w := postJSON(mux, "/opportunities/opp-1/track", `{
				"profile": {"specializations": ["projection"]}
			}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			var opp model.Opportunity
			So(json.Unmarshal(w.Body.Bytes(), &opp), ShouldBeNil)
			So(opp.Tracked, ShouldBeTrue)
		})

		Convey("When tracking a missing opportunity", func() {
			w := postJSON(mux, "/opportunities/nope/track", `{"profile":{}}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When tracking with GET", func() {
			w := get(mux, "/opportunities/opp-1/track")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given the rank endpoint", t, func() {
		deps := newMockDependencies()
		deps.rankResult = []model.ScoredOpportunity{
			{
				Opportunity: model.Opportunity{ID: "opp-1", RelevanceScore: 0.8},
				Rationale:   []string{"projection"},
			},
		}
		mux := newTestMux(deps, api.WithMaxRankLimit(10))

		Convey("When ranking with a valid profile", func() {
			w := postJSON(mux, "/rank", `{
				"profile": {"specializations": ["projection"], "interests": ["immersive"]},
				"limit": 5
			}`)

			Convey("Then ranked results should come back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var ranked []model.ScoredOpportunity
				So(json.Unmarshal(w.Body.Bytes(), &ranked), ShouldBeNil)
				So(len(ranked), ShouldEqual, 1)
				So(deps.lastLimit, ShouldEqual, 5)
				So(deps.lastFilter, ShouldBeNil)
			})
		})

		Convey("When ranking with a type filter and min score", func() {
			w := postJSON(mux, "/rank", `{
				"profile": {"interests": ["immersive"]},
				"types": ["grant", "residency"],
				"min_score": 0.25
			}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastFilter, ShouldNotBeNil)
			So(deps.lastFilter.Types, ShouldResemble, []model.OpportunityType{model.TypeGrant, model.TypeResidency})
			So(deps.lastFilter.MinScore, ShouldEqual, 0.25)
		})

		Convey("When ranking with an unknown type filter", func() {
			w := postJSON(mux, "/rank", `{
				"profile": {"interests": ["immersive"]},
				"types": ["lottery"]
			}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When ranking with an empty profile", func() {
			w := postJSON(mux, "/rank", `{"profile": {"name": "Mara"}}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When ranking with a negative limit", func() {
			w := postJSON(mux, "/rank", `{
				"profile": {"interests": ["immersive"]},
				"limit": -1
			}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			w := postJSON(mux, "/rank", `{
				"profile": {"interests": ["immersive"]},
				"limit": 5000
			}`)

			Convey("Then the limit should be clamped", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 10)
			})
		})

		Convey("When the scout rejects the profile", func() {
			deps.rankErr = fmt.Errorf("profile: %w", scout.ErrInvalidProfile)
			w := postJSON(mux, "/rank", `{"profile": {"interests": ["immersive"]}}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOutcomes(t *testing.T) {
	Convey("Given the outcomes endpoints", t, func() {
		deps := newMockDependencies()
		mux := newTestMux(deps)

		Convey("When recording a valid outcome", func() {
			w := postJSON(mux, "/outcomes", `{
				"opportunity_id": "opp-1",
				"tone": "engaging"
			}`)

			Convey("Then it should be created as pending", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)

				var out model.SubmissionOutcome
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.ProposalID, ShouldNotBeEmpty)
				So(out.Status, ShouldEqual, model.StatusPending)
			})
		})

		Convey("When recording without an opportunity id", func() {
			w := postJSON(mux, "/outcomes", `{"tone": "formal"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When recording with an unknown tone", func() {
			w := postJSON(mux, "/outcomes", `{"opportunity_id": "opp-1", "tone": "shouty"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When recording with an unknown status", func() {
			w := postJSON(mux, "/outcomes", `{"opportunity_id": "opp-1", "tone": "formal", "status": "maybe"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the opportunity does not exist", func() {
			deps.recordErr = fmt.Errorf("opportunity: %w", repository.ErrNotFound)
			w := postJSON(mux, "/outcomes", `{"opportunity_id": "nope", "tone": "formal"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When deciding a pending outcome", func() {
			w := postJSON(mux, "/outcomes/prop-1/decision", `{"status": "accepted"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			var out model.SubmissionOutcome
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out.ProposalID, ShouldEqual, "prop-1")
			So(out.Status, ShouldEqual, model.StatusAccepted)
		})

		Convey("When deciding with an invalid status", func() {
			w := postJSON(mux, "/outcomes/prop-1/decision", `{"status": "later"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When deciding an already decided outcome", func() {
			deps.decideErr = fmt.Errorf("proposal: %w", repository.ErrAlreadyDecided)
			w := postJSON(mux, "/outcomes/prop-1/decision", `{"status": "rejected"}`)
			So(w.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When deciding an unknown proposal", func() {
			deps.decideErr = fmt.Errorf("proposal: %w", repository.ErrNotFound)
			w := postJSON(mux, "/outcomes/prop-x/decision", `{"status": "accepted"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the decision path is malformed", func() {
			w := postJSON(mux, "/outcomes/prop-1/other", `{"status": "accepted"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStrategy(t *testing.T) {
	Convey("Given the strategy endpoints", t, func() {
		deps := newMockDependencies()
		deps.report = strategy.Report{
			Recommendations: []model.StrategyRecommendation{
				{
					Dimension:        strategy.DimensionTone,
					RecommendedValue: "engaging",
					Confidence:       0.75,
				},
			},
		}
		deps.summary = strategy.Summary{TotalSubmissions: 12, Accepted: 6, Rejected: 4, Pending: 2}
		mux := newTestMux(deps)

		Convey("When fetching recommendations", func() {
			w := get(mux, "/strategy/recommendations")

			So(w.Code, ShouldEqual, http.StatusOK)
			var report strategy.Report
			So(json.Unmarshal(w.Body.Bytes(), &report), ShouldBeNil)
			So(len(report.Recommendations), ShouldEqual, 1)
			So(report.Recommendations[0].RecommendedValue, ShouldEqual, "engaging")
		})

		Convey("When fetching patterns", func() {
			w := get(mux, "/strategy/patterns")

			So(w.Code, ShouldEqual, http.StatusOK)
			var summary strategy.Summary
			So(json.Unmarshal(w.Body.Bytes(), &summary), ShouldBeNil)
			So(summary.TotalSubmissions, ShouldEqual, 12)
		})

		Convey("When using POST on a read endpoint", func() {
			w := postJSON(mux, "/strategy/patterns", `{}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestProposals(t *testing.T) {
	Convey("Given the proposals endpoint", t, func() {
		deps := newMockDependencies()
		deps.draft = model.ProposalDraft{ProposalID: "prop-1", Content: "Dear committee", WordCount: 2}
		deps.variants = []model.ProposalDraft{
			{Tone: model.ToneFormal},
			{Tone: model.ToneEngaging},
			{Tone: model.ToneImpactDriven},
		}
		mux := newTestMux(deps)

		Convey("When drafting with a tone", func() {
			w := postJSON(mux, "/proposals", `{
				"profile": {"specializations": ["projection"]},
				"opportunity_id": "opp-1",
				"tone": "formal"
			}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			var draft model.ProposalDraft
			So(json.Unmarshal(w.Body.Bytes(), &draft), ShouldBeNil)
			So(draft.Tone, ShouldEqual, model.ToneFormal)
			So(draft.OpportunityID, ShouldEqual, "opp-1")
		})

		Convey("When drafting without a tone", func() {
			w := postJSON(mux, "/proposals", `{
				"profile": {"specializations": ["projection"]},
				"opportunity_id": "opp-1"
			}`)

			Convey("Then one draft per tone should come back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var variants []model.ProposalDraft
				So(json.Unmarshal(w.Body.Bytes(), &variants), ShouldBeNil)
				So(len(variants), ShouldEqual, 3)
			})
		})

		Convey("When drafting without an opportunity id", func() {
			w := postJSON(mux, "/proposals", `{"tone": "formal"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When drafting with an unknown tone", func() {
			w := postJSON(mux, "/proposals", `{"opportunity_id": "opp-1", "tone": "shouty"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the opportunity does not exist", func() {
			deps.draftErr = fmt.Errorf("opportunity: %w", repository.ErrNotFound)
			w := postJSON(mux, "/proposals", `{"opportunity_id": "nope", "tone": "formal"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestDeadlines(t *testing.T) {
	Convey("Given the deadlines endpoint", t, func() {
		deps := newMockDependencies()
		deps.deadlines = []repository.DeadlineEntry{
			{
				Opportunity:    model.Opportunity{ID: "opp-1"},
				DaysRemaining:  2,
				ReminderWindow: "3_days",
			},
			{
				Opportunity:   model.Opportunity{ID: "opp-2"},
				DaysRemaining: 20,
			},
		}
		mux := newTestMux(deps, api.WithMaxDeadlineLimit(25))

		Convey("When fetching with an explicit limit", func() {
			w := get(mux, "/deadlines?limit=1")

			So(w.Code, ShouldEqual, http.StatusOK)
			var entries []repository.DeadlineEntry
			So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Opportunity.ID, ShouldEqual, "opp-1")
		})

		Convey("When fetching without a limit", func() {
			w := get(mux, "/deadlines")

			So(w.Code, ShouldEqual, http.StatusOK)
			var entries []repository.DeadlineEntry
			So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
		})

		Convey("When the limit is zero", func() {
			w := get(mux, "/deadlines?limit=0")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit is not a number", func() {
			w := get(mux, "/deadlines?limit=lots")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			w := get(mux, "/deadlines?limit=100")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store reports an invalid limit", func() {
			deps.deadlineEr = fmt.Errorf("limit: %w", repository.ErrInvalidLimit)
			w := get(mux, "/deadlines?limit=5")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store fails unexpectedly", func() {
			deps.deadlineEr = errors.New("boom")
			w := get(mux, "/deadlines?limit=5")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}
