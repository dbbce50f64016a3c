// Package strategy surfaces recommendations from submission outcome history.
//
// The confidence figure is a deliberately simple small-sample discount over
// the observed acceptance rate, not a statistical significance test; callers
// must not read it as a confidence interval.
package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/curata/curata/internal/domain/model"
)

// Default analysis configuration constants.
const (
	defaultMinSample            = 3
	defaultFullConfidenceSample = 10

	// DimensionTone is the only dimension currently analyzed.
	DimensionTone = "tone"
)

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithMinSample sets the minimum decided outcomes per group before the
// group may back a recommendation.
func WithMinSample(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minSample = n
		}
	}
}

// WithFullConfidenceSample sets the sample size at which the small-sample
// discount stops applying.
func WithFullConfidenceSample(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.fullConfidenceSample = n
		}
	}
}

// ToneStats aggregates decided outcomes for one tone.
type ToneStats struct {
	Tone           model.Tone `json:"tone"`
	Accepted       int        `json:"accepted"`
	Rejected       int        `json:"rejected"`
	SampleSize     int        `json:"sample_size"`
	AcceptanceRate float64    `json:"acceptance_rate"`
}

// Report is the full analysis output. Recommendations holds at most one
// entry per analyzed dimension, sorted by confidence descending.
// PendingCount is a diagnostic: pending outcomes never enter the rates.
type Report struct {
	Recommendations []model.StrategyRecommendation `json:"recommendations"`
	PendingCount    int                            `json:"pending_count"`
	ToneBreakdown   []ToneStats                    `json:"tone_breakdown"`
}

// Summary aggregates the whole history for dashboards.
type Summary struct {
	TotalSubmissions int         `json:"total_submissions"`
	Accepted         int         `json:"accepted"`
	Rejected         int         `json:"rejected"`
	Pending          int         `json:"pending"`
	AcceptanceRate   float64     `json:"acceptance_rate"`
	ToneBreakdown    []ToneStats `json:"tone_breakdown"`
}

// Analyzer derives strategy recommendations from outcome snapshots. It owns
// no mutable state and is safe for concurrent use.
type Analyzer struct {
	minSample            int
	fullConfidenceSample int
}

// New creates an Analyzer with configuration options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		minSample:            defaultMinSample,
		fullConfidenceSample: defaultFullConfidenceSample,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze validates the outcome history and produces a Report. Insufficient
// data yields an empty recommendation list, never an error: "nothing to
// recommend yet" is a valid result.
func (a *Analyzer) Analyze(ctx context.Context, outcomes []model.SubmissionOutcome) (Report, error) {
	if err := validateOutcomes(outcomes); err != nil {
		return Report{}, err
	}

	groups, pending := groupByTone(outcomes)
	breakdown := toneBreakdown(groups)

	report := Report{
		PendingCount:  pending,
		ToneBreakdown: breakdown,
	}

	if rec, ok := a.recommendTone(breakdown); ok {
		report.Recommendations = append(report.Recommendations, rec)
	}

	// Single dimension today; keep the ordering contract anyway so adding
	// dimensions does not change observable behavior for existing callers.
	sort.SliceStable(report.Recommendations, func(i, j int) bool {
		return report.Recommendations[i].Confidence > report.Recommendations[j].Confidence
	})

	return report, nil
}

// Summarize produces the aggregate history view used by the patterns
// endpoint. Validation rules match Analyze.
func (a *Analyzer) Summarize(ctx context.Context, outcomes []model.SubmissionOutcome) (Summary, error) {
	if err := validateOutcomes(outcomes); err != nil {
		return Summary{}, err
	}

	groups, pending := groupByTone(outcomes)

	s := Summary{
		TotalSubmissions: len(outcomes),
		Pending:          pending,
		ToneBreakdown:    toneBreakdown(groups),
	}
	for _, stats := range s.ToneBreakdown {
		s.Accepted += stats.Accepted
		s.Rejected += stats.Rejected
	}
	if decided := s.Accepted + s.Rejected; decided > 0 {
		s.AcceptanceRate = float64(s.Accepted) / float64(decided)
	}
	return s, nil
}

// recommendTone picks the winning tone among groups meeting the minimum
// sample: highest acceptance rate, ties broken by larger sample, then by
// alphabetical tone name.
func (a *Analyzer) recommendTone(breakdown []ToneStats) (model.StrategyRecommendation, bool) {
	var best *ToneStats
	for i := range breakdown {
		g := &breakdown[i]
		if g.SampleSize < a.minSample {
			continue
		}
		if best == nil || betterGroup(*g, *best) {
			best = g
		}
	}
	if best == nil {
		return model.StrategyRecommendation{}, false
	}

	return model.StrategyRecommendation{
		Dimension:            DimensionTone,
		RecommendedValue:     string(best.Tone),
		Confidence:           a.confidence(best.AcceptanceRate, best.SampleSize),
		SupportingSampleSize: best.SampleSize,
		Rationale: fmt.Sprintf("%q proposals were accepted %.1f%% of the time across %d decided submissions",
			best.Tone, best.AcceptanceRate*100, best.SampleSize),
	}, true
}

// confidence discounts the acceptance rate for small samples:
// rate * min(1, sample/fullConfidenceSample). A heuristic, documented as
// such; for equal rates a larger sample never yields lower confidence.
func (a *Analyzer) confidence(rate float64, sample int) float64 {
	discount := float64(sample) / float64(a.fullConfidenceSample)
	if discount > 1 {
		discount = 1
	}
	return rate * discount
}

func betterGroup(g, best ToneStats) bool {
	if g.AcceptanceRate != best.AcceptanceRate {
		return g.AcceptanceRate > best.AcceptanceRate
	}
	if g.SampleSize != best.SampleSize {
		return g.SampleSize > best.SampleSize
	}
	return g.Tone < best.Tone
}

func validateOutcomes(outcomes []model.SubmissionOutcome) error {
	for i, o := range outcomes {
		if !o.Status.Valid() {
			return fmt.Errorf("outcome %d (proposal %q) has status %q: %w", i, o.ProposalID, o.Status, ErrInvalidOutcome)
		}
		if o.OpportunityID == "" {
			return fmt.Errorf("outcome %d (proposal %q) has no opportunity id: %w", i, o.ProposalID, ErrInvalidOutcome)
		}
	}
	return nil
}

func groupByTone(outcomes []model.SubmissionOutcome) (groups map[model.Tone]*ToneStats, pending int) {
	groups = make(map[model.Tone]*ToneStats)
	for _, o := range outcomes {
		if !o.Status.Decided() {
			pending++
			continue
		}
		g, ok := groups[o.Tone]
		if !ok {
			g = &ToneStats{Tone: o.Tone}
			groups[o.Tone] = g
		}
		if o.Status == model.StatusAccepted {
			g.Accepted++
		} else {
			g.Rejected++
		}
	}
	for _, g := range groups {
		g.SampleSize = g.Accepted + g.Rejected
		g.AcceptanceRate = float64(g.Accepted) / float64(g.SampleSize)
	}
	return groups, pending
}

// toneBreakdown flattens groups into a deterministic, tone-sorted slice.
func toneBreakdown(groups map[model.Tone]*ToneStats) []ToneStats {
	out := make([]ToneStats, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tone < out[j].Tone })
	return out
}
