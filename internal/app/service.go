// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	ingestqueue "github.com/curata/curata/internal/adapters/mq/queue"
	workerpool "github.com/curata/curata/internal/adapters/mq/worker"
	"github.com/curata/curata/internal/adapters/repository"
	"github.com/curata/curata/internal/adapters/sources"
	"github.com/curata/curata/internal/domain/dedupe"
	"github.com/curata/curata/internal/domain/drafter"
	"github.com/curata/curata/internal/domain/keywords"
	"github.com/curata/curata/internal/domain/model"
	"github.com/curata/curata/internal/domain/scout"
	"github.com/curata/curata/internal/domain/strategy"
	"github.com/curata/curata/pkg/logger"
	"github.com/curata/curata/pkg/metrics"
)

// Service wires the opportunity catalog, the ingestion pipeline, and the
// relevance and strategy engines behind a single facade.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    repository.OpportunityStore
	outcomes   repository.OutcomeLog
	deduper    dedupe.Deduper
	queue      ingestqueue.Queue
	workerPool *workerpool.Pool
	extractor  *keywords.Extractor
	scout      *scout.Scout
	analyzer   *strategy.Analyzer
	drafter    *drafter.Drafter
	sources    []sources.Source

	// Configuration
	workerCount          int
	queueSize            int
	dedupeSize           int
	keywordLimit         int
	specializationWeight float64
	interestWeight       float64
	minSample            int
	fullConfidenceSample int
	now                  func() time.Time

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithKeywordLimit caps the keyword set extracted per opportunity.
func WithKeywordLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.keywordLimit = n
		}
	}
}

// WithRelevanceWeights sets the specialization and interest match weights.
func WithRelevanceWeights(specialization, interest float64) Option {
	return func(s *Service) {
		if specialization > 0 && interest > 0 {
			s.specializationWeight = specialization
			s.interestWeight = interest
		}
	}
}

// WithMinSample sets the smallest decided group a recommendation may use.
func WithMinSample(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSample = n
		}
	}
}

// WithFullConfidenceSample sets the sample size at which confidence is no
// longer discounted.
func WithFullConfidenceSample(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fullConfidenceSample = n
		}
	}
}

// WithSources sets the discovery sources drained on startup.
func WithSources(srcs ...sources.Source) Option {
	return func(s *Service) {
		s.sources = srcs
	}
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:          runtime.NumCPU() * 2,
		queueSize:            10000,
		dedupeSize:           50000,
		keywordLimit:         10,
		specializationWeight: 2.0,
		interestWeight:       1.0,
		minSample:            3,
		fullConfidenceSample: 10,
		now:                  time.Now,
		stopCh:               make(chan struct{}),
		logger:               nil, // replaced when the service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.started {
		s.mu.Unlock()
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting opportunity service...")

	// Initialize components
	s.catalog = repository.NewOpportunityStore()
	s.outcomes = repository.NewOutcomeLog()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = ingestqueue.NewInMemoryQueue(
		ingestqueue.WithCapacity(s.queueSize),
		ingestqueue.WithBufferSize(s.queueSize),
	)
	s.extractor = keywords.NewExtractor(
		keywords.WithMaxKeywords(s.keywordLimit),
	)
	s.scout = scout.New(
		scout.WithWeights(s.specializationWeight, s.interestWeight),
		scout.WithClock(s.now),
	)
	s.analyzer = strategy.New(
		strategy.WithMinSample(s.minSample),
		strategy.WithFullConfidenceSample(s.fullConfidenceSample),
	)
	s.drafter = drafter.New(
		drafter.WithClock(s.now),
	)

	// Create and start the ingestion worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.extractor, s.catalog)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "opportunity service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	s.mu.Unlock()

	s.drainSources(ctx)

	return nil
}

// drainSources fetches each configured discovery source once and feeds the
// results through the ingestion queue.
func (s *Service) drainSources(ctx context.Context) {
	for _, src := range s.sources {
		batch, err := src.Fetch(ctx)
		if err != nil {
			s.logger.Warn(ctx, "source fetch failed",
				logger.String("source", src.Name()),
				logger.Error(err),
			)
			continue
		}

		accepted := 0
		for _, opp := range batch {
			if opp.ID != "" && s.SeenAndRecord(ctx, opp.ID) {
				continue
			}
			if s.Enqueue(ctx, opp) {
				accepted++
			} else if opp.ID != "" {
				s.Unrecord(ctx, opp.ID)
			}
		}
		s.logger.Info(ctx, "source drained",
			logger.String("source", src.Name()),
			logger.Int("fetched", len(batch)),
			logger.Int("accepted", accepted),
		)
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping opportunity service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close queue
	if s.queue != nil {
		_ = s.queue.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "opportunity service stopped")
}

// SeenAndRecord atomically checks if an opportunity id was seen and records
// it if not. Returns true if the id was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordOpportunityDuplicate()
	}
	return seen
}

// Unrecord removes an opportunity id from the seen list so it can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits an opportunity for asynchronous ingestion. Records without
// an id get one assigned. Duplicate suppression is the caller's concern:
// claim the id with SeenAndRecord before enqueuing and Unrecord it when the
// enqueue fails.
func (s *Service) Enqueue(ctx context.Context, opp model.Opportunity) bool {
	if opp.ID == "" {
		opp.ID = "opp-" + uuid.NewString()
	}
	if !opp.Type.Valid() {
		s.logger.Warn(ctx, "rejecting opportunity with unknown type",
			logger.String("opportunityID", opp.ID),
			logger.String("type", string(opp.Type)),
		)
		return false
	}
	if strings.TrimSpace(opp.Title) == "" || opp.Deadline.IsZero() {
		s.logger.Warn(ctx, "rejecting opportunity without title or deadline",
			logger.String("opportunityID", opp.ID),
		)
		return false
	}

	success := s.queue.Enqueue(ctx, opp)
	if success {
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	}
	return success
}

// Opportunity returns the catalog record with the given id.
func (s *Service) Opportunity(ctx context.Context, id string) (model.Opportunity, error) {
	return s.catalog.Get(ctx, id)
}

// TrackOpportunity bookmarks an opportunity, attaching the relevance score
// it has for the given profile. A profile without any terms tracks at zero
// relevance.
func (s *Service) TrackOpportunity(ctx context.Context, id string, profile model.UserProfile) (model.Opportunity, error) {
	opp, err := s.catalog.Get(ctx, id)
	if err != nil {
		return model.Opportunity{}, err
	}

	var relevance float64
	if profile.HasSignal() {
		ranked, err := s.scout.Rank(ctx, profile, []model.Opportunity{opp}, nil)
		if err != nil {
			return model.Opportunity{}, err
		}
		if len(ranked) > 0 {
			relevance = ranked[0].RelevanceScore
		}
	}

	return s.catalog.Track(ctx, id, relevance)
}

// RankForProfile scores the whole catalog against a profile and returns up
// to limit results, most relevant first.
func (s *Service) RankForProfile(ctx context.Context, profile model.UserProfile, filter *scout.Filter, limit int) ([]model.ScoredOpportunity, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordRankingRequest()

	pool := s.catalog.Snapshot(ctx)
	ranked, err := s.scout.Rank(ctx, profile, pool, filter)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// RecordOutcome appends a submission outcome to the history. Outcomes
// without a proposal id get one assigned; missing status defaults to
// pending; the referenced opportunity must exist in the catalog.
func (s *Service) RecordOutcome(ctx context.Context, outcome model.SubmissionOutcome) (model.SubmissionOutcome, error) {
	if outcome.OpportunityID == "" {
		return model.SubmissionOutcome{}, fmt.Errorf("missing opportunity id: %w", strategy.ErrInvalidOutcome)
	}
	if _, err := s.catalog.Get(ctx, outcome.OpportunityID); err != nil {
		return model.SubmissionOutcome{}, fmt.Errorf("opportunity %q: %w", outcome.OpportunityID, err)
	}

	if !outcome.Tone.Valid() {
		return model.SubmissionOutcome{}, fmt.Errorf("tone %q: %w", outcome.Tone, strategy.ErrInvalidOutcome)
	}
	if outcome.ProposalID == "" {
		outcome.ProposalID = "prop-" + uuid.NewString()
	}
	if outcome.Status == "" {
		outcome.Status = model.StatusPending
	}
	if !outcome.Status.Valid() {
		return model.SubmissionOutcome{}, fmt.Errorf("status %q: %w", outcome.Status, strategy.ErrInvalidOutcome)
	}
	if outcome.SubmittedAt.IsZero() {
		outcome.SubmittedAt = s.now()
	}
	if outcome.Status.Decided() && outcome.DecidedAt == nil {
		decidedAt := s.now()
		outcome.DecidedAt = &decidedAt
	}

	if err := s.outcomes.Append(ctx, outcome); err != nil {
		return model.SubmissionOutcome{}, err
	}
	return outcome, nil
}

// DecideOutcome attaches a final decision to a pending outcome.
func (s *Service) DecideOutcome(ctx context.Context, proposalID string, status model.OutcomeStatus) (model.SubmissionOutcome, error) {
	return s.outcomes.Decide(ctx, proposalID, status, s.now())
}

// Recommendations analyzes the outcome history and returns the current
// strategy recommendations.
func (s *Service) Recommendations(ctx context.Context) (strategy.Report, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecommendationLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordRecommendationRequest()

	return s.analyzer.Analyze(ctx, s.outcomes.Snapshot(ctx))
}

// Patterns summarizes the outcome history per tone.
func (s *Service) Patterns(ctx context.Context) (strategy.Summary, error) {
	return s.analyzer.Summarize(ctx, s.outcomes.Snapshot(ctx))
}

// DraftProposal generates a proposal draft for an opportunity in the
// requested tone.
func (s *Service) DraftProposal(ctx context.Context, profile model.UserProfile, opportunityID string, tone model.Tone) (model.ProposalDraft, error) {
	opp, err := s.catalog.Get(ctx, opportunityID)
	if err != nil {
		return model.ProposalDraft{}, err
	}

	draft, err := s.drafter.Draft(ctx, profile, opp, tone)
	if err != nil {
		return model.ProposalDraft{}, err
	}
	metrics.RecordProposalDrafted()
	return draft, nil
}

// DraftVariants generates one proposal draft per supported tone.
func (s *Service) DraftVariants(ctx context.Context, profile model.UserProfile, opportunityID string) ([]model.ProposalDraft, error) {
	opp, err := s.catalog.Get(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.drafter.Variants(ctx, profile, opp)
	if err != nil {
		return nil, err
	}
	for range drafts {
		metrics.RecordProposalDrafted()
	}
	return drafts, nil
}

// UpcomingDeadlines returns up to n catalog entries with the nearest
// deadlines, annotated with reminder windows.
func (s *Service) UpcomingDeadlines(ctx context.Context, n int) ([]repository.DeadlineEntry, error) {
	return s.catalog.UpcomingDeadlines(ctx, s.now(), n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalOpportunities := s.catalog.Count(ctx)
		totalOutcomes := s.outcomes.Count(ctx)
		pendingOutcomes := s.outcomes.PendingCount(ctx)

		stats["queueLength"] = queueLen
		stats["totalOpportunities"] = totalOpportunities
		stats["totalOutcomes"] = totalOutcomes
		stats["pendingOutcomes"] = pendingOutcomes

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateOpportunitiesTotal(totalOpportunities)
		metrics.UpdateOutcomesTotal(totalOutcomes)
		metrics.UpdatePendingOutcomes(pendingOutcomes)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
