// Package worker defines worker contracts for asynchronous opportunity
// ingestion: keyword enrichment and catalog writes.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/curata/curata/internal/domain/model"
	"github.com/curata/curata/pkg/logger"
	"github.com/curata/curata/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Opportunity abstracts what workers read off the queue.
// Using the model.Opportunity type for consistency.
type Opportunity = model.Opportunity

// Enricher derives a keyword set from opportunity text.
type Enricher interface {
	Extract(text string) []string
}

// Catalog receives fully enriched opportunities.
type Catalog interface {
	Insert(ctx context.Context, opp model.Opportunity) error
}

// Queue defines how workers receive opportunities.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Opportunity
}

// Worker processes opportunities and writes them to the catalog.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining opportunities before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing opportunities.
type InMemoryWorker struct {
	source   Queue
	enricher Enricher
	catalog  Catalog
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(source Queue, enricher Enricher, catalog Catalog, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:   source,
		enricher: enricher,
		catalog:  catalog,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	items := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case opp, ok := <-items:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processOpportunity(ctx, opp); err != nil {
				w.logger.Error(ctx, "error processing opportunity", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processOpportunity enriches a single opportunity and writes it to the
// catalog. Keywords already present on the record are kept as-is.
func (w *InMemoryWorker) processOpportunity(ctx context.Context, opp Opportunity) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if len(opp.Keywords) == 0 {
		extractStart := time.Now()
		opp.Keywords = w.enricher.Extract(strings.TrimSpace(opp.Title + " " + opp.Description))
		metrics.RecordExtractionLatency(float64(time.Since(extractStart).Milliseconds()))
	}

	if err := w.catalog.Insert(ctx, opp); err != nil {
		metrics.RecordCatalogError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "catalog_error")
		metrics.RecordErrorByType("catalog_error", "high")
		w.logger.Error(ctx, "catalog insert failed for opportunity",
			logger.String("opportunityID", opp.ID),
			logger.Error(err),
		)
		return fmt.Errorf("catalog insert failed for opportunity %s: %w", opp.ID, err)
	}

	metrics.RecordCatalogInsert()
	metrics.RecordOpportunityProcessed()

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	source   Queue
	enricher Enricher
	catalog  Catalog

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Metrics tracking
	processedCount    int64
	lastProcessedTime time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, source Queue, enricher Enricher, catalog Catalog) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		source:            source,
		enricher:          enricher,
		catalog:           catalog,
		shutdown:          make(chan struct{}),
		done:              make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			source,
			enricher,
			catalog,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics updates worker-related metrics.
func (p *Pool) updateMetrics() {
	now := time.Now()
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(p.processedCount) / timeDiff)
	}

	p.processedCount = 0
	p.lastProcessedTime = now
}

// RecordProcessedMessage increments the processed message count.
func (p *Pool) RecordProcessedMessage() {
	p.processedCount++
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new opportunities
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
