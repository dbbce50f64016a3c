// Package queue defines the contract for enqueuing and consuming
// opportunities discovered by sources.
//
// Implementations may use channels or more advanced structures. The
// current implementation is an in-memory bounded queue.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/curata/curata/internal/domain/model"
	"github.com/curata/curata/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
	defaultBufferSize    = 10000
)

// Opportunity represents the payload type flowing through the queue.
// Using the model.Opportunity type for type safety.
type Opportunity = model.Opportunity

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an opportunity to the queue.
	// Returns false if the queue is full and the opportunity was not enqueued.
	Enqueue(ctx context.Context, o Opportunity) bool

	// Dequeue returns a channel that will receive opportunities as they
	// become available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Opportunity

	// Len returns the current number of queued opportunities.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new opportunities can be enqueued and the dequeue
	// channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items      chan Opportunity
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.items = make(chan Opportunity, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds an opportunity to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, o Opportunity) bool {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if len(q.items) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.items <- o:
		metrics.RecordQueueEnqueue()
		currentSize := len(q.items)
		metrics.UpdateQueueSize(currentSize)
		metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive opportunities as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Opportunity {
	// Wrap the channel to track dequeue metrics.
	dequeueChan := make(chan Opportunity)
	go func() {
		defer close(dequeueChan)
		for item := range q.items {
			select {
			case dequeueChan <- item:
				metrics.RecordQueueDequeue()
				currentSize := len(q.items)
				metrics.UpdateQueueSize(currentSize)
				metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return dequeueChan
}

// Len returns the current number of queued opportunities.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.items)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
