// Package queue provides the bounded in-memory queue feeding the
// write-behind persistence workers.
package queue

import (
	"context"
	"sync"

	"github.com/fieldops/honorboard/internal/adapters/persistence"
	"github.com/fieldops/honorboard/pkg/metrics"
)

const defaultCapacity = 10_000

// Job is the payload type flowing through the queue.
type Job = persistence.Job

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a job. Returns false when the queue is full or closed;
	// the job is dropped in that case (durable writes are best-effort).
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns the channel jobs are received on. It is closed when
	// the queue is closed.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops the queue. No new jobs are accepted afterwards.
	Close() error
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	jobs   chan Job
	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds the queue.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.jobs = make(chan Job, capacity)
		}
	}
}

// NewInMemoryQueue creates a queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		jobs: make(chan Job, defaultCapacity),
	}
	for _, opt := range opts {
		opt(q)
	}
	metrics.UpdatePersistQueueSize(0)
	return q
}

// Enqueue adds a job without blocking.
func (q *InMemoryQueue) Enqueue(_ context.Context, j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.jobs <- j:
		metrics.UpdatePersistQueueSize(len(q.jobs))
		return true
	default:
		metrics.RecordPersistQueueDrop()
		return false
	}
}

// Dequeue returns the receive channel.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Job {
	return q.jobs
}

// Len returns the number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.jobs)
}

// Close stops the queue and closes the dequeue channel once drained by
// the workers.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.jobs)
	return nil
}
