// Package worker drains persistence jobs from the queue into a Persister.
//
// Failures are logged and counted, never propagated: the in-memory store
// already holds the authoritative state and a failed durable write must
// not affect the caller that performed the mutation.
package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/fieldops/honorboard/internal/adapters/persistence"
	"github.com/fieldops/honorboard/pkg/logger"
	"github.com/fieldops/honorboard/pkg/metrics"
)

const workerShutdownTimeout = 5 * time.Second

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan persistence.Job
}

// Worker applies persistence jobs from the queue.
type Worker struct {
	queue     Queue
	persister persistence.Persister
	name      string

	done chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name used in log lines.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// NewWorker creates a worker reading from queue and writing through
// persister.
func NewWorker(queue Queue, persister persistence.Persister, opts ...Option) *Worker {
	w := &Worker{
		queue:     queue,
		persister: persister,
		name:      "persist-worker",
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logger.Get().Named(w.name)
	return w
}

// Run processes jobs until the queue channel closes or ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.persister.Apply(ctx, job); err != nil {
				metrics.RecordPersistenceError()
				w.logger.Error(ctx, "durable write failed",
					logger.String("kind", string(job.Kind)),
					logger.String("id", job.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
}

// NewPool creates workerCount workers (minimum one).
func NewPool(workerCount int, queue Queue, persister persistence.Persister) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{workers: make([]*Worker, workerCount)}
	for i := range p.workers {
		p.workers[i] = NewWorker(queue, persister, WithName("persist-worker-"+strconv.Itoa(i)))
	}
	metrics.UpdatePersistWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop waits for the workers to drain. Close the queue first so their
// channels terminate.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}
