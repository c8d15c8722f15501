// Package worker defines worker contracts for asynchronous standings
// computation.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	queue "github.com/fieldline/standee/internal/adapters/mq/queue"
	types "github.com/fieldline/standee/internal/domain/types"
	logger "github.com/fieldline/standee/pkg/logger"
	metrics "github.com/fieldline/standee/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Job abstracts what workers read off the queue.
// Using the queue.Job type for consistency.
type Job = queue.Job

// Computer runs one standings computation for a view key.
type Computer interface {
	ComputeView(ctx context.Context, key types.ViewKey) ([]types.PlayerStanding, types.CohortStatistics, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker drains computation jobs and delivers outcomes on their reply
// channels.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will finish the job in flight before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing computation jobs.
type InMemoryWorker struct {
	queue    Queue
	computer Computer
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, computer Computer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		computer: computer,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
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

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			w.process(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs a single computation and delivers its outcome.
func (w *InMemoryWorker) process(ctx context.Context, job Job) {
	start := time.Now()
	ranked, stats, err := w.computer.ComputeView(ctx, job.Key)
	metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "compute_error")
		w.logger.Error(ctx, "computation failed",
			logger.String("computation_id", job.ID),
			logger.String("view", job.Key.String()),
			logger.Error(err),
		)
	}

	if job.Reply == nil {
		// A job without a reply channel has no consumer for its outcome
		w.logger.Warn(ctx, "job carries no reply channel",
			logger.String("computation_id", job.ID),
		)
		return
	}

	out := queue.Outcome{
		Key:       job.Key,
		Standings: ranked,
		Stats:     stats,
		Err:       err,
	}
	select {
	case job.Reply <- out:
	case <-ctx.Done():
		w.logger.Warn(ctx, "dropping outcome, context done",
			logger.String("computation_id", job.ID),
		)
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	computer Computer

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, computer Computer) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		computer: computer,
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			computer,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue so workers drain and stop
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)

	return nil
}
