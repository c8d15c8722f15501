// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	jobqueue "github.com/fieldline/standee/internal/adapters/mq/queue"
	workerpool "github.com/fieldline/standee/internal/adapters/mq/worker"
	"github.com/fieldline/standee/internal/adapters/source"
	"github.com/fieldline/standee/internal/domain/dedupe"
	"github.com/fieldline/standee/internal/domain/model"
	"github.com/fieldline/standee/internal/domain/standings"
	"github.com/fieldline/standee/internal/domain/types"
	"github.com/fieldline/standee/pkg/logger"
	"github.com/fieldline/standee/pkg/metrics"
	"github.com/google/uuid"
)

// queueMetricsInterval is how often the queue depth gauge is refreshed
// between requests.
const queueMetricsInterval = 5 * time.Second

// ViewResult carries the outcome of one view inside a batch response.
type ViewResult = jobqueue.Outcome

// Service implements the API dependencies for the standings system.
type Service struct {
	mu sync.RWMutex

	// Core components
	src      source.Source
	jobQueue jobqueue.Queue
	pool     *workerpool.Pool

	// Configuration
	workerCount   int
	queueSize     int
	batchMaxViews int
	sourceMode    string

	// Counters
	computations      atomic.Int64
	computationErrors atomic.Int64
	batches           atomic.Int64

	// State
	started   bool
	startedAt time.Time
	stopCh    chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the upstream data source.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.src = src
		}
	}
}

// WithSourceMode names the configured source for the stats endpoint.
func WithSourceMode(mode string) Option {
	return func(s *Service) {
		if mode != "" {
			s.sourceMode = mode
		}
	}
}

// WithWorkerCount sets the number of batch worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the batch job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithBatchMaxViews sets the maximum number of views in one batch request.
func WithBatchMaxViews(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchMaxViews = n
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
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     1024,
		batchMaxViews: 64,
		sourceMode:    "fixture",
		stopCh:        make(chan struct{}),
		logger:        nil, // Will be replaced when service starts
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
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting standings service...")

	// Initialize components
	if s.src == nil {
		s.src = source.NewFixture()
		s.sourceMode = "fixture"
	}
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
	)

	// Create and start the worker pool. The service itself is the computer:
	// batch jobs run the same computation as the synchronous handlers.
	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s)
	s.pool.Start(ctx)

	go s.refreshQueueMetrics()

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "standings service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("batchMaxViews", s.batchMaxViews),
		logger.String("source", s.sourceMode),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping standings service...")

	// Stop worker pool; shutdown also closes the queue.
	if s.pool != nil {
		_ = s.pool.Shutdown(context.Background())
	}

	// Signal the metrics refresher to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "standings service stopped")
}

// refreshQueueMetrics keeps the queue depth gauge current between requests.
func (s *Service) refreshQueueMetrics() {
	ticker := time.NewTicker(queueMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.RLock()
			q := s.jobQueue
			s.mu.RUnlock()
			if q != nil {
				metrics.UpdateQueueSize(q.Len(context.Background()))
			}
		}
	}
}

// ComputeView fetches both inputs for a view, validates them, and runs the
// aggregation and ranking computation. It is the single computation path
// shared by the synchronous handlers and the batch workers.
func (s *Service) ComputeView(ctx context.Context, key types.ViewKey) ([]types.PlayerStanding, types.CohortStatistics, error) {
	start := time.Now()
	computationID := uuid.New().String()

	participants, summaries, err := s.fetch(ctx, key)
	if err != nil {
		s.computationErrors.Add(1)
		metrics.RecordComputation(metrics.OutcomeUpstreamError)
		s.logger.Error(ctx, "upstream fetch failed",
			logger.String("computation_id", computationID),
			logger.String("view", key.String()),
			logger.Error(err),
		)
		return nil, types.CohortStatistics{}, err
	}

	ranked, stats, err := standings.Compute(participants, summaries)
	if err != nil {
		s.computationErrors.Add(1)
		metrics.RecordComputation(computationOutcome(err))
		s.logger.Error(ctx, "standings computation rejected",
			logger.String("computation_id", computationID),
			logger.String("view", key.String()),
			logger.Error(err),
		)
		return nil, types.CohortStatistics{}, err
	}

	s.computations.Add(1)
	metrics.RecordComputation(metrics.OutcomeOK)
	metrics.RecordComputationLatency(float64(time.Since(start).Milliseconds()))
	metrics.ObserveCohortSize(len(ranked))
	s.logger.Debug(ctx, "standings computed",
		logger.String("computation_id", computationID),
		logger.String("view", key.String()),
		logger.Int("participants", len(ranked)),
	)

	return ranked, stats, nil
}

// fetch retrieves the roster and the pick summaries concurrently and joins
// both results before validation.
func (s *Service) fetch(ctx context.Context, key types.ViewKey) ([]model.ParticipantRecord, []model.PickSummary, error) {
	var (
		wg           sync.WaitGroup
		participants []model.ParticipantRecord
		summaries    []model.PickSummary
		pErr, sErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		participants, pErr = s.src.Participants(ctx, key.GameID)
	}()
	go func() {
		defer wg.Done()
		summaries, sErr = s.src.Summaries(ctx, key)
	}()
	wg.Wait()

	if pErr != nil {
		return nil, nil, fmt.Errorf("participants for %s: %w", key.GameID, pErr)
	}
	if sErr != nil {
		return nil, nil, fmt.Errorf("summaries for %s: %w", key.String(), sErr)
	}

	return participants, summaries, nil
}

// computationOutcome maps a computation error to a metrics outcome label.
func computationOutcome(err error) string {
	switch {
	case errors.Is(err, model.ErrInvariant):
		return metrics.OutcomeInvariantViolation
	case errors.Is(err, model.ErrMalformed):
		return metrics.OutcomeUpstreamError
	default:
		return metrics.OutcomeError
	}
}

// Standings returns the ranked standings for a view.
func (s *Service) Standings(ctx context.Context, key types.ViewKey) ([]types.PlayerStanding, error) {
	ranked, _, err := s.ComputeView(ctx, key)
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

// Cohort returns the cohort statistics for a view.
func (s *Service) Cohort(ctx context.Context, key types.ViewKey) (types.CohortStatistics, error) {
	_, stats, err := s.ComputeView(ctx, key)
	if err != nil {
		return types.CohortStatistics{}, err
	}
	return stats, nil
}

// PlayerRank returns the single standing for userID within a view.
func (s *Service) PlayerRank(ctx context.Context, key types.ViewKey, userID string) (types.PlayerStanding, error) {
	ranked, _, err := s.ComputeView(ctx, key)
	if err != nil {
		return types.PlayerStanding{}, err
	}
	return standings.FindUser(ranked, userID)
}

// Batch computes standings for every view key in one call. Duplicate keys
// are computed once and results come back in request order, with per-view
// errors carried inline. The call fails as a whole only when the request
// itself is oversized or the queue cannot admit the work.
func (s *Service) Batch(ctx context.Context, keys []types.ViewKey) ([]ViewResult, error) {
	if len(keys) == 0 {
		return []ViewResult{}, nil
	}
	if len(keys) > s.batchMaxViews {
		return nil, fmt.Errorf("%w: %d views, limit %d", ErrBatchTooLarge, len(keys), s.batchMaxViews)
	}
	if s.jobQueue == nil {
		return nil, fmt.Errorf("%w: service not started", ErrQueueFull)
	}

	s.batches.Add(1)
	metrics.RecordBatchRequest()
	metrics.RecordBatchViews(len(keys))

	d := dedupe.NewBatchDeduper(dedupe.WithCapacity(len(keys)))
	for _, key := range keys {
		if d.Seen(key) {
			metrics.RecordBatchDuplicate()
		}
	}
	unique := d.Keys()

	// The reply channel is buffered for every admitted job, so a batch that
	// aborts or returns early never blocks a worker.
	reply := make(chan jobqueue.Outcome, len(unique))
	batchID := uuid.New().String()
	for i, key := range unique {
		job := jobqueue.Job{
			ID:    fmt.Sprintf("%s-%d", batchID, i),
			Key:   key,
			Reply: reply,
		}
		if !s.jobQueue.Enqueue(ctx, job) {
			return nil, fmt.Errorf("%w: admitted %d of %d views", ErrQueueFull, i, len(unique))
		}
	}

	outcomes := make(map[types.ViewKey]ViewResult, len(unique))
	for range unique {
		select {
		case out := <-reply:
			outcomes[out.Key] = out
		case <-ctx.Done():
			return nil, fmt.Errorf("collecting batch results: %w", ctx.Err())
		}
	}

	results := make([]ViewResult, len(keys))
	for i, key := range keys {
		results[i] = outcomes[key]
	}

	s.logger.Debug(ctx, "batch completed",
		logger.String("batch_id", batchID),
		logger.Int("views", len(keys)),
		logger.Int("unique", len(unique)),
	)

	return results, nil
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"source":            s.sourceMode,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"batchMaxViews":     s.batchMaxViews,
		"computations":      s.computations.Load(),
		"computationErrors": s.computationErrors.Load(),
		"batches":           s.batches.Load(),
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["workers"] = s.pool.Size()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
