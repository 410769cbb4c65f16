// Package worker drains persistence jobs from the queue into the result store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/soulpath/internal/adapters/mq/queue"
	"github.com/okian/soulpath/internal/adapters/repository"
	"github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/pkg/logger"
	"github.com/okian/soulpath/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = model.PersistJob

// Persister writes completed results and merges them into profiles.
type Persister interface {
	Save(ctx context.Context, userID string, r model.Result) error
	LoadProfile(ctx context.Context, userID string) (model.Profile, error)
	SaveProfile(ctx context.Context, p model.Profile) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for persistence jobs.
type InMemoryWorker struct {
	queue     Queue
	persister Persister
	name      string

	onProcessed func()

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}
	stopOnce atomic.Bool

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, persister Persister, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:       queue,
		persister:   persister,
		name:        "worker",
		onProcessed: func() {},
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop. A failed job is logged and counted; the loop
// moves on to the next job.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing persist job", logger.Error(err))
			}
			w.onProcessed()
		}
	}
}

// Shutdown signals the worker to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	if w.stopOnce.CompareAndSwap(false, true) {
		close(w.shutdown)
	}
}

// processJob writes the result and then folds it into the current profile.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.persister.Save(ctx, job.Result.UserID, job.Result); err != nil {
		w.recordFailure("save_result")
		w.logger.Error(ctx, "result persistence failed",
			logger.String("job_id", job.JobID),
			logger.String("user_id", job.Result.UserID),
			logger.Error(err),
		)
		return fmt.Errorf("persist result for job %s: %w", job.JobID, err)
	}

	profile, err := w.currentProfile(ctx, job)
	if err != nil {
		w.recordFailure("load_profile")
		w.logger.Error(ctx, "profile lookup failed",
			logger.String("job_id", job.JobID),
			logger.String("user_id", job.Result.UserID),
			logger.Error(err),
		)
		return fmt.Errorf("load profile for job %s: %w", job.JobID, err)
	}
	if err := w.persister.SaveProfile(ctx, profile.WithResult(job.Result)); err != nil {
		w.recordFailure("save_profile")
		w.logger.Error(ctx, "profile persistence failed",
			logger.String("job_id", job.JobID),
			logger.String("user_id", job.Result.UserID),
			logger.Error(err),
		)
		return fmt.Errorf("persist profile for job %s: %w", job.JobID, err)
	}

	metrics.RecordPersistJob()
	w.logger.Debug(ctx, "persisted result",
		logger.String("job_id", job.JobID),
		logger.String("user_id", job.Result.UserID),
		logger.String("archetype", job.Result.Dominant.String()),
	)
	return nil
}

// currentProfile reads the stored profile, or starts one for a first-time user.
func (w *InMemoryWorker) currentProfile(ctx context.Context, job queue.Job) (model.Profile, error) { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	p, err := w.persister.LoadProfile(ctx, job.Result.UserID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		p = model.Profile{UserID: job.Result.UserID}
	default:
		return model.Profile{}, err
	}
	if p.DisplayName == "" {
		p.DisplayName = job.DisplayName
	}
	return p, nil
}

func (w *InMemoryWorker) recordFailure(kind string) {
	metrics.RecordPersistError()
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
	metrics.RecordErrorByType(kind, "high")
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	persister Persister

	// Shutdown control
	shutdown chan struct{}
	stopOnce atomic.Bool

	// Metrics tracking
	processedCount    atomic.Int64
	lastProcessedTime time.Time

	logger logger.Logger
}

// NewPool creates a new worker pool. A count below 1 selects a CPU-based default.
func NewPool(workerCount int, queue Queue, persister Persister) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		persister:         persister,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			persister,
			WithName("worker-"+strconv.Itoa(i)),
			WithOnProcessed(pool.RecordProcessedMessage),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater periodically publishes pool throughput.
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

func (p *Pool) updateMetrics() {
	now := time.Now()
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(p.processedCount.Swap(0)) / timeDiff)
	}
	p.lastProcessedTime = now
}

// RecordProcessedMessage increments the processed job count.
func (p *Pool) RecordProcessedMessage() {
	p.processedCount.Add(1)
}

func (p *Pool) signalStop() {
	if p.stopOnce.CompareAndSwap(false, true) {
		close(p.shutdown)
	}
}

// Shutdown closes the queue and lets workers drain the jobs already queued.
// Workers still running when ctx or the pool timeout expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			worker.stop()
		}
	}
	p.signalStop()
	metrics.UpdateWorkerActiveCount(0)

	if timedOut {
		return fmt.Errorf("worker pool drain: %w", shutdownCtx.Err())
	}
	return nil
}
