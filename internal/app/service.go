// Package service wires the quiz core to its session cache, persistence
// pipeline and result store, and implements the dependencies of the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/soulpath/internal/adapters/mq/queue"
	"github.com/okian/soulpath/internal/adapters/mq/worker"
	"github.com/okian/soulpath/internal/adapters/repository"
	"github.com/okian/soulpath/internal/config"
	"github.com/okian/soulpath/internal/domain/content"
	"github.com/okian/soulpath/internal/domain/dedupe"
	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/okian/soulpath/internal/domain/scoring"
	"github.com/okian/soulpath/pkg/logger"
	"github.com/okian/soulpath/pkg/metrics"
)

const (
	defaultQueueSize       = 10_000
	defaultDedupeSize      = 100_000
	defaultSessionCapacity = 50_000
	stopTimeout            = 10 * time.Second
)

// Service implements the API dependencies for the quiz.
type Service struct {
	mu sync.RWMutex

	// Static tables
	bank    *quiz.Bank
	catalog *content.Catalog

	// Core components, built on Start
	store    repository.Store
	sessions *repository.SessionStore
	deduper  dedupe.Deduper
	jobs     *queue.InMemoryQueue
	pool     *worker.Pool
	resolver *scoring.Resolver

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	sessionCapacity int
	storeDriver     string
	sqlitePath      string
	maxScoreSource  string
	injectedStore   repository.Store
	now             func() time.Time

	// State
	started   bool
	startedAt time.Time
	cancel    context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the persistence queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSessionCapacity bounds the number of in-flight sessions.
func WithSessionCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.sessionCapacity = capacity
		}
	}
}

// WithStoreDriver selects the result store opened on Start.
func WithStoreDriver(driver, sqlitePath string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
		}
		s.sqlitePath = sqlitePath
	}
}

// WithStore uses st instead of opening one. The caller owns st and closes it;
// Stop leaves it open so the service can be started again.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		s.injectedStore = st
	}
}

// WithMaxScoreSource picks the percentage denominator: config.MaxScoreFixed
// or config.MaxScoreTable.
func WithMaxScoreSource(source string) Option {
	return func(s *Service) {
		if source != "" {
			s.maxScoreSource = source
		}
	}
}

// WithClock overrides the time source.
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
		bank:            quiz.DefaultBank(),
		catalog:         content.Default(),
		workerCount:     runtime.NumCPU(),
		queueSize:       defaultQueueSize,
		dedupeSize:      defaultDedupeSize,
		sessionCapacity: defaultSessionCapacity,
		storeDriver:     config.StoreMemory,
		maxScoreSource:  config.MaxScoreFixed,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FromConfig maps loaded configuration onto service options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithWorkerCount(cfg.PersistWorkerCount),
		WithQueueSize(cfg.PersistQueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithSessionCapacity(cfg.SessionCapacity),
		WithStoreDriver(cfg.StoreDriver, cfg.SQLitePath),
		WithMaxScoreSource(cfg.MaxScoreSource),
	}
}

// Start opens the store and starts the persistence pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting quiz service...")

	if err := s.bank.Validate(); err != nil {
		return fmt.Errorf("question bank: %w", err)
	}

	store := s.injectedStore
	if store == nil {
		var err error
		store, err = repository.Open(ctx, s.storeDriver, s.sqlitePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
	}

	sessions, err := repository.NewSessionStore(s.sessionCapacity,
		repository.WithOnEvict(func(id string) {
			s.logger.Debug(context.Background(), "session evicted", logger.String("session_id", id))
		}),
	)
	if err != nil {
		if s.injectedStore == nil {
			_ = store.Close()
		}
		return fmt.Errorf("session store: %w", err)
	}

	maxScore := quiz.MaxPossibleScore
	if strings.EqualFold(s.maxScoreSource, config.MaxScoreTable) {
		maxScore = s.bank.DerivedMaxScore()
	}

	s.store = store
	s.sessions = sessions
	s.resolver = scoring.NewResolver(
		scoring.WithMaxScore(maxScore),
		scoring.WithCatalog(s.catalog),
		scoring.WithClock(s.now),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)

	// Workers outlive the caller's context; Stop drains and cancels them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool = worker.NewPool(s.workerCount, s.jobs, s.store)
	s.pool.Start(runCtx)

	s.started = true
	s.startedAt = s.now()
	metrics.UpdateStoredResults(s.store.Count(ctx))
	s.logger.Info(ctx, "quiz service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("sessionCapacity", s.sessionCapacity),
		logger.String("store", s.storeDriver),
		logger.Int("maxScore", maxScore),
	)

	return nil
}

// Stop drains queued persistence jobs, stops the workers and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping quiz service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "persistence workers did not drain", logger.Error(err))
	}
	s.cancel()

	if s.injectedStore == nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "error closing store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "quiz service stopped")
}

// running returns the live components or ErrNotStarted.
func (s *Service) running() (*components, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return &components{
		store:    s.store,
		sessions: s.sessions,
		deduper:  s.deduper,
		jobs:     s.jobs,
		resolver: s.resolver,
	}, nil
}

// components is a snapshot of the components valid for one call.
type components struct {
	store    repository.Store
	sessions *repository.SessionStore
	deduper  dedupe.Deduper
	jobs     *queue.InMemoryQueue
	resolver *scoring.Resolver
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"sessionCapacity": s.sessionCapacity,
		"storeDriver":     s.storeDriver,
		"questions":       s.bank.Len(),
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		stored := s.store.Count(ctx)
		active := s.sessions.Len()

		stats["queueLength"] = queueLen
		stats["queueCapacity"] = s.jobs.Capacity()
		stats["storedResults"] = stored
		stats["activeSessions"] = active
		stats["dedupeEntries"] = s.deduper.Size()
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredResults(stored)
		metrics.UpdateActiveSessions(active)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
