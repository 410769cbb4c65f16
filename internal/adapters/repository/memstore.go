package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/pkg/metrics"
)

// MemoryStore is a map-backed Store guarded by a RWMutex.
type MemoryStore struct {
	mu       sync.RWMutex
	results  map[string]model.Result
	profiles map[string]model.Profile
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results:  make(map[string]model.Result),
		profiles: make(map[string]model.Profile),
	}
}

// Save upserts the latest result for userID.
func (s *MemoryStore) Save(_ context.Context, userID string, r model.Result) error {
	if userID == "" {
		return ErrEmptyKey
	}
	start := time.Now()
	defer func() {
		metrics.RecordPersistLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.results[userID] = r
	metrics.UpdateStoredResults(len(s.results))
	return nil
}

// Load returns the latest result for userID.
func (s *MemoryStore) Load(_ context.Context, userID string) (model.Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[userID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Result{}, fmt.Errorf("result for %q: %w", userID, ErrNotFound)
	}
	return r, nil
}

// SaveProfile upserts p.
func (s *MemoryStore) SaveProfile(_ context.Context, p model.Profile) error {
	if p.UserID == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.profiles[p.UserID] = p
	return nil
}

// LoadProfile returns the profile for userID.
func (s *MemoryStore) LoadProfile(_ context.Context, userID string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Profile{}, fmt.Errorf("profile for %q: %w", userID, ErrNotFound)
	}
	return p, nil
}

// Count returns the number of stored results.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Close marks the store closed; later writes fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
