package repository

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/soulpath/internal/domain/session"
	"github.com/okian/soulpath/pkg/metrics"
)

// SessionStore keeps in-flight sessions in a bounded LRU cache. All mutations
// go through one mutex, so Update is atomic per session.
type SessionStore struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, session.Session]
	onEvict func(sessionID string)
}

// NewSessionStore creates a session cache holding at most capacity sessions.
func NewSessionStore(capacity int, opts ...SessionOption) (*SessionStore, error) {
	s := &SessionStore{onEvict: func(string) {}}
	for _, opt := range opts {
		opt(s)
	}
	cache, err := lru.NewWithEvict[string, session.Session](capacity, func(id string, _ session.Session) {
		metrics.RecordSessionEviction()
		s.onEvict(id)
	})
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Put stores s, replacing any session with the same id.
func (s *SessionStore) Put(sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(sess.ID, sess)
	metrics.UpdateActiveSessions(s.cache.Len())
}

// Get returns the session with id.
func (s *SessionStore) Get(id string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.cache.Get(id)
	if !ok {
		return session.Session{}, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return sess, nil
}

// Update applies fn to the stored session and stores its result. When fn
// fails nothing is stored and the current session is returned with the error.
func (s *SessionStore) Update(id string, fn func(session.Session) (session.Session, error)) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.cache.Get(id)
	if !ok {
		return session.Session{}, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	s.cache.Add(id, next)
	return next, nil
}

// Len returns the number of cached sessions.
func (s *SessionStore) Len() int {
	return s.cache.Len()
}
