package repository

import "time"

// Default repository configuration constants.
const (
	defaultBusyTimeout = 5 * time.Second
)

// SQLiteOption applies a configuration option to the SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) SQLiteOption {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// SessionOption applies a configuration option to the SessionStore.
type SessionOption func(*SessionStore)

// WithOnEvict registers a callback run when a session is evicted for space.
func WithOnEvict(fn func(sessionID string)) SessionOption {
	return func(s *SessionStore) {
		if fn != nil {
			s.onEvict = fn
		}
	}
}
