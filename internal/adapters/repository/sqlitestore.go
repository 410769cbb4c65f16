package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/okian/soulpath/pkg/metrics"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS results (
	user_id      TEXT PRIMARY KEY,
	session_id   TEXT    NOT NULL,
	dominant     TEXT    NOT NULL,
	percentage   INTEGER NOT NULL,
	payload      TEXT    NOT NULL,
	completed_at TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_dominant ON results(dominant);

CREATE TABLE IF NOT EXISTS profiles (
	user_id         TEXT PRIMARY KEY,
	display_name    TEXT NOT NULL,
	email           TEXT,
	last_archetype  TEXT,
	last_percentage INTEGER,
	completed_at    TEXT
);
`

// SQLiteStore is a Store backed by a SQLite file through modernc.org/sqlite.
type SQLiteStore struct {
	db          *sql.DB
	path        string
	busyTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) the database at path, applies
// pragmas and runs migrations.
func NewSQLiteStore(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	s := &SQLiteStore{path: path, busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("repository: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repository: open database: %w", err)
	}
	// Pragmas below are per connection; a single connection keeps them in
	// force and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("repository: pragma %q: %w", p, err)
		}
	}

	s.db = db
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository: migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Save upserts the latest result for userID.
func (s *SQLiteStore) Save(ctx context.Context, userID string, r model.Result) error {
	if userID == "" {
		return ErrEmptyKey
	}
	start := time.Now()
	defer func() {
		metrics.RecordPersistLatency(float64(time.Since(start).Milliseconds()))
	}()

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (user_id, session_id, dominant, percentage, payload, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			session_id = excluded.session_id,
			dominant = excluded.dominant,
			percentage = excluded.percentage,
			payload = excluded.payload,
			completed_at = excluded.completed_at`,
		userID, r.SessionID, r.Dominant.String(), r.Percentage, string(payload),
		r.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// Load returns the latest result for userID.
func (s *SQLiteStore) Load(ctx context.Context, userID string) (model.Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM results WHERE user_id = ?`, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Result{}, fmt.Errorf("result for %q: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.Result{}, fmt.Errorf("query result: %w", err)
	}

	var r model.Result
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return model.Result{}, fmt.Errorf("decode result for %q: %w", userID, err)
	}
	return r, nil
}

// SaveProfile upserts p.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p model.Profile) error {
	if p.UserID == "" {
		return ErrEmptyKey
	}
	var archetype, completedAt sql.NullString
	var pct sql.NullInt64
	if p.LastArchetype != nil {
		archetype = sql.NullString{String: p.LastArchetype.String(), Valid: true}
	}
	if p.LastPercentage != nil {
		pct = sql.NullInt64{Int64: int64(*p.LastPercentage), Valid: true}
	}
	if p.CompletedAt != nil {
		completedAt = sql.NullString{String: p.CompletedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, display_name, email, last_archetype, last_percentage, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			email = excluded.email,
			last_archetype = excluded.last_archetype,
			last_percentage = excluded.last_percentage,
			completed_at = excluded.completed_at`,
		p.UserID, p.DisplayName, p.Email, archetype, pct, completedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// LoadProfile returns the profile for userID.
func (s *SQLiteStore) LoadProfile(ctx context.Context, userID string) (model.Profile, error) {
	var (
		p                      model.Profile
		email, archetype, done sql.NullString
		pct                    sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, email, last_archetype, last_percentage, completed_at
		 FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.DisplayName, &email, &archetype, &pct, &done)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Profile{}, fmt.Errorf("profile for %q: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("query profile: %w", err)
	}

	if email.Valid {
		v := email.String
		p.Email = &v
	}
	if archetype.Valid {
		c, err := quiz.ParseCategory(archetype.String)
		if err != nil {
			return model.Profile{}, fmt.Errorf("decode profile for %q: %w", userID, err)
		}
		p.LastArchetype = &c
	}
	if pct.Valid {
		v := int(pct.Int64)
		p.LastPercentage = &v
	}
	if done.Valid {
		t, err := time.Parse(time.RFC3339Nano, done.String)
		if err != nil {
			return model.Profile{}, fmt.Errorf("decode profile for %q: %w", userID, err)
		}
		p.CompletedAt = &t
	}
	return p, nil
}

// Count returns the number of stored results, or 0 if the query fails.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		metrics.RecordErrorByComponent("repository", "count_failed")
		return 0
	}
	metrics.UpdateStoredResults(n)
	return n
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
