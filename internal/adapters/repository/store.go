// Package repository holds the persistence ports for completed results and
// user profiles, plus the in-memory session cache.
package repository

import (
	"context"

	"github.com/okian/soulpath/internal/domain/model"
)

// Store persists the latest result and the profile of each user.
type Store interface {
	// Save upserts the latest result for userID.
	Save(ctx context.Context, userID string, r model.Result) error

	// Load returns the latest result for userID.
	// Returns ErrNotFound if the user has none.
	Load(ctx context.Context, userID string) (model.Result, error)

	// SaveProfile upserts a profile keyed by its UserID.
	SaveProfile(ctx context.Context, p model.Profile) error

	// LoadProfile returns the profile for userID.
	// Returns ErrNotFound if the user is unknown.
	LoadProfile(ctx context.Context, userID string) (model.Profile, error)

	// Count returns the number of stored results.
	Count(ctx context.Context) int

	// Close releases resources held by the store.
	Close() error
}
