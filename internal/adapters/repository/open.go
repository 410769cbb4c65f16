package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/soulpath/internal/config"
)

// Open builds the Store selected by driver, one of config.StoreMemory or
// config.StoreSQLite. path is used by the sqlite driver.
func Open(ctx context.Context, driver, path string, opts ...SQLiteOption) (Store, error) {
	switch strings.ToLower(driver) {
	case "", config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreSQLite:
		return NewSQLiteStore(ctx, path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
