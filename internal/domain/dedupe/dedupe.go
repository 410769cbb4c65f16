// Package dedupe tracks answer submission ids so retried submissions are
// applied at most once.
package dedupe

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Default deduper configuration constants.
const (
	defaultMaxSize = 50000
)

// Deduper records seen submission keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key so the submission can be retried. Used when a
	// key was recorded but the submission was then rejected.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key scopes a client submission id to a session.
func Key(sessionID, submissionID string) string {
	return sessionID + "/" + submissionID
}

// inMemoryDeduper implements Deduper. Bounded mode (maxSize > 0) keeps the
// most recently used keys in an LRU; unbounded mode uses a plain set.
type inMemoryDeduper struct {
	mu      sync.Mutex
	maxSize int
	recent  *lru.Cache[string, struct{}]
	all     map[string]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.maxSize > 0 {
		// lru.New only fails for non-positive sizes.
		d.recent, _ = lru.New[string, struct{}](d.maxSize)
	} else {
		d.all = make(map[string]struct{})
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.recent != nil {
		seen, _ := d.recent.ContainsOrAdd(key, struct{}{})
		return seen
	}
	if _, seen := d.all[key]; seen {
		return true
	}
	d.all[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.recent != nil {
		d.recent.Remove(key)
		return
	}
	delete(d.all, key)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.recent != nil {
		return int64(d.recent.Len())
	}
	return int64(len(d.all))
}
