// Package dedupe defines the interface for idempotency tracking.
package dedupe

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxSize = 50_000

// Deduper records seen event IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing it to be retried.
	// Use it only when an event was marked as seen but could not be queued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// lruDeduper keeps the most recently seen IDs; the oldest are evicted once
// maxSize is reached.
type lruDeduper struct {
	maxSize int
	seen    *lru.Cache[string, struct{}]
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &lruDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	cache, err := lru.New[string, struct{}](d.maxSize)
	if err != nil {
		// Only a non-positive size fails, and WithMaxSize rejects those.
		panic(err)
	}
	d.seen = cache
	return d
}

func (d *lruDeduper) SeenAndRecord(_ context.Context, id string) bool {
	found, _ := d.seen.ContainsOrAdd(id, struct{}{})
	return found
}

func (d *lruDeduper) Unrecord(_ context.Context, id string) {
	d.seen.Remove(id)
}

func (d *lruDeduper) Size() int64 {
	return int64(d.seen.Len())
}
