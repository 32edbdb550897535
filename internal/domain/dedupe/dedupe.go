// Package dedupe defines the interface for idempotency tracking.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records admitted message IDs so a re-delivered message is dropped
// instead of re-entering the flow. The set grows monotonically while a
// channel is open; Reset purges it wholesale on channel switch.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	// This is the ONLY method for deduplication - thread-safe and atomic.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing it to be retried.
	// This should only be used when a message was marked as seen but failed
	// to enter the queue (e.g., admission backpressure).
	Unrecord(ctx context.Context, id string)

	// Reset drops every recorded ID. Called exactly once per channel switch.
	Reset(ctx context.Context)

	Size() int64
}

// inMemoryDeduper implements Deduper with a plain map. The set is never
// partially evicted: an evicted ID would let a late re-delivery double-spawn
// a message, so the only purge is the wholesale Reset.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size atomic.Int64

	initialCapacity int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		initialCapacity: 1024, // default sizing hint
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.initialCapacity)

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
// Returns true if id was already seen, false if it was newly recorded.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true // Already seen
	}

	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false // Newly recorded
}

// Unrecord removes an ID from the seen list, allowing it to be retried.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

// Reset drops every recorded ID.
func (d *inMemoryDeduper) Reset(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen = make(map[string]struct{}, d.initialCapacity)
	d.size.Store(0)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
