// Package lane assigns spawn lanes to newly admitted messages.
//
// Selection is biased toward the least-recently-used lane so messages
// admitted close together never spawn on top of each other. Allocation
// never blocks and never rejects; admission pacing upstream is the
// backpressure mechanism, not this allocator.
package lane

import (
	"sync"
	"time"
)

// Default allocator configuration constants.
const (
	defaultLaneCount = 8
	defaultMinIdle   = 1200 * time.Millisecond
)

// Allocator tracks per-lane reservation timestamps and hands out the
// longest-idle lane. A single goroutine owns it within a channel session,
// but the lock keeps stats readers safe.
type Allocator struct {
	mu         sync.Mutex
	reservedAt []time.Time
	minIdle    time.Duration
}

// NewAllocator creates a lane allocator with configuration options.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		minIdle: defaultMinIdle,
	}
	laneCount := defaultLaneCount

	for _, opt := range opts {
		opt(a, &laneCount)
	}

	a.reservedAt = make([]time.Time, laneCount)
	return a
}

// Allocate reserves a lane at now and returns its index. fallback reports
// that every lane was busier than the idle threshold and the least-stale
// one was reused anyway (a tighter spawn is preferred over dropping).
//
// Tie-break: among equally idle lanes the lowest index wins, so allocation
// order is deterministic and testable.
func (a *Allocator) Allocate(now time.Time) (lane int, fallback bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	oldest := 0
	for i := 1; i < len(a.reservedAt); i++ {
		if a.reservedAt[i].Before(a.reservedAt[oldest]) {
			oldest = i
		}
	}

	qualified := a.idleAt(oldest, now) >= a.minIdle
	if !qualified {
		// Scan forward for any lane past the threshold. The oldest lane has
		// the maximum idle time, so this normally finds nothing, but a lane
		// released out of order (Release zeroes its reservation) qualifies.
		for i := range a.reservedAt {
			if a.idleAt(i, now) >= a.minIdle {
				oldest = i
				qualified = true
				break
			}
		}
	}

	a.reservedAt[oldest] = now
	return oldest, !qualified
}

// idleAt returns how long lane i has been idle at now. An unreserved lane
// (zero timestamp) is treated as infinitely idle.
func (a *Allocator) idleAt(i int, now time.Time) time.Duration {
	if a.reservedAt[i].IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(a.reservedAt[i])
}

// Release clears lane's reservation so it can be reused immediately,
// without waiting out the idle threshold artificially.
func (a *Allocator) Release(lane int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if lane >= 0 && lane < len(a.reservedAt) {
		a.reservedAt[lane] = time.Time{}
	}
}

// Reset clears every reservation. Called on channel switch.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.reservedAt {
		a.reservedAt[i] = time.Time{}
	}
}

// Reserved returns the number of lanes holding a live reservation.
func (a *Allocator) Reserved() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for _, ts := range a.reservedAt {
		if !ts.IsZero() {
			count++
		}
	}
	return count
}

// LaneCount returns the fixed number of lanes.
func (a *Allocator) LaneCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.reservedAt)
}
