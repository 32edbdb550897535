// Package lane assigns spawn lanes to newly admitted messages.
package lane

import "time"

// Option applies a configuration option to the Allocator.
type Option func(*Allocator, *int)

// WithLaneCount sets the number of parallel lanes.
func WithLaneCount(count int) Option {
	return func(_ *Allocator, laneCount *int) {
		if count > 0 {
			*laneCount = count
		}
	}
}

// WithMinIdle sets the minimum idle time before a lane is considered
// comfortably reusable (the inter-arrival threshold).
func WithMinIdle(d time.Duration) Option {
	return func(a *Allocator, _ *int) {
		if d > 0 {
			a.minIdle = d
		}
	}
}
