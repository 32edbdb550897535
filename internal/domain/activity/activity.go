// Package activity converts recent message arrival rate into a discrete
// intensity level used to pick traversal speed for newly spawned messages.
package activity

import (
	"sync"
	"time"
)

// Level bounds and defaults.
const (
	MinLevel = 1
	MaxLevel = 5

	defaultWindow = 30 * time.Second
)

// defaultThresholds maps window counts to levels: a count strictly greater
// than thresholds[i] yields level i+2. Monotonic by construction.
var defaultThresholds = [4]int{2, 5, 10, 15}

// Controller maintains a rolling window of admitted-message timestamps.
// Recomputation with unchanged input always yields the same level, so a
// level can never flap; consumers apply it only to newly spawned messages.
type Controller struct {
	mu         sync.Mutex
	window     time.Duration
	thresholds [4]int
	stamps     []time.Time
}

// NewController creates an activity controller with configuration options.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		window:     defaultWindow,
		thresholds: defaultThresholds,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Observe records an admission timestamp.
func (c *Controller) Observe(ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stamps = append(c.stamps, ts)
}

// Level returns the current intensity in [MinLevel, MaxLevel], pruning
// timestamps that have aged out of the window.
func (c *Controller) Level(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prune(now)
	return levelFor(len(c.stamps), c.thresholds)
}

// Reset drops the window. Called on channel switch.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stamps = c.stamps[:0]
}

// prune removes timestamps older than the window. Must hold c.mu.
func (c *Controller) prune(now time.Time) {
	cutoff := now.Add(-c.window)
	keep := c.stamps[:0]
	for _, ts := range c.stamps {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	c.stamps = keep
}

// levelFor maps a window count to a level via a monotonic step function.
func levelFor(count int, thresholds [4]int) int {
	level := MinLevel
	for _, threshold := range thresholds {
		if count > threshold {
			level++
		}
	}
	return level
}
