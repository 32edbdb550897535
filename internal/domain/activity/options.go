// Package activity converts recent message arrival rate into a discrete
// intensity level used to pick traversal speed for newly spawned messages.
package activity

import "time"

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithWindow sets the rolling window length.
func WithWindow(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithThresholds sets the step-function thresholds. Values must be
// strictly increasing; invalid sets are ignored so the level mapping
// stays monotonic.
func WithThresholds(t2, t3, t4, t5 int) Option {
	return func(c *Controller) {
		if t2 >= 0 && t2 < t3 && t3 < t4 && t4 < t5 {
			c.thresholds = [4]int{t2, t3, t4, t5}
		}
	}
}
