package queue

import "time"

// Default pacing bounds.
const (
	defaultMinInterval = 25 * time.Millisecond
	defaultMaxInterval = 200 * time.Millisecond
)

// Pacer derives the adaptive drain interval from queue depth: a deep
// backlog drains quickly to catch up, a shallow one slowly to avoid
// idle staggering. The result is always bounded in [min, max].
type Pacer struct {
	minInterval time.Duration
	maxInterval time.Duration
}

// NewPacer creates a pacer with configuration options.
func NewPacer(opts ...PacerOption) *Pacer {
	p := &Pacer{
		minInterval: defaultMinInterval,
		maxInterval: defaultMaxInterval,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// NextInterval returns the delay before the next single-message drain,
// given the current queue depth.
func (p *Pacer) NextInterval(depth int) time.Duration {
	if depth <= 1 {
		return p.maxInterval
	}

	interval := p.maxInterval / time.Duration(depth)
	if interval < p.minInterval {
		return p.minInterval
	}
	return interval
}

// PacerOption applies a configuration option to the Pacer.
type PacerOption func(*Pacer)

// WithDrainBounds sets the minimum and maximum drain intervals.
func WithDrainBounds(minInterval, maxInterval time.Duration) PacerOption {
	return func(p *Pacer) {
		if minInterval > 0 && maxInterval >= minInterval {
			p.minInterval = minInterval
			p.maxInterval = maxInterval
		}
	}
}
