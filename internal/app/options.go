package session

import (
	"time"

	"github.com/nvake/drift/internal/domain/activity"
	"github.com/nvake/drift/internal/domain/position"
	"github.com/nvake/drift/pkg/clock"
	"github.com/nvake/drift/pkg/logger"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithClock injects the time source. Tests use a fake clock advancing in
// controlled steps.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clk = c
		}
	}
}

// WithLayout sets the surface geometry. The lane count is kept in sync
// with the allocator's.
func WithLayout(l position.Layout) Option {
	return func(s *Session) {
		s.layout = l
	}
}

// WithLaneCount sets the number of lanes.
func WithLaneCount(count int) Option {
	return func(s *Session) {
		if count > 0 {
			s.laneCount = count
		}
	}
}

// WithMinIdle sets the lane inter-arrival threshold.
func WithMinIdle(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.minIdle = d
		}
	}
}

// WithQueueCapacity sets the admission queue capacity.
func WithQueueCapacity(capacity int) Option {
	return func(s *Session) {
		if capacity > 0 {
			s.queueCapacity = capacity
		}
	}
}

// WithDrainBounds sets the adaptive drain interval bounds.
func WithDrainBounds(minInterval, maxInterval time.Duration) Option {
	return func(s *Session) {
		if minInterval > 0 && maxInterval > minInterval {
			s.drainMin = minInterval
			s.drainMax = maxInterval
		}
	}
}

// WithActivityWindow sets the rolling window for the activity level.
func WithActivityWindow(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithActivityThresholds sets the count thresholds for levels 2 through 5.
func WithActivityThresholds(t2, t3, t4, t5 int) Option {
	return func(s *Session) {
		s.thresholds = [4]int{t2, t3, t4, t5}
	}
}

// WithTraversalDurations sets the per-level traversal durations. Every
// duration must be positive or the table is left unchanged.
func WithTraversalDurations(durations [activity.MaxLevel]time.Duration) Option {
	return func(s *Session) {
		for _, d := range durations {
			if d <= 0 {
				return
			}
		}
		s.durations = durations
	}
}

// WithSweepInterval sets how often the lifecycle sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithHistoryHorizon sets the archive retention horizon.
func WithHistoryHorizon(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.horizon = d
		}
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}
