// Package config defines engine configuration structures and loading hooks.
package config

import (
	"time"

	"github.com/nvake/drift/internal/domain/activity"
)

// Config contains process configuration. Durations are expressed in
// milliseconds so they layer cleanly from YAML and env vars.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Channel is the channel the session binds to at startup.
	Channel string `koanf:"channel"`

	// LaneCount sets the number of parallel lanes on the surface.
	LaneCount int `koanf:"lane_count"`

	// MinIdleMS is the lane inter-arrival threshold (T_min).
	MinIdleMS int `koanf:"min_idle_ms"`

	// DrainMinMS and DrainMaxMS bound the adaptive drain interval.
	DrainMinMS int `koanf:"drain_min_ms"`
	DrainMaxMS int `koanf:"drain_max_ms"`

	// QueueCapacity bounds the admission queue.
	QueueCapacity int `koanf:"queue_capacity"`

	// ActivityWindowMS is the rolling window for the activity level.
	ActivityWindowMS int `koanf:"activity_window_ms"`

	// ActivityThresholds holds the counts for levels 2 through 5.
	ActivityThresholds []int `koanf:"activity_thresholds"`

	// TraversalDurationsMS maps activity level 1..5 to traversal duration.
	TraversalDurationsMS []int `koanf:"traversal_durations_ms"`

	// SweepIntervalMS sets how often the lifecycle sweep runs.
	SweepIntervalMS int `koanf:"sweep_interval_ms"`

	// HistoryHorizonMS sets the archive retention horizon.
	HistoryHorizonMS int `koanf:"history_horizon_ms"`

	// MaxTopLimit caps GET /top?limit.
	MaxTopLimit int `koanf:"max_top_limit"`

	// TransportDriver selects the message transport: memory or sqlite.
	TransportDriver string `koanf:"transport_driver"`

	// SQLitePath locates the shared database when the driver is sqlite.
	SQLitePath string `koanf:"sqlite_path"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		Channel:              "general",
		LaneCount:            8,
		MinIdleMS:            1200,
		DrainMinMS:           25,
		DrainMaxMS:           200,
		QueueCapacity:        4096,
		ActivityWindowMS:     30_000,
		ActivityThresholds:   []int{2, 5, 10, 15},
		TraversalDurationsMS: []int{25_000, 20_000, 16_000, 12_000, 9_000},
		SweepIntervalMS:      2_000,
		HistoryHorizonMS:     3_600_000,
		MaxTopLimit:          100,
		TransportDriver:      "memory",
		SQLitePath:           "drift.db",
	}
}

// MinIdle returns the lane inter-arrival threshold as a duration.
func (c *Config) MinIdle() time.Duration {
	return time.Duration(c.MinIdleMS) * time.Millisecond
}

// DrainBounds returns the adaptive drain interval bounds.
func (c *Config) DrainBounds() (time.Duration, time.Duration) {
	return time.Duration(c.DrainMinMS) * time.Millisecond,
		time.Duration(c.DrainMaxMS) * time.Millisecond
}

// ActivityWindow returns the rolling window as a duration.
func (c *Config) ActivityWindow() time.Duration {
	return time.Duration(c.ActivityWindowMS) * time.Millisecond
}

// SweepInterval returns the sweep cadence as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMS) * time.Millisecond
}

// HistoryHorizon returns the archive retention horizon as a duration.
func (c *Config) HistoryHorizon() time.Duration {
	return time.Duration(c.HistoryHorizonMS) * time.Millisecond
}

// TraversalDurations returns the per-level traversal table. Load validates
// the slice has one entry per level.
func (c *Config) TraversalDurations() [activity.MaxLevel]time.Duration {
	var out [activity.MaxLevel]time.Duration
	for i := range out {
		out[i] = time.Duration(c.TraversalDurationsMS[i]) * time.Millisecond
	}
	return out
}
