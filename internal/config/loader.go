package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/nvake/drift/internal/domain/activity"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if DRIFT_CONFIG is set
//  3. env (prefix DRIFT_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("DRIFT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: DRIFT_ADDR, DRIFT_LANE_COUNT, ...
	// Map env keys like DRIFT_LANE_COUNT -> lane_count (flat keys),
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("DRIFT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "drift_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Channel == "":
		return fmt.Errorf("%w: channel must not be empty", ErrInvalidConfig)
	case c.LaneCount < 1:
		return fmt.Errorf("%w: lane_count must be at least 1", ErrInvalidConfig)
	case c.MinIdleMS < 0:
		return fmt.Errorf("%w: min_idle_ms must not be negative", ErrInvalidConfig)
	case c.DrainMinMS < 1 || c.DrainMaxMS <= c.DrainMinMS:
		return fmt.Errorf("%w: drain bounds must satisfy 0 < min < max", ErrInvalidConfig)
	case c.QueueCapacity < 1:
		return fmt.Errorf("%w: queue_capacity must be at least 1", ErrInvalidConfig)
	case c.ActivityWindowMS < 1:
		return fmt.Errorf("%w: activity_window_ms must be positive", ErrInvalidConfig)
	case c.MaxTopLimit < 1:
		return fmt.Errorf("%w: max_top_limit must be at least 1", ErrInvalidConfig)
	}

	if len(c.ActivityThresholds) != activity.MaxLevel-1 {
		return fmt.Errorf("%w: activity_thresholds needs %d entries", ErrInvalidConfig, activity.MaxLevel-1)
	}
	for i := 1; i < len(c.ActivityThresholds); i++ {
		if c.ActivityThresholds[i] <= c.ActivityThresholds[i-1] {
			return fmt.Errorf("%w: activity_thresholds must be strictly increasing", ErrInvalidConfig)
		}
	}

	if len(c.TraversalDurationsMS) != activity.MaxLevel {
		return fmt.Errorf("%w: traversal_durations_ms needs %d entries", ErrInvalidConfig, activity.MaxLevel)
	}
	for _, d := range c.TraversalDurationsMS {
		if d < 1 {
			return fmt.Errorf("%w: traversal durations must be positive", ErrInvalidConfig)
		}
	}

	switch c.TransportDriver {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path required for the sqlite driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: transport_driver must be memory or sqlite", ErrInvalidConfig)
	}

	return nil
}
