// drift runs the ephemeral flowing-message engine.
//
// Subcommands:
//
//	drift serve   # run the engine with its HTTP API
//	drift view    # watch a channel in the terminal
//	drift feed    # generate synthetic traffic
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvake/drift/internal/adapters/repository"
	"github.com/nvake/drift/internal/adapters/transport"
	session "github.com/nvake/drift/internal/app"
	"github.com/nvake/drift/internal/config"
	"github.com/nvake/drift/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:          "drift",
	Short:        "Ephemeral flowing-message chat engine",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup initializes logging and loads configuration. Every subcommand runs
// through it before touching the engine.
func setup() (*config.Config, error) {
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(context.Background(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// buildTransport constructs the configured message transport.
func buildTransport(cfg *config.Config) (transport.Transport, error) {
	switch cfg.TransportDriver {
	case "sqlite":
		return transport.NewSQLite(cfg.SQLitePath)
	default:
		return transport.NewMemory(), nil
	}
}

// buildSession constructs a session on the configured channel with a fresh
// archive.
func buildSession(cfg *config.Config) *session.Session {
	drainMin, drainMax := cfg.DrainBounds()
	return session.New(cfg.Channel, repository.NewTreapArchive(),
		session.WithLogger(logger.Get()),
		session.WithLaneCount(cfg.LaneCount),
		session.WithMinIdle(cfg.MinIdle()),
		session.WithQueueCapacity(cfg.QueueCapacity),
		session.WithDrainBounds(drainMin, drainMax),
		session.WithActivityWindow(cfg.ActivityWindow()),
		session.WithActivityThresholds(
			cfg.ActivityThresholds[0],
			cfg.ActivityThresholds[1],
			cfg.ActivityThresholds[2],
			cfg.ActivityThresholds[3],
		),
		session.WithTraversalDurations(cfg.TraversalDurations()),
		session.WithSweepInterval(cfg.SweepInterval()),
		session.WithHistoryHorizon(cfg.HistoryHorizon()),
	)
}
