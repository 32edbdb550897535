package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nvake/drift/internal/tui"
	"github.com/nvake/drift/pkg/logger"
)

func init() {
	viewCmd.Flags().StringVar(&viewChannel, "channel", "", "channel to watch (default: configured channel)")
	rootCmd.AddCommand(viewCmd)
}

var viewChannel string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Watch a channel's message flow in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runView,
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if viewChannel != "" {
		cfg.Channel = viewChannel
	}
	// The TUI owns stdout; keep log lines out of the frame buffer.
	_ = logger.SetLevelString("error")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, err := buildTransport(cfg)
	if err != nil {
		return err
	}
	defer tr.Close()

	sess := buildSession(cfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sess.Run(gctx, tr)
	})

	g.Go(func() error {
		defer stop()
		return tui.Run(gctx, sess)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
