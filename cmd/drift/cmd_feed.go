package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvake/drift/internal/feed"
)

func init() {
	feedCmd.Flags().StringVar(&feedChannel, "channel", "", "channel to write to (default: configured channel)")
	feedCmd.Flags().DurationVar(&feedInterval, "interval", 800*time.Millisecond, "gap between generated messages")
	feedCmd.Flags().IntVar(&feedReactionOdds, "reaction-odds", 3, "one reaction fires per N messages")
	rootCmd.AddCommand(feedCmd)
}

var (
	feedChannel      string
	feedInterval     time.Duration
	feedReactionOdds int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Generate synthetic messages and reactions",
	Args:  cobra.NoArgs,
	RunE:  runFeed,
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if feedChannel != "" {
		cfg.Channel = feedChannel
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, err := buildTransport(cfg)
	if err != nil {
		return err
	}
	defer tr.Close()

	g := feed.New(tr, cfg.Channel,
		feed.WithInterval(feedInterval),
		feed.WithReactionOdds(feedReactionOdds),
	)

	if err := g.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
