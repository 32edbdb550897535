// Package feed generates synthetic chat traffic for demos and load checks.
//
// The generator writes through the same transport the engine subscribes to,
// so every demo message takes the full admission path.
package feed

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/nvake/drift/internal/adapters/transport"
	"github.com/nvake/drift/internal/domain/model"
	"github.com/nvake/drift/pkg/logger"
)

// Default generator configuration constants.
const (
	defaultInterval      = 800 * time.Millisecond
	defaultReactionOdds  = 3 // roughly one reaction per N messages
	reactionBacklogLimit = 64
)

var authors = []string{
	"ada", "brook", "casey", "devon", "emery",
	"finley", "gray", "harper", "indigo", "jules",
}

var phrases = []string{
	"this track goes hard",
	"anyone else seeing this",
	"good vibes only tonight",
	"lol exactly",
	"wait what just happened",
	"ok that was smooth",
	"brb getting snacks",
	"this chat moves fast",
	"no way that landed",
	"certified classic",
	"who queued this one",
	"immaculate timing",
}

// Generator writes synthetic messages and reactions to a channel.
type Generator struct {
	tr       transport.Transport
	channel  string
	interval time.Duration
	odds     int
	recent   []string
	log      logger.Logger
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithInterval sets the gap between generated messages.
func WithInterval(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.interval = d
		}
	}
}

// WithReactionOdds sets how often reactions fire: one chance in n per
// message.
func WithReactionOdds(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.odds = n
		}
	}
}

// WithLogger overrides the generator's logger.
func WithLogger(log logger.Logger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// New constructs a generator writing to channel through tr.
func New(tr transport.Transport, channel string, opts ...Option) *Generator {
	g := &Generator{
		tr:       tr,
		channel:  channel,
		interval: defaultInterval,
		odds:     defaultReactionOdds,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.Get().Named("feed")
	}
	return g
}

// Run emits messages until ctx is cancelled.
func (g *Generator) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.log.Info(ctx, "feed generator running",
		logger.String("channel", g.channel),
		logger.Duration("interval", g.interval),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.emit(ctx); err != nil {
				return fmt.Errorf("emit: %w", err)
			}
		}
	}
}

// emit appends one message and occasionally reacts to a recent one.
func (g *Generator) emit(ctx context.Context) error {
	m := model.Message{
		ID:        uuid.NewString(),
		ChannelID: g.channel,
		Author:    authors[randomIndex(len(authors))],
		Text:      phrases[randomIndex(len(phrases))],
		CreatedAt: time.Now().UTC(),
	}
	if err := g.tr.Append(ctx, m); err != nil {
		return err
	}

	g.recent = append(g.recent, m.ID)
	if len(g.recent) > reactionBacklogLimit {
		g.recent = g.recent[1:]
	}

	if randomIndex(g.odds) == 0 && len(g.recent) > 0 {
		target := g.recent[randomIndex(len(g.recent))]
		var dPos, dNeg int64 = 1, 0
		if randomIndex(4) == 0 {
			dPos, dNeg = 0, 1
		}
		if err := g.tr.React(ctx, g.channel, target, dPos, dNeg); err != nil {
			// Reactions are best-effort; the target may have been
			// written by an earlier process run.
			g.log.Debug(ctx, "reaction skipped",
				logger.String("message_id", target),
				logger.Error(err),
			)
		}
	}
	return nil
}

// randomIndex returns a uniform index in [0, n) from crypto/rand, which
// needs no seeding and never repeats sequences across demo runs.
func randomIndex(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
