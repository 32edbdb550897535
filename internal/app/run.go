package session

import (
	"context"
	"fmt"
	"time"

	"github.com/nvake/drift/internal/adapters/transport"
	"github.com/nvake/drift/pkg/logger"
	"github.com/nvake/drift/pkg/metrics"
)

// Run drives the session against a transport until ctx is cancelled or the
// event stream closes. One goroutine owns all mutation: transport events
// translate to enqueues, an adaptive timer paces promotion, and a ticker
// runs the lifecycle sweep.
func (s *Session) Run(ctx context.Context, tr transport.Transport) error {
	events, err := tr.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	s.backfill(ctx, tr)

	drain := time.NewTimer(s.pacer.NextInterval(s.queue.Len(ctx)))
	defer drain.Stop()
	sweep := time.NewTicker(s.sweepInterval)
	defer sweep.Stop()

	s.log.Info(ctx, "session running",
		logger.String("channel", s.Channel()),
		logger.Int("lanes", s.lanes.LaneCount()),
		logger.Duration("sweep_interval", s.sweepInterval),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				s.log.Info(ctx, "event stream closed, stopping session")
				return nil
			}
			s.HandleEvent(ctx, ev)

		case <-drain.C:
			s.DrainOne(ctx)
			next := s.pacer.NextInterval(s.queue.Len(ctx))
			metrics.RecordDrainInterval(float64(next.Milliseconds()))
			drain.Reset(next)

		case <-sweep.C:
			s.Sweep(ctx)
		}
	}
}

// backfill reconstructs in-flight messages for a session that attaches
// mid-stream, by admitting every message created within the longest
// possible traversal. Already-expired ones are swept out on the first tick.
func (s *Session) backfill(ctx context.Context, tr transport.Transport) {
	since := s.clk.Now().Add(-s.maxTraversal())
	recent, err := tr.Recent(ctx, s.Channel(), since)
	if err != nil {
		s.log.Warn(ctx, "recent-window backfill failed", logger.Error(err))
		return
	}
	for _, m := range recent {
		s.Admit(ctx, m)
	}
	if len(recent) > 0 {
		s.log.Info(ctx, "backfilled recent window", logger.Int("messages", len(recent)))
	}
}
