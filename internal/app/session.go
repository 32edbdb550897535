// Package session owns one channel's flowing-message state: the admission
// queue, the lane reservation table, the active set, and the archive
// binding. A session is single-writer; the run loop is the only mutator
// and readers (HTTP handlers, the TUI) go through the accessor methods.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nvake/drift/internal/adapters/mq/queue"
	"github.com/nvake/drift/internal/adapters/repository"
	"github.com/nvake/drift/internal/adapters/transport"
	"github.com/nvake/drift/internal/domain/activity"
	"github.com/nvake/drift/internal/domain/dedupe"
	"github.com/nvake/drift/internal/domain/lane"
	"github.com/nvake/drift/internal/domain/model"
	"github.com/nvake/drift/internal/domain/position"
	"github.com/nvake/drift/pkg/clock"
	"github.com/nvake/drift/pkg/logger"
	"github.com/nvake/drift/pkg/metrics"
)

// Default session configuration constants.
const (
	defaultSweepInterval = 2 * time.Second
	defaultHorizon       = time.Hour
)

// defaultDurations maps activity level 1..5 to traversal duration. Busier
// channels flow faster so the surface never saturates.
var defaultDurations = [activity.MaxLevel]time.Duration{
	25 * time.Second,
	20 * time.Second,
	16 * time.Second,
	12 * time.Second,
	9 * time.Second,
}

// Placed pairs an active message with its derived placement at one instant.
type Placed struct {
	model.ActiveMessage
	Placement position.Placement `json:"placement"`
}

// Session is the channel session and lifecycle manager.
type Session struct {
	mu sync.RWMutex

	channel string
	epoch   uint64

	// Core components
	clk      clock.Clock
	queue    queue.Queue
	pacer    *queue.Pacer
	lanes    *lane.Allocator
	admitted dedupe.Deduper
	activity *activity.Controller
	archive  repository.Archive

	// Configuration
	layout        position.Layout
	durations     [activity.MaxLevel]time.Duration
	sweepInterval time.Duration
	horizon       time.Duration
	laneCount     int
	minIdle       time.Duration
	queueCapacity int
	window        time.Duration
	thresholds    [4]int
	drainMin      time.Duration
	drainMax      time.Duration

	// State
	active           map[string]*model.ActiveMessage
	queued           map[string]struct{}
	pendingReactions map[string]model.Reactions
	admittedTotal    int64

	// Logging
	log logger.Logger
}

// New constructs a session bound to channel, archiving into archive.
func New(channel string, archive repository.Archive, opts ...Option) *Session {
	s := &Session{
		channel:       channel,
		archive:       archive,
		clk:           clock.System{},
		layout:        position.DefaultLayout(),
		durations:     defaultDurations,
		sweepInterval: defaultSweepInterval,
		horizon:       defaultHorizon,
		log:           logger.Get().Named("session"),
	}

	for _, opt := range opts {
		opt(s)
	}

	laneOpts := []lane.Option{}
	if s.laneCount > 0 {
		laneOpts = append(laneOpts, lane.WithLaneCount(s.laneCount))
	}
	if s.minIdle > 0 {
		laneOpts = append(laneOpts, lane.WithMinIdle(s.minIdle))
	}
	s.lanes = lane.NewAllocator(laneOpts...)
	s.layout.Lanes = s.lanes.LaneCount()

	queueOpts := []queue.Option{}
	if s.queueCapacity > 0 {
		queueOpts = append(queueOpts, queue.WithCapacity(s.queueCapacity))
	}
	s.queue = queue.NewInMemoryQueue(queueOpts...)

	pacerOpts := []queue.PacerOption{}
	if s.drainMin > 0 && s.drainMax > s.drainMin {
		pacerOpts = append(pacerOpts, queue.WithDrainBounds(s.drainMin, s.drainMax))
	}
	s.pacer = queue.NewPacer(pacerOpts...)

	activityOpts := []activity.Option{}
	if s.window > 0 {
		activityOpts = append(activityOpts, activity.WithWindow(s.window))
	}
	if s.thresholds != [4]int{} {
		activityOpts = append(activityOpts,
			activity.WithThresholds(s.thresholds[0], s.thresholds[1], s.thresholds[2], s.thresholds[3]))
	}
	s.activity = activity.NewController(activityOpts...)

	s.admitted = dedupe.NewInMemoryDeduper()
	s.active = make(map[string]*model.ActiveMessage)
	s.queued = make(map[string]struct{})
	s.pendingReactions = make(map[string]model.Reactions)

	return s
}

// HandleEvent routes one transport event into the session. Events tagged
// with another channel are stale leftovers from before a switch and are
// discarded.
func (s *Session) HandleEvent(ctx context.Context, ev transport.Event) {
	if ev.Message.ChannelID != s.Channel() {
		metrics.RecordStaleEvent()
		s.log.Debug(ctx, "discarding event for inactive channel",
			logger.String("event_channel", ev.Message.ChannelID),
			logger.String("session_channel", s.Channel()),
		)
		return
	}

	switch ev.Kind {
	case transport.EventCreated:
		s.Admit(ctx, ev.Message)
	case transport.EventChanged:
		s.UpdateReactions(ctx, ev.Message.ID, ev.Message.Reactions)
	}
}

// Admit validates and enqueues a message. Malformed records and duplicate
// ids are dropped here and never reach the lane allocator. Returns true
// when the message entered the queue.
func (s *Session) Admit(ctx context.Context, m model.Message) bool {
	if err := m.Validate(); err != nil {
		metrics.RecordMessageInvalid()
		s.log.Debug(ctx, "rejecting malformed message",
			logger.String("id", m.ID),
			logger.Error(err),
		)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ChannelID != s.channel {
		metrics.RecordStaleEvent()
		return false
	}
	if s.admitted.SeenAndRecord(ctx, m.ID) {
		metrics.RecordMessageDuplicate()
		s.log.Debug(ctx, "dropping duplicate message", logger.String("id", m.ID))
		return false
	}
	if !s.queue.Enqueue(ctx, m) {
		// Let a later redelivery try again once the queue has room.
		s.admitted.Unrecord(ctx, m.ID)
		s.log.Warn(ctx, "admission queue full, dropping message", logger.String("id", m.ID))
		return false
	}

	s.queued[m.ID] = struct{}{}
	s.admittedTotal++
	metrics.RecordMessageAdmitted()
	metrics.UpdateAdmittedSetSize(s.admitted.Size())
	return true
}

// DrainOne promotes at most one queued message to the active set. Returns
// false when the queue is empty.
func (s *Session) DrainOne(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.queue.DequeueOne(ctx)
	if !ok {
		return false
	}
	delete(s.queued, m.ID)
	if r, pending := s.pendingReactions[m.ID]; pending {
		m.Reactions = r
		delete(s.pendingReactions, m.ID)
	}

	now := s.clk.Now()
	laneIdx, fallback := s.lanes.Allocate(now)
	if fallback {
		metrics.RecordLaneFallback()
	}

	s.activity.Observe(now)
	lvl := s.activity.Level(now)

	s.active[m.ID] = &model.ActiveMessage{
		Message:           m,
		Lane:              laneIdx,
		AdmittedAt:        now,
		LevelAtSpawn:      lvl,
		TraversalDuration: s.durations[lvl-1],
	}

	metrics.UpdateActiveMessages(len(s.active))
	metrics.UpdateLanesReserved(s.lanes.Reserved())
	metrics.UpdateActivityLevel(lvl)
	return true
}

// UpdateReactions applies changed reaction counters to the live copy of a
// message. Counts for still-queued messages are held aside and applied at
// promotion so the sweep always sees current engagement. Changes for ids
// the session is not carrying are ignored.
func (s *Session) UpdateReactions(_ context.Context, id string, r model.Reactions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if am, ok := s.active[id]; ok {
		am.Reactions = r
		return
	}
	if _, ok := s.queued[id]; ok {
		s.pendingReactions[id] = r
	}
}

// Sweep removes expired messages from the active set, releases their lanes,
// archives the ones with net-positive engagement, and prunes history past
// the retention horizon.
func (s *Session) Sweep(ctx context.Context) {
	start := time.Now()

	s.mu.Lock()
	now := s.clk.Now()
	channel := s.channel

	for id, am := range s.active {
		p := position.At(am.CreatedAt, am.ChannelID, am.TraversalDuration, now, s.layout)
		if !p.Expired {
			continue
		}

		delete(s.active, id)
		delete(s.pendingReactions, id)
		s.lanes.Release(am.Lane)
		metrics.RecordMessageExpired()

		if am.Reactions.Net() > 0 {
			added := s.archive.Add(ctx, channel, repository.Entry{
				MessageID:  am.ID,
				Author:     am.Author,
				Text:       am.Text,
				Positive:   am.Reactions.Positive,
				Negative:   am.Reactions.Negative,
				CreatedAt:  am.CreatedAt,
				ArchivedAt: now,
			})
			if added {
				metrics.RecordMessageArchived()
			}
		}
	}

	s.archive.Prune(ctx, channel, now.Add(-s.horizon))

	metrics.UpdateActiveMessages(len(s.active))
	metrics.UpdateLanesReserved(s.lanes.Reserved())
	s.mu.Unlock()

	metrics.RecordSweepDuration(float64(time.Since(start).Milliseconds()))
}

// SwitchChannel atomically rebinds the session to another channel. The
// queue, lane table, active set, admitted set, and activity window all
// reset; the archive partition for the old channel is left in place.
func (s *Session) SwitchChannel(ctx context.Context, channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if channel == s.channel {
		return
	}

	s.log.Info(ctx, "switching channel",
		logger.String("from", s.channel),
		logger.String("to", channel),
	)

	s.epoch++
	s.channel = channel
	s.queue.Reset(ctx)
	s.lanes.Reset()
	s.admitted.Reset(ctx)
	s.activity.Reset()
	s.active = make(map[string]*model.ActiveMessage)
	s.queued = make(map[string]struct{})
	s.pendingReactions = make(map[string]model.Reactions)
	s.admittedTotal = 0

	metrics.RecordChannelSwitch()
	metrics.UpdateActiveMessages(0)
	metrics.UpdateLanesReserved(0)
	metrics.UpdateAdmittedSetSize(0)
}

// Active returns the active set annotated with placements at the current
// instant, ordered by admission time then id for a stable render order.
func (s *Session) Active(_ context.Context) []Placed {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clk.Now()
	out := make([]Placed, 0, len(s.active))
	for _, am := range s.active {
		out = append(out, Placed{
			ActiveMessage: *am,
			Placement:     position.At(am.CreatedAt, am.ChannelID, am.TraversalDuration, now, s.layout),
		})
	}
	sortPlaced(out)
	return out
}

// TopN returns the channel's best archived messages.
func (s *Session) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.archive.TopN(ctx, s.Channel(), n)
}

// Channel returns the currently bound channel id.
func (s *Session) Channel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channel
}

// Layout returns the surface geometry the session places messages on.
func (s *Session) Layout() position.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

// Epoch returns the channel-switch generation counter.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Level returns the current activity level.
func (s *Session) Level(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activity.Level(s.clk.Now())
}

// QueueDepth returns the number of messages awaiting promotion.
func (s *Session) QueueDepth(ctx context.Context) int {
	return s.queue.Len(ctx)
}

// GetStats returns a snapshot of session state for the stats endpoint.
func (s *Session) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"channel":        s.channel,
		"epoch":          s.epoch,
		"queue_depth":    s.queue.Len(ctx),
		"active":         len(s.active),
		"lanes_reserved": s.lanes.Reserved(),
		"lane_count":     s.lanes.LaneCount(),
		"activity_level": s.activity.Level(s.clk.Now()),
		"admitted_total": s.admittedTotal,
		"admitted_set":   s.admitted.Size(),
		"archived":       s.archive.Count(ctx, s.channel),
	}
}

// maxTraversal is the longest configured traversal duration, which bounds
// how far back the recent-window backfill has to look.
func (s *Session) maxTraversal() time.Duration {
	max := s.durations[0]
	for _, d := range s.durations[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

func sortPlaced(out []Placed) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AdmittedAt.Equal(out[j].AdmittedAt) {
			return out[i].AdmittedAt.Before(out[j].AdmittedAt)
		}
		return out[i].ID < out[j].ID
	})
}
