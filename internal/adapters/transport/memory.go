package transport

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nvake/drift/internal/domain/model"
)

const defaultSubscribeBuffer = 256

// Memory is an in-process Transport. It keeps every appended message and
// fans events out to all subscribers. Used by the feed generator, the TUI
// viewer, and tests.
type Memory struct {
	mu     sync.Mutex
	byID   map[string]*model.Message
	log    []model.Message
	subs   map[int]chan Event
	nextID int
	buffer int
	closed bool
}

// NewMemory constructs an empty in-process transport.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		byID:   make(map[string]*model.Message),
		subs:   make(map[int]chan Event),
		buffer: defaultSubscribeBuffer,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Append implements Transport.Append.
func (m *Memory) Append(_ context.Context, msg model.Message) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	stored := msg
	m.byID[msg.ID] = &stored
	m.log = append(m.log, stored)
	m.fanOut(Event{Kind: EventCreated, Message: msg})
	m.mu.Unlock()
	return nil
}

// React implements Transport.React.
func (m *Memory) React(_ context.Context, _ string, messageID string, dPositive, dNegative int64) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	stored, ok := m.byID[messageID]
	if !ok {
		m.mu.Unlock()
		return ErrUnknownMessage
	}
	stored.Reactions.Positive += dPositive
	stored.Reactions.Negative += dNegative
	m.fanOut(Event{Kind: EventChanged, Message: *stored})
	m.mu.Unlock()
	return nil
}

// Recent implements Transport.Recent.
func (m *Memory) Recent(_ context.Context, channel string, since time.Time) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []model.Message
	for _, msg := range m.log {
		if msg.ChannelID != channel || msg.CreatedAt.Before(since) {
			continue
		}
		out = append(out, *m.byID[msg.ID])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Subscribe implements Transport.Subscribe.
func (m *Memory) Subscribe(ctx context.Context) (<-chan Event, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	id := m.nextID
	m.nextID++
	ch := make(chan Event, m.buffer)
	m.subs[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
		m.mu.Unlock()
	}()
	return ch, nil
}

// Close implements Transport.Close.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for id, sub := range m.subs {
		delete(m.subs, id)
		close(sub)
	}
	return nil
}

// fanOut delivers ev to every subscriber, dropping when a buffer is full so
// one slow reader cannot stall the rest. Callers hold mu.
func (m *Memory) fanOut(ev Event) {
	for _, sub := range m.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}
