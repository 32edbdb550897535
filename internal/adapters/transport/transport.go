// Package transport connects the engine to a message source.
//
// A Transport carries two event kinds: newly created messages and reaction
// changes to messages already seen. It also answers the recent-window query
// the engine runs when attaching to a channel, so late joiners can backfill
// messages that are still mid-traversal.
package transport

import (
	"context"
	"time"

	"github.com/nvake/drift/internal/domain/model"
)

// EventKind discriminates transport events.
type EventKind string

const (
	// EventCreated announces a brand new message.
	EventCreated EventKind = "created"
	// EventChanged announces updated reaction counts on a known message.
	EventChanged EventKind = "changed"
)

// Event is one item on the transport stream.
type Event struct {
	Kind    EventKind     `json:"kind"`
	Message model.Message `json:"message"`
}

// Transport is the engine's message source and sink.
type Transport interface {
	// Append publishes a new message.
	Append(ctx context.Context, m model.Message) error

	// React atomically applies increments (or decrements) to a message's
	// reaction counters and publishes a changed event carrying the
	// resulting counts. Returns ErrUnknownMessage when the id was never
	// appended.
	React(ctx context.Context, channel, messageID string, dPositive, dNegative int64) error

	// Recent returns messages on channel created at or after since, oldest
	// first, with their current reaction counts.
	Recent(ctx context.Context, channel string, since time.Time) ([]model.Message, error)

	// Subscribe returns a stream of events. The stream closes when ctx is
	// done or the transport is closed.
	Subscribe(ctx context.Context) (<-chan Event, error)

	// Close releases the transport's resources.
	Close() error
}
