// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// placeholderText is the sentinel body the transport emits for messages whose
// content was removed upstream. Such records never enter the flow.
const placeholderText = "[deleted]"

// Reactions holds externally mutable engagement counters for a message.
// The engine only reads them; the transport owns the increments.
type Reactions struct {
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
}

// Net returns positive minus negative engagement.
func (r Reactions) Net() int64 { return r.Positive - r.Negative }

// Message represents a chat message as delivered by the transport.
// CreatedAt is the only source of truth for position and must not be
// mutated after creation.
type Message struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Reactions Reactions `json:"reactions"`
}

// Validate reports whether the message is well formed enough to enter the
// admission queue. Malformed records are dropped at the boundary, never
// propagated as fatal errors.
func (m Message) Validate() error {
	switch {
	case strings.TrimSpace(m.ID) == "":
		return ErrMissingID
	case strings.TrimSpace(m.ChannelID) == "":
		return ErrMissingChannel
	case strings.TrimSpace(m.Author) == "":
		return ErrMissingAuthor
	case strings.TrimSpace(m.Text) == "":
		return ErrMissingText
	case strings.TrimSpace(m.Text) == placeholderText:
		return ErrPlaceholderText
	case m.CreatedAt.IsZero():
		return ErrMissingTimestamp
	}
	return nil
}

// ActiveMessage is a message promoted out of the admission queue and
// currently traversing the surface. Traversal duration is fixed at spawn
// from the activity level and never recomputed mid-flight.
type ActiveMessage struct {
	Message

	Lane              int
	AdmittedAt        time.Time
	LevelAtSpawn      int
	TraversalDuration time.Duration
}
