// Package repository defines the vibe history store interface and errors.
//
// The history is a rolling, engagement-filtered record of expired messages
// used for time-windowed "best of" queries. Entries live at most one
// retention horizon and are deduplicated by message id.
package repository

import (
	"context"
	"time"
)

// Entry is an archived copy of a message that completed its traversal with
// strictly positive net engagement.
type Entry struct {
	Rank       int       `json:"rank"`
	MessageID  string    `json:"message_id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	Positive   int64     `json:"positive"`
	Negative   int64     `json:"negative"`
	CreatedAt  time.Time `json:"created_at"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Net returns positive minus negative engagement.
func (e Entry) Net() int64 { return e.Positive - e.Negative }

// Archive provides read/write access to per-channel vibe history.
type Archive interface {
	// Add archives an entry under channel. Returns false when the entry is
	// dropped: a duplicate message id, or net engagement not strictly
	// positive.
	Add(ctx context.Context, channel string, e Entry) bool

	// TopN returns the top-N entries for channel ordered by net engagement
	// desc, message id asc. Returns ErrInvalidLimit when n < 1.
	TopN(ctx context.Context, channel string, n int) ([]Entry, error)

	// Prune drops entries whose message was created before cutoff and
	// returns how many were removed. Age runs from creation, not archival,
	// so "best of the last hour" means created within the last hour.
	Prune(ctx context.Context, channel string, cutoff time.Time) int

	// Count returns the number of entries archived for channel.
	Count(ctx context.Context, channel string) int

	// Reset discards channel's entire partition.
	Reset(ctx context.Context, channel string)
}
