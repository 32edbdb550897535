package transport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nvake/drift/internal/domain/model"

	_ "modernc.org/sqlite"
)

const (
	defaultPollInterval = 150 * time.Millisecond
	pollBatchSize       = 256
)

// SQLite is a Transport backed by a shared SQLite database in WAL mode.
// Producers append rows; subscribers tail the event table by rowid cursor.
// Multiple processes can share one database file, which makes this the
// driver for running the feed generator and the engine as separate
// processes.
type SQLite struct {
	db           *sql.DB
	pollInterval time.Duration
	buffer       int
	done         chan struct{}
}

// NewSQLite opens (or creates) the database at path and initializes the
// schema.
func NewSQLite(path string, opts ...SQLiteOption) (*SQLite, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLite{
		db:           db,
		pollInterval: defaultPollInterval,
		buffer:       defaultSubscribeBuffer,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id            TEXT PRIMARY KEY,
		channel       TEXT NOT NULL,
		author        TEXT NOT NULL,
		body          TEXT NOT NULL,
		positive      INTEGER NOT NULL DEFAULT 0,
		negative      INTEGER NOT NULL DEFAULT 0,
		created_at_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_channel_created ON messages(channel, created_at_ms);

	CREATE TABLE IF NOT EXISTS events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		kind          TEXT NOT NULL,
		message_id    TEXT NOT NULL,
		channel       TEXT NOT NULL,
		author        TEXT NOT NULL,
		body          TEXT NOT NULL,
		positive      INTEGER NOT NULL DEFAULT 0,
		negative      INTEGER NOT NULL DEFAULT 0,
		created_at_ms INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append implements Transport.Append.
func (s *SQLite) Append(ctx context.Context, m model.Message) error {
	return retryOnContention(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, channel, author, body, positive, negative, created_at_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			m.ID, m.ChannelID, m.Author, m.Text,
			m.Reactions.Positive, m.Reactions.Negative, m.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return err
		}
		if err := insertEvent(ctx, tx, EventCreated, m); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// React implements Transport.React. The increment and the changed event are
// written in one transaction so concurrent reactors never lose updates.
func (s *SQLite) React(ctx context.Context, channel, messageID string, dPositive, dNegative int64) error {
	return retryOnContention(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx,
			`UPDATE messages SET positive = positive + ?, negative = negative + ? WHERE id = ?`,
			dPositive, dNegative, messageID,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrUnknownMessage
		}

		var m model.Message
		var createdMs int64
		row := tx.QueryRowContext(ctx,
			`SELECT id, channel, author, body, positive, negative, created_at_ms
			 FROM messages WHERE id = ?`,
			messageID,
		)
		if err := row.Scan(&m.ID, &m.ChannelID, &m.Author, &m.Text,
			&m.Reactions.Positive, &m.Reactions.Negative, &createdMs); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUnknownMessage
			}
			return err
		}
		m.CreatedAt = time.UnixMilli(createdMs).UTC()

		if err := insertEvent(ctx, tx, EventChanged, m); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func insertEvent(ctx context.Context, tx *sql.Tx, kind EventKind, m model.Message) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO events (kind, message_id, channel, author, body, positive, negative, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(kind), m.ID, m.ChannelID, m.Author, m.Text,
		m.Reactions.Positive, m.Reactions.Negative, m.CreatedAt.UnixMilli(),
	)
	return err
}

// Recent implements Transport.Recent.
func (s *SQLite) Recent(ctx context.Context, channel string, since time.Time) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, channel, author, body, positive, negative, created_at_ms
		 FROM messages WHERE channel = ? AND created_at_ms >= ?
		 ORDER BY created_at_ms ASC, id ASC`,
		channel, since.UnixMilli(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Subscribe implements Transport.Subscribe. The stream starts at the tail
// of the event log; history is served by Recent instead.
func (s *SQLite) Subscribe(ctx context.Context) (<-chan Event, error) {
	var cursor int64
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM events`)
	if err := row.Scan(&cursor); err != nil {
		return nil, err
	}

	ch := make(chan Event, s.buffer)
	go s.tail(ctx, cursor, ch)
	return ch, nil
}

// tail polls the event table for rows past the cursor and forwards them.
func (s *SQLite) tail(ctx context.Context, cursor int64, ch chan<- Event) {
	defer close(ch)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
		}

		for {
			events, next, err := s.eventsSince(ctx, cursor)
			if err != nil || len(events) == 0 {
				break
			}
			cursor = next
			for _, ev := range events {
				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				case <-s.done:
					return
				}
			}
			if len(events) < pollBatchSize {
				break
			}
		}
	}
}

func (s *SQLite) eventsSince(ctx context.Context, cursor int64) ([]Event, int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, message_id, channel, author, body, positive, negative, created_at_ms
		 FROM events WHERE id > ?
		 ORDER BY id ASC LIMIT ?`,
		cursor, pollBatchSize,
	)
	if err != nil {
		return nil, cursor, err
	}
	defer rows.Close()

	var out []Event
	next := cursor
	for rows.Next() {
		var (
			rowID     int64
			kind      string
			m         model.Message
			createdMs int64
		)
		if err := rows.Scan(&rowID, &kind, &m.ID, &m.ChannelID, &m.Author, &m.Text,
			&m.Reactions.Positive, &m.Reactions.Negative, &createdMs); err != nil {
			return nil, cursor, err
		}
		m.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, Event{Kind: EventKind(kind), Message: m})
		next = rowID
	}
	return out, next, rows.Err()
}

// Close implements Transport.Close.
func (s *SQLite) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(r rowScanner) (model.Message, error) {
	var m model.Message
	var createdMs int64
	err := r.Scan(&m.ID, &m.ChannelID, &m.Author, &m.Text,
		&m.Reactions.Positive, &m.Reactions.Negative, &createdMs)
	if err != nil {
		return model.Message{}, err
	}
	m.CreatedAt = time.UnixMilli(createdMs).UTC()
	return m, nil
}
