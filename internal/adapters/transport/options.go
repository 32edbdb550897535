package transport

import "time"

// MemoryOption configures the in-process transport.
type MemoryOption func(*Memory)

// WithSubscribeBuffer sets the per-subscriber event buffer size.
func WithSubscribeBuffer(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.buffer = n
		}
	}
}

// SQLiteOption configures the sqlite transport.
type SQLiteOption func(*SQLite)

// WithPollInterval sets how often subscribers poll for new rows.
func WithPollInterval(d time.Duration) SQLiteOption {
	return func(s *SQLite) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithSQLiteSubscribeBuffer sets the per-subscriber event buffer size.
func WithSQLiteSubscribeBuffer(n int) SQLiteOption {
	return func(s *SQLite) {
		if n > 0 {
			s.buffer = n
		}
	}
}
