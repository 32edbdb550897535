package transport

import (
	"math/rand"
	"strings"
	"time"
)

// Under concurrent writers, WAL-mode SQLite can surface transient errors
// that the busy_timeout pragma does not absorb. Writes retry with
// exponential backoff and jitter.

const (
	retryMaxAttempts = 3
	retryBaseDelay   = 50 * time.Millisecond
	retryMaxDelay    = 500 * time.Millisecond
)

func isTransientSQLiteErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"SQLITE_BUSY",
		"SQLITE_LOCKED",
		"IOERR_SHORT_READ",
		"database is locked",
		"database table is locked",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func retryOnContention(fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= retryMaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !isTransientSQLiteErr(lastErr) {
			return lastErr
		}
		if attempt < retryMaxAttempts {
			delay := retryBaseDelay << attempt
			if delay > retryMaxDelay {
				delay = retryMaxDelay
			}
			jitter := time.Duration(rand.Int63n(int64(delay) / 2))
			time.Sleep(delay + jitter)
		}
	}
	return lastErr
}
