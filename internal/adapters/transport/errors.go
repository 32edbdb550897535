package transport

import "errors"

var (
	// ErrUnknownMessage is returned when a reaction targets an id the
	// transport never saw.
	ErrUnknownMessage = errors.New("unknown message id")
	// ErrClosed is returned when operating on a closed transport.
	ErrClosed = errors.New("transport closed")
)
