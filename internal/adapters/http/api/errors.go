package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrWrongChannel   = errors.New("channel is not active")
	ErrUnknownMessage = errors.New("unknown message")
)
