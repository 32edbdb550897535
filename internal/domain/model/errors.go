package model

import "errors"

// Sentinel kinds for message validation errors.
var (
	ErrMissingID        = errors.New("missing message id")
	ErrMissingChannel   = errors.New("missing channel id")
	ErrMissingAuthor    = errors.New("missing author")
	ErrMissingText      = errors.New("missing text")
	ErrPlaceholderText  = errors.New("placeholder text")
	ErrMissingTimestamp = errors.New("missing creation timestamp")
)
