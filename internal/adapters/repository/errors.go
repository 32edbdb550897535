package repository

import "errors"

// ErrInvalidLimit is returned when a TopN query asks for fewer than one
// entry.
var ErrInvalidLimit = errors.New("limit must be at least 1")
