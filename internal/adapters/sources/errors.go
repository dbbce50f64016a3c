package sources

import "errors"

// Sentinel kinds for source errors.
var (
	ErrUnavailable = errors.New("source unavailable")
	ErrBadPayload  = errors.New("source payload malformed")
)
