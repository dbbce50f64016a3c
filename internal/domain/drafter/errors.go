package drafter

import "errors"

// Sentinel kinds for drafter errors.
var (
	ErrUnknownTone = errors.New("unknown proposal tone")
)
