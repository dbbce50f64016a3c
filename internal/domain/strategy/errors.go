package strategy

import "errors"

// Sentinel kinds for strategy errors.
var (
	// ErrInvalidOutcome means an outcome carries an unknown status or is
	// missing its opportunity id.
	ErrInvalidOutcome = errors.New("invalid submission outcome")
)
