package scout

import "errors"

// Sentinel kinds for scout errors.
var (
	// ErrInvalidProfile means the profile has no specializations and no
	// interests, leaving nothing to score against.
	ErrInvalidProfile = errors.New("invalid profile: no scoring signal")
)
