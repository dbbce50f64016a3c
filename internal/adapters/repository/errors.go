package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateOpportunity = errors.New("opportunity id already present")
	ErrDuplicateProposal    = errors.New("proposal id already present")
	ErrAlreadyDecided       = errors.New("outcome already decided")
	ErrInvalidDecision      = errors.New("decision must be accepted or rejected")
	ErrInvalidLimit         = errors.New("invalid query limit")
)
