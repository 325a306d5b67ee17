package sim

import "errors"

var (
	// ErrInvalidConfig marks configuration rejected before any agent is created.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvariantViolation marks an engine defect observed mid-round
	// (agent out of bounds, detection without infection, ...). Rounds abort on it.
	ErrInvariantViolation = errors.New("invariant violation")
)
