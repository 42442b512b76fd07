package superopt

import "errors"

var (
	ErrInvalidOptions  = errors.New("invalid search options")
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrInputFaults is returned when the program being optimized doesn't
	// itself run to completion, so there is no target to search for.
	ErrInputFaults = errors.New("input program faults")
)
