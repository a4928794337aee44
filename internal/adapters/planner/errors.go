package planner

import "errors"

// Sentinel kinds for generative plan failures. Both are absorbed into the
// fallback template by callers.
var (
	ErrUnavailable     = errors.New("plan service unavailable")
	ErrInvalidResponse = errors.New("plan response malformed")
)
