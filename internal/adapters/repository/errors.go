package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("employee not found")
	ErrMissingID = errors.New("missing employee id")
)
