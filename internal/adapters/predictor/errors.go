package predictor

import "errors"

// Sentinel kinds for remote prediction failures. The orchestrator treats
// ErrSessionExpired as fatal and everything else as a cue to fall back.
var (
	ErrSessionExpired     = errors.New("session rejected by prediction service")
	ErrUnavailable        = errors.New("prediction service unavailable")
	ErrInvalidResponse    = errors.New("prediction response malformed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
