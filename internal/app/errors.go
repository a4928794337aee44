package service

import "errors"

// Errors that cross the engine boundary. Everything else is absorbed into
// the fallback path.
var (
	// ErrUnauthenticated means no session token is present. The caller
	// must authenticate; the call is not retried.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSessionExpired means the remote service rejected the token. The
	// session is already invalidated when this is returned.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidInput means the submitted profile failed validation before
	// any network call was attempted.
	ErrInvalidInput = errors.New("invalid profile")

	// ErrNotStarted means the service was used before Start.
	ErrNotStarted = errors.New("service not started")
)
