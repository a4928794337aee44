// Package smoke drives an end-to-end exercise of a running engine over HTTP.
package smoke

import "time"

// Config controls one smoke run.
type Config struct {
	// BaseURL of the service under test.
	BaseURL string

	// Username and Password open the session before predictions run.
	Username string
	Password string

	// NumProfiles is how many synthetic profiles to submit on top of the
	// canonical scenarios.
	NumProfiles int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Verbose enables per-profile logging.
	Verbose bool
}

// Stats aggregates the outcome of a run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Submitted int
	Succeeded int
	Failed    int
	HighRisk  int
	WithPlan  int
}
