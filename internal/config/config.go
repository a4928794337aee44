// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PredictorBaseURL is the base URL of the attrition prediction service.
	PredictorBaseURL string `koanf:"predictor_base_url"`

	// PredictTimeoutMS bounds one prediction round-trip.
	PredictTimeoutMS int `koanf:"predict_timeout_ms"`

	// AnthropicAPIKey enables LLM plan generation when set. With an empty
	// key the engine falls back to the plan template.
	AnthropicAPIKey string `koanf:"anthropic_api_key"`

	// PlanModel selects the model used for plan generation.
	PlanModel string `koanf:"plan_model"`

	// PlanMaxTokens caps the plan completion length.
	PlanMaxTokens int `koanf:"plan_max_tokens"`

	// PlanTimeoutMS bounds one plan generation round-trip.
	PlanTimeoutMS int `koanf:"plan_timeout_ms"`

	// DBPath locates the SQLite persistence file. Empty means in-memory
	// persistence only.
	DBPath string `koanf:"db_path"`

	// WorkerCount sets the number of rescore workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory rescore queue.
	QueueSize int `koanf:"queue_size"`

	// JitterSeed, when non-zero, makes heuristic scores reproducible.
	JitterSeed int64 `koanf:"jitter_seed"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9090",
		PredictorBaseURL: "http://localhost:8000",
		PredictTimeoutMS: 10_000,
		PlanModel:        "claude-sonnet-4-5-20250929",
		PlanMaxTokens:    2048,
		PlanTimeoutMS:    30_000,
		DBPath:           "reten.db",
		WorkerCount:      runtime.NumCPU(),
		QueueSize:        1024,
	}
}
