// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// UpstreamMode selects where roster and pick data come from:
	// "http" talks to the membership and scoring services, "fixture"
	// serves deterministic synthetic seasons.
	UpstreamMode string `koanf:"upstream_mode"`

	// MembershipURL is the base URL of the membership service.
	MembershipURL string `koanf:"membership_url"`

	// ScoringURL is the base URL of the scoring service.
	ScoringURL string `koanf:"scoring_url"`

	// UpstreamTimeoutMS bounds each upstream request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// BatchWorkers sets the number of batch computation workers.
	BatchWorkers int `koanf:"batch_workers"`

	// BatchQueueSize bounds the in-memory batch job queue.
	BatchQueueSize int `koanf:"batch_queue_size"`

	// BatchMaxViews caps the number of views in one batch request.
	BatchMaxViews int `koanf:"batch_max_views"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use (e.g., loading
// from remote stores) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		UpstreamMode:      "fixture",
		MembershipURL:     "",
		ScoringURL:        "",
		UpstreamTimeoutMS: 5_000,
		BatchWorkers:      runtime.NumCPU() * 2,
		BatchQueueSize:    1024,
		BatchMaxViews:     64,
		MaxStandingsLimit: 100,
	}
	return c
}
