package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if STANDEE_CONFIG is set
//  3. env (prefix STANDEE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("STANDEE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: STANDEE_ADDR, STANDEE_BATCH_WORKERS, ...
	// Map env keys like STANDEE_BATCH_WORKERS -> batch_workers (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("STANDEE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "standee_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.UpstreamMode != "fixture" && c.UpstreamMode != "http":
		return fmt.Errorf("%w: upstream_mode must be fixture or http, got %q", ErrInvalidConfig, c.UpstreamMode)
	case c.UpstreamMode == "http" && (c.MembershipURL == "" || c.ScoringURL == ""):
		return fmt.Errorf("%w: membership_url and scoring_url are required in http mode", ErrInvalidConfig)
	case c.UpstreamTimeoutMS < 1:
		return fmt.Errorf("%w: upstream_timeout_ms must be positive", ErrInvalidConfig)
	case c.BatchWorkers < 1:
		return fmt.Errorf("%w: batch_workers must be positive", ErrInvalidConfig)
	case c.BatchQueueSize < 1:
		return fmt.Errorf("%w: batch_queue_size must be positive", ErrInvalidConfig)
	case c.BatchMaxViews < 1:
		return fmt.Errorf("%w: batch_max_views must be positive", ErrInvalidConfig)
	case c.MaxStandingsLimit < 1:
		return fmt.Errorf("%w: max_standings_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
