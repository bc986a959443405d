package config

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "CALCUTTA_"
	envConfigPath = "CALCUTTA_CONFIG"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if CALCUTTA_CONFIG is set
//  3. env (prefix CALCUTTA_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CALCUTTA_QUEUE_SIZE -> queue_size. Underscores are kept to match the
	// koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains(logLevels, strings.ToLower(c.LogLevel)):
		return fmt.Errorf("%w: log_level %q must be one of %v", ErrInvalidConfig, c.LogLevel, logLevels)
	case c.EventQueueSize < 0, c.WorkerCount < 0, c.DedupeSize < 0:
		return fmt.Errorf("%w: queue_size, worker_count and dedupe_size must be non-negative", ErrInvalidConfig)
	case c.EventsRateLimit < 0 || c.EventsBurst < 0:
		return fmt.Errorf("%w: events_rate_limit and events_burst must be non-negative", ErrInvalidConfig)
	}
	return nil
}
