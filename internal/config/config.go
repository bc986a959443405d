// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PoolFile is the YAML pool fixture loaded at startup. Empty starts with no pools.
	PoolFile string `koanf:"pool_file"`

	// EventQueueSize bounds the in-memory progress event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of progress workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the event id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// EventsRateLimit caps POST /events per second; 0 disables the limit.
	EventsRateLimit float64 `koanf:"events_rate_limit"`

	// EventsBurst is the burst allowed above EventsRateLimit.
	EventsBurst int `koanf:"events_burst"`

	// CORSAllowedOrigins lists origins allowed by CORS. Empty allows any.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		EventQueueSize:  10_000,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      50_000,
		EventsRateLimit: 200,
		EventsBurst:     50,
	}
}
