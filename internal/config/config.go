// Package config defines service configuration and its loader.
//
// Values are layered: defaults from New, then an optional YAML file named by
// DRIVERRANK_CONFIG, then DRIVERRANK_* environment variables.
package config

import (
	"context"
	"fmt"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the number of cohorts waiting for a worker.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ranking workers. It also caps how many
	// cohorts of a batch are ranked at once.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many submission keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxCohortSize caps the number of records accepted in one cohort.
	MaxCohortSize int `koanf:"max_cohort_size"`

	// MaxRankingLimit caps GET /cohorts/{dsp}/{station}/{week}?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// TraceEnabled turns on OpenTelemetry tracing.
	TraceEnabled bool `koanf:"trace_enabled"`

	// TraceSampleRate is the fraction of traces sampled when tracing is on.
	TraceSampleRate float64 `koanf:"trace_sample_rate"`

	// TraceEndpoint is the OTLP/HTTP collector, host:port. Empty uses the
	// OTEL_EXPORTER_OTLP_* environment.
	TraceEndpoint string `koanf:"trace_endpoint"`

	// TraceInsecure disables TLS towards the collector.
	TraceInsecure bool `koanf:"trace_insecure"`

	// MaxBodyBytes bounds the request body of cohort uploads.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		QueueSize:       1024,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      10_000,
		MaxCohortSize:   5_000,
		MaxRankingLimit: 500,
		TraceSampleRate: 1,
		MaxBodyBytes:    8 << 20,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	positive := []struct {
		name  string
		value int
	}{
		{"queue_size", c.QueueSize},
		{"worker_count", c.WorkerCount},
		{"dedupe_size", c.DedupeSize},
		{"max_cohort_size", c.MaxCohortSize},
		{"max_ranking_limit", c.MaxRankingLimit},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.value)
		}
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive, got %d", ErrInvalidConfig, c.MaxBodyBytes)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("%w: trace_sample_rate must be within [0,1], got %g", ErrInvalidConfig, c.TraceSampleRate)
	}
	return nil
}
