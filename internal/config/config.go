// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers an optional YAML file and env vars on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SpecializationWeight and InterestWeight control relevance scoring.
	// A keyword matching a specialization counts SpecializationWeight,
	// one matching an interest counts InterestWeight.
	SpecializationWeight float64 `koanf:"specialization_weight"`
	InterestWeight       float64 `koanf:"interest_weight"`

	// MinSample is the smallest decided-submission group a tone
	// recommendation may be based on.
	MinSample int `koanf:"min_sample"`

	// FullConfidenceSample is the group size at which recommendation
	// confidence is no longer discounted.
	FullConfidenceSample int `koanf:"full_confidence_sample"`

	// MaxRankLimit caps POST /rank?limit.
	MaxRankLimit int `koanf:"max_rank_limit"`

	// MaxDeadlineLimit caps GET /deadlines?limit.
	MaxDeadlineLimit int `koanf:"max_deadline_limit"`

	// KeywordLimit caps the number of keywords extracted per opportunity.
	KeywordLimit int `koanf:"keyword_limit"`

	// SourceURL points at a remote opportunity feed. Empty disables the
	// remote source.
	SourceURL string `koanf:"source_url"`

	// SourceTimeoutMS bounds each remote feed request.
	SourceTimeoutMS int `koanf:"source_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	c := &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 4,
		DedupeSize:           50_000,
		SpecializationWeight: 2.0,
		InterestWeight:       1.0,
		MinSample:            3,
		FullConfidenceSample: 10,
		MaxRankLimit:         100,
		MaxDeadlineLimit:     50,
		KeywordLimit:         10,
		SourceURL:            "",
		SourceTimeoutMS:      10_000,
	}
	return c
}
