// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

// Package config loads Streamscope configuration.
//
// Values are layered with koanf: built-in defaults, then an optional YAML
// file, then environment variables. A .env file in the working directory
// is read into the process environment before the environment layer, so
// local development can keep settings next to the binary.
package config

import (
	"time"
)

// Config holds all runtime configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Upload    UploadConfig    `koanf:"upload"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Events    EventsConfig    `koanf:"events"`
	Retention RetentionConfig `koanf:"retention"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"` // ":memory:" for a throwaway database
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 lets DuckDB decide
}

// UploadConfig limits CSV uploads.
type UploadConfig struct {
	MaxBytes int64 `koanf:"max_bytes"`
}

// AnalyticsConfig holds the default sizes of each dashboard view.
type AnalyticsConfig struct {
	TopGenres    int           `koanf:"top_genres"`
	TopCountries int           `koanf:"top_countries"`
	TopDirectors int           `koanf:"top_directors"`
	TopSeasons   int           `koanf:"top_seasons"`
	DurationBins int           `koanf:"duration_bins"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	ChartWidth   int           `koanf:"chart_width"`
	ChartHeight  int           `koanf:"chart_height"`
}

// EventsConfig tunes the in-process dataset event bus.
type EventsConfig struct {
	BufferSize           int64         `koanf:"buffer_size"`
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
	BreakerFailures      uint32        `koanf:"breaker_failures"`
	BreakerTimeout       time.Duration `koanf:"breaker_timeout"`
}

// RetentionConfig controls the dataset janitor.
type RetentionConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Schedule string        `koanf:"schedule"` // standard cron spec or descriptor such as @every 1h
	MaxAge   time.Duration `koanf:"max_age"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
