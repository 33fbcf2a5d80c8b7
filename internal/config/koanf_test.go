// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolateEnv points CONFIG_PATH and DOTENV_PATH at files that do not exist
// so a stray config.yaml or .env cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "none.yaml"))
	t.Setenv(DotEnvPathEnvVar, filepath.Join(dir, "none.env"))
	old := DefaultConfigPaths
	DefaultConfigPaths = nil
	t.Cleanup(func() { DefaultConfigPaths = old })
}

// unsetForTest removes key for the duration of the test.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8501 {
		t.Errorf("Server.Port = %d, want 8501", cfg.Server.Port)
	}
	if cfg.Analytics.TopGenres != 8 {
		t.Errorf("Analytics.TopGenres = %d, want 8", cfg.Analytics.TopGenres)
	}
	if cfg.Analytics.TopCountries != 10 || cfg.Analytics.TopDirectors != 10 || cfg.Analytics.TopSeasons != 10 {
		t.Errorf("top-N defaults = %+v, want 10 each", cfg.Analytics)
	}
	if cfg.Analytics.DurationBins != 30 {
		t.Errorf("Analytics.DurationBins = %d, want 30", cfg.Analytics.DurationBins)
	}
	if cfg.Retention.Enabled {
		t.Error("Retention.Enabled should be false by default")
	}
	if cfg.Security.RateLimitWindow != time.Minute {
		t.Errorf("Security.RateLimitWindow = %v, want 1m", cfg.Security.RateLimitWindow)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"ANALYTICS_DURATION_BINS", "analytics.duration_bins"},
		{"RETENTION_MAX_AGE", "retention.max_age"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	isolateEnv(t)
	for _, k := range []string{"HTTP_PORT", "LOG_LEVEL", "CORS_ORIGINS", "ANALYTICS_TOP_GENRES"} {
		unsetForTest(t, k)
	}

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8501 {
		t.Errorf("Server.Port = %d, want 8501", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("ANALYTICS_CACHE_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("RETENTION_ENABLED", "true")
	t.Setenv("RETENTION_MAX_AGE", "48h")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Analytics.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v, want 90s", cfg.Analytics.CacheTTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "http://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if !cfg.Retention.Enabled || cfg.Retention.MaxAge != 48*time.Hour {
		t.Errorf("Retention = %+v", cfg.Retention)
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	isolateEnv(t)
	unsetForTest(t, "HTTP_PORT")
	unsetForTest(t, "ANALYTICS_TOP_GENRES")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: 7000\nanalytics:\n  top_genres: 5\nsecurity:\n  cors_origins:\n    - http://dash.example\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Analytics.TopGenres != 5 {
		t.Errorf("TopGenres = %d, want 5", cfg.Analytics.TopGenres)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "http://dash.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_DotEnv(t *testing.T) {
	isolateEnv(t)
	unsetForTest(t, "LOG_FORMAT")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LOG_FORMAT=console\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(DotEnvPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
}

func TestLoadWithKoanf_InvalidEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HTTP_PORT", "70000")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}
