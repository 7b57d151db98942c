// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/eventprocessor"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	engine := cfg.Recommend.EngineConfig()
	if engine.Thresholds.RatingThreshold != 4 || engine.Thresholds.TrustThreshold != 0.5 {
		t.Errorf("default thresholds = %+v", engine.Thresholds)
	}
	if engine.Limits.TopN != 10 || engine.Pool.Debounce != 250*time.Millisecond {
		t.Errorf("default engine config = %+v", engine)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadFrom("")
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Events.Transport != eventprocessor.TransportGoChannel {
		t.Errorf("Events.Transport = %q", cfg.Events.Transport)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
store:
  backend: memory
recommend:
  top_n: 5
  debounce: 1s
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("RECOMMEND_CACHE_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env overrides file", cfg.Server.Port, 7070},
		{"file overrides default", cfg.Store.Backend, StoreMemory},
		{"file int", cfg.Recommend.TopN, 5},
		{"file duration", cfg.Recommend.Debounce, time.Second},
		{"env duration", cfg.Recommend.CacheTTL, 90 * time.Second},
		{"file string", cfg.Logging.Level, "debug"},
		{"default kept", cfg.Recommend.SearchK, 10},
		{"slice count", len(cfg.Security.CORSOrigins), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	if _, err := loadFrom(""); err == nil {
		t.Error("expected error for unknown store backend")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"rate limit disabled", func(c *Config) { c.Security.RateLimitReqs = 0; c.Security.RateLimitDisabled = true }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"badger without path", func(c *Config) { c.Store.Path = "" }, true},
		{"memory without path", func(c *Config) { c.Store.Backend = StoreMemory; c.Store.Path = "" }, false},
		{"fan share one", func(c *Config) { c.Recommend.MinFanShare = 1 }, true},
		{"max delay below debounce", func(c *Config) { c.Recommend.MaxDelay = time.Millisecond }, true},
		{"http sentiment without url", func(c *Config) { c.Sentiment.Backend = SentimentHTTP }, true},
		{"http sentiment", func(c *Config) {
			c.Sentiment.Backend = SentimentHTTP
			c.Sentiment.URL = "http://localhost:5000/polarity"
		}, false},
		{"unknown sentiment", func(c *Config) { c.Sentiment.Backend = "oracle" }, true},
		{"unknown transport", func(c *Config) { c.Events.Transport = "kafka" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"HTTP_PORT":   "server.port",
		"NATS_URL":    "events.url",
		"BADGER_PATH": "store.path",
		"PATH":        "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindConfigFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 1234\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}
