// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/marquee/internal/dataset"
	"github.com/tomtom215/marquee/internal/eventprocessor"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/sentiment"
	"github.com/tomtom215/marquee/internal/store"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig          `koanf:"server"`
	Security  SecurityConfig        `koanf:"security"`
	Logging   LoggingConfig         `koanf:"logging"`
	Store     StoreConfig           `koanf:"store"`
	Dataset   dataset.Config        `koanf:"dataset"`
	Recommend RecommendConfig       `koanf:"recommend"`
	Sentiment SentimentConfig       `koanf:"sentiment"`
	Events    eventprocessor.Config `koanf:"events"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Store backends.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	// Backend is "memory" or "badger".
	// Default: badger
	Backend string `koanf:"backend"`

	// Path is the Badger data directory.
	// Default: /data/marquee
	Path string `koanf:"path"`

	// SyncWrites fsyncs every Badger commit.
	SyncWrites bool `koanf:"sync_writes"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	RatingThreshold float64 `koanf:"rating_threshold"`
	TrustThreshold  float64 `koanf:"trust_threshold"`
	LikedThreshold  float64 `koanf:"liked_threshold"`
	MinFanShare     float64 `koanf:"min_fan_share"`

	SmoothIDF bool `koanf:"smooth_idf"`
	MaxNGram  int  `koanf:"max_ngram"`

	SearchK     int  `koanf:"search_k"`
	MaxK        int  `koanf:"max_k"`
	TopN        int  `koanf:"top_n"`
	ExcludeSeed bool `koanf:"exclude_seed"`

	// Debounce, MaxDelay and PoolTimeout control trust pool recomputation.
	Debounce    time.Duration `koanf:"debounce"`
	MaxDelay    time.Duration `koanf:"max_delay"`
	PoolTimeout time.Duration `koanf:"pool_timeout"`

	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`
}

// Sentiment backends.
const (
	SentimentLexicon = "lexicon"
	SentimentHTTP    = "http"
)

// SentimentConfig selects the review polarity scorer.
type SentimentConfig struct {
	// Backend is "lexicon" (built in) or "http" (remote scorer with lexicon fallback).
	// Default: lexicon
	Backend string `koanf:"backend"`

	URL               string        `koanf:"url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	FailureThreshold  uint32        `koanf:"failure_threshold"`
	OpenTimeout       time.Duration `koanf:"open_timeout"`
}

// EngineConfig converts the recommend section to the engine's configuration.
func (c *RecommendConfig) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Thresholds: recommend.Thresholds{
			RatingThreshold: c.RatingThreshold,
			TrustThreshold:  c.TrustThreshold,
			LikedThreshold:  c.LikedThreshold,
			MinFanShare:     c.MinFanShare,
		},
		Index: recommend.IndexConfig{SmoothIDF: c.SmoothIDF, MaxNGram: c.MaxNGram},
		Pool: recommend.PoolConfig{
			Debounce: c.Debounce,
			MaxDelay: c.MaxDelay,
			Timeout:  c.PoolTimeout,
		},
		Limits: recommend.LimitsConfig{
			SearchK:     c.SearchK,
			MaxK:        c.MaxK,
			TopN:        c.TopN,
			ExcludeSeed: c.ExcludeSeed,
		},
		Cache: recommend.CacheConfig{
			Enabled:    c.CacheEnabled,
			TTL:        c.CacheTTL,
			MaxEntries: c.CacheMaxEntries,
		},
	}
}

// ClientConfig converts the sentiment section to the HTTP client configuration.
func (c *SentimentConfig) ClientConfig() sentiment.ClientConfig {
	return sentiment.ClientConfig{
		URL:               c.URL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		FailureThreshold:  c.FailureThreshold,
		OpenTimeout:       c.OpenTimeout,
	}
}

// BadgerConfig converts the store section to the Badger configuration.
func (c *StoreConfig) BadgerConfig() store.BadgerConfig {
	return store.BadgerConfig{Path: c.Path, SyncWrites: c.SyncWrites}
}

// LoggerConfig converts the logging section to the logger configuration.
func (c *LoggingConfig) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// Load loads configuration using Koanf v2 with layered sources.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoadFrom is Load with an explicit config file. An empty path falls back
// to the CONFIG_PATH and default path search.
func LoadFrom(path string) (*Config, error) {
	if path == "" {
		return LoadWithKoanf()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	return loadFrom(path)
}
