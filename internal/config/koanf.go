// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/marquee/internal/dataset"
	"github.com/tomtom215/marquee/internal/eventprocessor"
	"github.com/tomtom215/marquee/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend: StoreBadger,
			Path:    "/data/marquee",
		},
		Dataset: dataset.Config{
			Movies:   dataset.MoviesFile,
			Ratings:  dataset.RatingsFile,
			Comments: dataset.CommentsFile,
		},
		Recommend: RecommendConfig{
			RatingThreshold: engine.Thresholds.RatingThreshold,
			TrustThreshold:  engine.Thresholds.TrustThreshold,
			LikedThreshold:  engine.Thresholds.LikedThreshold,
			MinFanShare:     engine.Thresholds.MinFanShare,
			SmoothIDF:       engine.Index.SmoothIDF,
			MaxNGram:        engine.Index.MaxNGram,
			SearchK:         engine.Limits.SearchK,
			MaxK:            engine.Limits.MaxK,
			TopN:            engine.Limits.TopN,
			ExcludeSeed:     engine.Limits.ExcludeSeed,
			Debounce:        engine.Pool.Debounce,
			MaxDelay:        engine.Pool.MaxDelay,
			PoolTimeout:     engine.Pool.Timeout,
			CacheEnabled:    engine.Cache.Enabled,
			CacheTTL:        engine.Cache.TTL,
			CacheMaxEntries: engine.Cache.MaxEntries,
		},
		Sentiment: SentimentConfig{
			Backend:          SentimentLexicon,
			Timeout:          5 * time.Second,
			Burst:            1,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
		Events: eventprocessor.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration with the following precedence (highest wins):
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	return loadFrom(findConfigFile())
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
	"cors_origins":       "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"store_backend":      "store.backend",
	"badger_path":        "store.path",
	"badger_sync_writes": "store.sync_writes",

	"dataset_dir":                    "dataset.dir",
	"dataset_score_missing_polarity": "dataset.score_missing_polarity",

	"recommend_rating_threshold":  "recommend.rating_threshold",
	"recommend_trust_threshold":   "recommend.trust_threshold",
	"recommend_liked_threshold":   "recommend.liked_threshold",
	"recommend_min_fan_share":     "recommend.min_fan_share",
	"recommend_smooth_idf":        "recommend.smooth_idf",
	"recommend_search_k":          "recommend.search_k",
	"recommend_max_k":             "recommend.max_k",
	"recommend_top_n":             "recommend.top_n",
	"recommend_exclude_seed":      "recommend.exclude_seed",
	"recommend_debounce":          "recommend.debounce",
	"recommend_max_delay":         "recommend.max_delay",
	"recommend_pool_timeout":      "recommend.pool_timeout",
	"recommend_cache_enabled":     "recommend.cache_enabled",
	"recommend_cache_ttl":         "recommend.cache_ttl",
	"recommend_cache_max_entries": "recommend.cache_max_entries",

	"sentiment_backend":             "sentiment.backend",
	"sentiment_url":                 "sentiment.url",
	"sentiment_timeout":             "sentiment.timeout",
	"sentiment_requests_per_second": "sentiment.requests_per_second",
	"sentiment_burst":               "sentiment.burst",

	"events_enabled":        "events.enabled",
	"events_transport":      "events.transport",
	"nats_url":              "events.url",
	"nats_queue_group":      "events.queue_group",
	"nats_subscribers":      "events.subscribers",
	"events_dedup_ttl":      "events.dedup_ttl",
	"events_dedup_capacity": "events.dedup_capacity",
	"events_max_retries":    "events.retry_max_retries",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables are skipped so unrelated environment does not pollute config.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - BADGER_PATH -> store.path
//   - NATS_URL -> events.url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for synchronizing access to reloaded configuration.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
