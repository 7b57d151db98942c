// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package config provides centralized configuration management for Marquee.

Configuration is layered with Koanf v2: struct defaults, then an optional
YAML file, then environment variables. The file is taken from CONFIG_PATH
or the first of config.yaml, config.yml, /etc/marquee/config.yaml found.

# Configuration Sections

  - server: HTTP listener and timeouts
  - security: rate limiting and CORS origins
  - logging: zerolog level, format and caller info
  - store: record store backend (memory or badger) and data path
  - dataset: CSV dataset directory and import options
  - recommend: scoring thresholds, limits, trust pool debounce and response cache
  - sentiment: review polarity scorer (built-in lexicon or remote HTTP)
  - events: feedback event bus transport (gochannel or nats)

# Environment Variables

Only mapped variables are read. A selection:

  - HTTP_PORT, HTTP_HOST: listener (default 0.0.0.0:8080)
  - LOG_LEVEL, LOG_FORMAT: logging (default info, json)
  - STORE_BACKEND, BADGER_PATH: record store (default badger at /data/marquee)
  - DATASET_DIR: CSV dataset loaded at startup when set
  - RECOMMEND_TOP_N, RECOMMEND_DEBOUNCE, RECOMMEND_CACHE_TTL: engine tuning
  - SENTIMENT_BACKEND, SENTIMENT_URL: polarity scorer
  - EVENTS_TRANSPORT, NATS_URL: event bus
  - CORS_ORIGINS: comma-separated list

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg := cfg.Recommend.EngineConfig()
*/
package config
