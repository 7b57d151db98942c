// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/marquee/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := c.validateSentiment(); err != nil {
		return err
	}
	return c.Events.Validate()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreMemory:
		return nil
	case StoreBadger:
		if c.Store.Path == "" {
			return fmt.Errorf("BADGER_PATH is required for the badger store")
		}
		return nil
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMemory, StoreBadger, c.Store.Backend)
	}
}

func (c *Config) validateSentiment() error {
	switch c.Sentiment.Backend {
	case SentimentLexicon:
		return nil
	case SentimentHTTP:
		u, err := url.Parse(c.Sentiment.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("SENTIMENT_URL must be an absolute URL, got %q", c.Sentiment.URL)
		}
		if c.Sentiment.Timeout <= 0 {
			return fmt.Errorf("sentiment.timeout must be positive, got %v", c.Sentiment.Timeout)
		}
		return nil
	default:
		return fmt.Errorf("SENTIMENT_BACKEND must be %q or %q, got %q", SentimentLexicon, SentimentHTTP, c.Sentiment.Backend)
	}
}
