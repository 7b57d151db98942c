// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"fmt"
	"time"
)

// Transports supported by the event bus.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// Config holds event bus configuration.
type Config struct {
	// Enabled routes feedback notifications through the bus. When false the
	// feedback service invalidates the trust pool directly.
	Enabled bool `koanf:"enabled"`

	// Transport is "gochannel" (in-process) or "nats" (external server).
	Transport string `koanf:"transport"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// QueueGroup load-balances NATS subscribers across instances.
	QueueGroup string `koanf:"queue_group"`

	// SubscribersCount is the number of concurrent NATS message processors.
	SubscribersCount int `koanf:"subscribers"`

	// MaxReconnects and ReconnectWait control NATS reconnection.
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	// OutputBuffer is the per-subscriber channel buffer of the gochannel transport.
	OutputBuffer int64 `koanf:"output_buffer"`

	// Router settings.
	CloseTimeout         time.Duration `koanf:"close_timeout"`
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	DeduplicationTTL     time.Duration `koanf:"dedup_ttl"`

	// DeduplicationCapacity bounds the remembered message IDs. The least
	// recently seen ID is forgotten first.
	DeduplicationCapacity int `koanf:"dedup_capacity"`

	// Publisher circuit breaker.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		Transport:               TransportGoChannel,
		URL:                     "nats://127.0.0.1:4222",
		QueueGroup:              "marquee",
		SubscribersCount:        1,
		MaxReconnects:           -1,
		ReconnectWait:           2 * time.Second,
		OutputBuffer:            256,
		CloseTimeout:            10 * time.Second,
		RetryMaxRetries:         3,
		RetryInitialInterval:    100 * time.Millisecond,
		DeduplicationTTL:        5 * time.Minute,
		DeduplicationCapacity:   10000,
		BreakerFailureThreshold: 5,
		BreakerTimeout:          30 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Transport {
	case TransportGoChannel:
	case TransportNATS:
		if c.URL == "" {
			return fmt.Errorf("events.url is required for the nats transport")
		}
		if c.SubscribersCount < 1 {
			return fmt.Errorf("events.subscribers must be positive, got %d", c.SubscribersCount)
		}
	default:
		return fmt.Errorf("events.transport must be %q or %q, got %q", TransportGoChannel, TransportNATS, c.Transport)
	}
	if c.RetryMaxRetries < 0 {
		return fmt.Errorf("events.retry_max_retries must be non-negative, got %d", c.RetryMaxRetries)
	}
	if c.DeduplicationCapacity < 0 {
		return fmt.Errorf("events.dedup_capacity must be non-negative, got %d", c.DeduplicationCapacity)
	}
	if c.CloseTimeout <= 0 {
		return fmt.Errorf("events.close_timeout must be positive, got %v", c.CloseTimeout)
	}
	return nil
}
