// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/marquee/internal/cache"
)

// Router wraps the watermill router with the middleware stack used for
// feedback consumers.
type Router struct {
	router  *message.Router
	dedup   *Deduplicator
	running atomic.Bool
}

// Deduplicator implements middleware.ExpiringKeyRepository on a bounded LRU.
type Deduplicator struct {
	keys *cache.LRU
}

// NewDeduplicator creates a deduplicator remembering up to capacity keys for ttl.
func NewDeduplicator(ttl time.Duration, capacity int) *Deduplicator {
	return &Deduplicator{keys: cache.NewLRU(capacity, ttl)}
}

// IsDuplicate records key and reports whether it was already seen.
func (d *Deduplicator) IsDuplicate(_ context.Context, key string) (bool, error) {
	return d.keys.Seen(key), nil
}

// Len counts remembered keys.
func (d *Deduplicator) Len() int {
	return d.keys.Len()
}

// Close drops every remembered key.
func (d *Deduplicator) Close() {
	d.keys.Clear()
}

// NewRouter creates a router with, outer to inner: panic recovery, retry
// with exponential backoff and message ID deduplication.
func NewRouter(cfg Config, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{router: wmRouter}

	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     10 * cfg.RetryInitialInterval,
		Multiplier:      2,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	if cfg.DeduplicationTTL > 0 {
		r.dedup = NewDeduplicator(cfg.DeduplicationTTL, cfg.DeduplicationCapacity)
		dedup := middleware.Deduplicator{
			KeyFactory: func(msg *message.Message) (string, error) {
				return msg.UUID, nil
			},
			Repository: r.dedup,
		}
		wmRouter.AddMiddleware(dedup.Middleware)
	}

	return r, nil
}

// AddConsumerHandler registers a handler that consumes topic without
// publishing replies.
func (r *Router) AddConsumerHandler(name, topic string, sub message.Subscriber, fn message.NoPublishHandlerFunc) {
	r.router.AddConsumerHandler(name, topic, sub, fn)
}

// Run starts the router and blocks until ctx is cancelled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel closed once all handlers are subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether Run is active and every handler has subscribed.
// It is false before the first subscription and after the router stops.
func (r *Router) IsRunning() bool {
	if !r.running.Load() {
		return false
	}
	select {
	case <-r.router.Running():
		return true
	default:
		return false
	}
}

// Close stops the router, waiting up to CloseTimeout for in-flight messages.
func (r *Router) Close() error {
	if r.dedup != nil {
		r.dedup.Close()
	}
	return r.router.Close()
}
