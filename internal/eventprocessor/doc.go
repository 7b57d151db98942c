// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package eventprocessor carries feedback change notifications over Watermill.

Rating and comment mutations are published as FeedbackEvent messages on
the feedback.rating and feedback.comment topics. An InvalidationHandler
subscribed to both topics marks the trust pool stale, and the pool
manager recomputes it asynchronously. Events are signals only; the
record store stays the source of truth, so a lost event delays an
invalidation but never loses data.

# Transports

  - gochannel: in-process pub/sub, the default for a single instance
  - nats: core NATS through watermill-nats, for several instances sharing
    one store

# Router Middleware

Handlers run behind Recoverer, Retry with exponential backoff and a
Deduplicator keyed by message UUID. The Deduplicator is a bounded LRU:
at capacity the least recently seen UUID is forgotten.

# Usage

	bus, err := eventprocessor.NewBus(cfg, wmLogger)
	pub := eventprocessor.NewPublisher(bus.Publisher, cfg)
	router, err := eventprocessor.NewRouter(cfg, wmLogger)
	eventprocessor.NewInvalidationHandler(engine, logger).Register(router, bus.Subscriber)
	go router.Run(ctx)
*/
package eventprocessor
