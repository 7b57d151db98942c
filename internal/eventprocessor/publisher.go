// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher serializes feedback events onto the bus behind a circuit breaker.
type Publisher struct {
	pub     message.Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
	closed  atomic.Bool
}

// NewPublisher wraps a watermill publisher. The caller keeps ownership of pub.
func NewPublisher(pub message.Publisher, cfg Config) *Publisher {
	return &Publisher{
		pub:     pub,
		breaker: newCircuitBreaker("event-publisher", cfg),
	}
}

// Publish sends the event on its topic. The correlation ID is taken from ctx
// when the event does not carry one.
func (p *Publisher) Publish(ctx context.Context, event *FeedbackEvent) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.CorrelationID == "" {
		event.CorrelationID = logging.CorrelationIDFromContext(ctx)
	}

	topic := event.Topic()
	data, err := SerializeEvent(event)
	if err != nil {
		metrics.RecordEventPublished(topic, err)
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("kind", string(event.Kind))
	msg.Metadata.Set("operation", string(event.Operation))
	msg.Metadata.Set("item_id", strconv.Itoa(event.ItemID))
	if event.CorrelationID != "" {
		msg.Metadata.Set("correlation_id", event.CorrelationID)
	}
	msg.SetContext(ctx)

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.pub.Publish(topic, msg)
	})
	metrics.RecordEventPublished(topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// State returns the circuit breaker state.
func (p *Publisher) State() gobreaker.State {
	return p.breaker.State()
}

// Close stops further publishing. The underlying publisher is closed by its owner.
func (p *Publisher) Close() {
	p.closed.Store(true)
}
