// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
)

// Notifier receives feedback change signals. *recommend.Engine implements it.
type Notifier interface {
	NotifyRatingChanged()
	NotifyCommentChanged()
}

// InvalidationHandler turns feedback events into trust pool invalidations.
type InvalidationHandler struct {
	notifier Notifier
	logger   zerolog.Logger
}

// NewInvalidationHandler creates a handler forwarding to notifier.
func NewInvalidationHandler(notifier Notifier, logger zerolog.Logger) *InvalidationHandler {
	return &InvalidationHandler{
		notifier: notifier,
		logger:   logger.With().Str("component", "invalidation-handler").Logger(),
	}
}

// Handle processes one message. Malformed payloads are acknowledged and
// dropped since a retry cannot fix them.
func (h *InvalidationHandler) Handle(msg *message.Message) error {
	event, err := DeserializeEvent(msg.Payload)
	if err == nil {
		err = event.Validate()
	}
	if err != nil {
		topic := msg.Metadata.Get("kind")
		h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed feedback event")
		metrics.RecordEventConsumed(topic, err)
		return nil
	}

	switch event.Kind {
	case KindComment:
		h.notifier.NotifyCommentChanged()
	default:
		h.notifier.NotifyRatingChanged()
	}
	metrics.RecordEventConsumed(event.Topic(), nil)

	h.logger.Debug().
		Str("event_id", event.EventID).
		Str("correlation_id", event.CorrelationID).
		Str("kind", string(event.Kind)).
		Str("operation", string(event.Operation)).
		Int("item_id", event.ItemID).
		Msg("Feedback event consumed")
	return nil
}

// Register subscribes the handler to both feedback topics.
func (h *InvalidationHandler) Register(r *Router, sub message.Subscriber) {
	r.AddConsumerHandler("invalidate-on-rating", TopicRating, sub, h.Handle)
	r.AddConsumerHandler("invalidate-on-comment", TopicComment, sub, h.Handle)
}
