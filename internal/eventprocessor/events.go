// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current event schema version.
const SchemaVersion = 1

// Topics carrying feedback mutations.
const (
	TopicRating  = "feedback.rating"
	TopicComment = "feedback.comment"
)

// Kind is the feedback entity an event is about.
type Kind string

const (
	KindRating  Kind = "rating"
	KindComment Kind = "comment"
)

// Operation is the mutation that happened.
type Operation string

const (
	OpCreated Operation = "created"
	OpUpdated Operation = "updated"
	OpDeleted Operation = "deleted"
)

// FeedbackEvent announces that a rating or comment changed. Consumers treat
// it as a signal; the record store remains the source of truth.
type FeedbackEvent struct {
	SchemaVersion int       `json:"schema_version,omitempty"`
	EventID       string    `json:"event_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Kind          Kind      `json:"kind"`
	Operation     Operation `json:"operation"`
	UserID        int       `json:"user_id"`
	ItemID        int       `json:"item_id"`
	CommentID     int       `json:"comment_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewFeedbackEvent creates an event with a unique ID, timestamp and schema version.
func NewFeedbackEvent(kind Kind, op Operation, userID, itemID int) *FeedbackEvent {
	return &FeedbackEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Kind:          kind,
		Operation:     op,
		UserID:        userID,
		ItemID:        itemID,
		Timestamp:     time.Now().UTC(),
	}
}

// Topic returns the topic the event is published on.
func (e *FeedbackEvent) Topic() string {
	if e.Kind == KindComment {
		return TopicComment
	}
	return TopicRating
}

// Validate checks required fields.
func (e *FeedbackEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	switch e.Kind {
	case KindRating, KindComment:
	default:
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", e.Kind)}
	}
	switch e.Operation {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return &ValidationError{Field: "operation", Message: fmt.Sprintf("unknown operation %q", e.Operation)}
	}
	if e.ItemID <= 0 {
		return &ValidationError{Field: "item_id", Message: "must be positive"}
	}
	if e.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Message: "required"}
	}
	return nil
}

// ValidationError describes an invalid event.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid event: " + e.Field + " " + e.Message
}
