// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/eventprocessor"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/sentiment"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/validation"
)

// Catalog is the part of the recommendation engine feedback writes reach.
// *recommend.Engine implements it.
type Catalog interface {
	IngestItem(item recommend.Item) (bool, error)
	NotifyRatingChanged()
	NotifyCommentChanged()
}

// Publisher announces feedback mutations. *eventprocessor.Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, event *eventprocessor.FeedbackEvent) error
}

// Consumer reports whether published events are being consumed.
// *eventprocessor.Router implements it.
type Consumer interface {
	IsRunning() bool
}

// Service applies rating and comment mutations to the record store and
// signals the trust pool that it is stale.
type Service struct {
	store     store.Store
	scorer    sentiment.Scorer
	catalog   Catalog
	publisher Publisher
	consumer  Consumer
	logger    zerolog.Logger
}

// NewService creates a feedback service. publisher may be nil, in which case
// the catalog is notified directly.
func NewService(st store.Store, scorer sentiment.Scorer, catalog Catalog, publisher Publisher, logger zerolog.Logger) (*Service, error) {
	if st == nil {
		return nil, errors.New("feedback: store is required")
	}
	if scorer == nil {
		return nil, errors.New("feedback: sentiment scorer is required")
	}
	if catalog == nil {
		return nil, errors.New("feedback: catalog is required")
	}
	return &Service{
		store:     st,
		scorer:    scorer,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger.With().Str("component", "feedback").Logger(),
	}, nil
}

// SetConsumer gates publishing on c: while c is not running, mutations
// notify the catalog directly because nothing would consume the event.
// Without a consumer every successful publish is trusted.
func (s *Service) SetConsumer(c Consumer) {
	s.consumer = c
}

func (s *Service) consuming() bool {
	return s.consumer == nil || s.consumer.IsRunning()
}

// AddMovie stores a movie and makes it searchable. It reports whether the
// movie was new to the store.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (s *Service) AddMovie(ctx context.Context, item recommend.Item) (bool, error) {
	if verr := validation.ValidateStruct(item); verr != nil {
		return false, verr
	}
	item = item.WithNormalizedTitle()

	created, err := s.store.PutItem(ctx, item)
	if err != nil {
		return false, fmt.Errorf("store movie %d: %w", item.ID, err)
	}
	if _, err := s.catalog.IngestItem(item); err != nil {
		return created, fmt.Errorf("index movie %d: %w", item.ID, err)
	}

	op := "updated"
	if created {
		op = "created"
	}
	metrics.RecordFeedbackMutation("movie", op)
	return created, nil
}

// GetMovie returns a stored movie.
func (s *Service) GetMovie(ctx context.Context, id int) (recommend.Item, error) {
	return s.store.GetItem(ctx, id)
}

// Rate records a user's rating for a movie, replacing any earlier one.
func (s *Service) Rate(ctx context.Context, r recommend.Rating) error {
	if verr := validation.ValidateStruct(r); verr != nil {
		return verr
	}
	if _, err := s.store.GetItem(ctx, r.ItemID); err != nil {
		return fmt.Errorf("rate movie %d: %w", r.ItemID, err)
	}

	op := eventprocessor.OpCreated
	if _, err := s.store.GetRating(ctx, r.UserID, r.ItemID); err == nil {
		op = eventprocessor.OpUpdated
	} else if !errors.Is(err, recommend.ErrNotFound) {
		return fmt.Errorf("load rating: %w", err)
	}

	if err := s.store.PutRating(ctx, r); err != nil {
		return fmt.Errorf("store rating: %w", err)
	}
	s.changed(ctx, eventprocessor.KindRating, op, r.UserID, r.ItemID, 0)
	return nil
}

// Unrate removes a user's rating for a movie.
func (s *Service) Unrate(ctx context.Context, userID, itemID int) error {
	if err := s.store.DeleteRating(ctx, userID, itemID); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	s.changed(ctx, eventprocessor.KindRating, eventprocessor.OpDeleted, userID, itemID, 0)
	return nil
}

// GetRating returns one user's rating for a movie.
func (s *Service) GetRating(ctx context.Context, userID, itemID int) (recommend.Rating, error) {
	return s.store.GetRating(ctx, userID, itemID)
}

// RatingStats returns the average rating and vote count of a movie.
func (s *Service) RatingStats(ctx context.Context, itemID int) (store.RatingStats, error) {
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return store.RatingStats{}, err
	}
	return store.Stats(ctx, s.store, itemID)
}

// AddComment stores a review and scores its sentiment.
func (s *Service) AddComment(ctx context.Context, userID, itemID int, content string) (recommend.Comment, error) {
	c := recommend.Comment{UserID: userID, ItemID: itemID, Content: strings.TrimSpace(content)}
	if verr := validation.ValidateStruct(c); verr != nil {
		return recommend.Comment{}, verr
	}
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return recommend.Comment{}, fmt.Errorf("comment on movie %d: %w", itemID, err)
	}

	polarity, err := s.polarity(ctx, c.Content)
	if err != nil {
		return recommend.Comment{}, err
	}
	c.Polarity = polarity

	stored, err := s.store.CreateComment(ctx, c)
	if err != nil {
		return recommend.Comment{}, fmt.Errorf("store comment: %w", err)
	}
	s.changed(ctx, eventprocessor.KindComment, eventprocessor.OpCreated, stored.UserID, stored.ItemID, stored.ID)
	return stored, nil
}

// EditComment replaces the content of a review. Polarity is rescored only
// when the content actually changed.
func (s *Service) EditComment(ctx context.Context, id int, content string) (recommend.Comment, error) {
	existing, err := s.store.GetComment(ctx, id)
	if err != nil {
		return recommend.Comment{}, err
	}

	updated := existing
	updated.Content = strings.TrimSpace(content)
	if verr := validation.ValidateStruct(updated); verr != nil {
		return recommend.Comment{}, verr
	}
	if updated.Content == existing.Content {
		return existing, nil
	}

	polarity, err := s.polarity(ctx, updated.Content)
	if err != nil {
		return recommend.Comment{}, err
	}
	updated.Polarity = polarity

	stored, err := s.store.UpdateComment(ctx, updated)
	if err != nil {
		return recommend.Comment{}, fmt.Errorf("update comment %d: %w", id, err)
	}
	s.changed(ctx, eventprocessor.KindComment, eventprocessor.OpUpdated, stored.UserID, stored.ItemID, stored.ID)
	return stored, nil
}

// DeleteComment removes a review.
func (s *Service) DeleteComment(ctx context.Context, id int) error {
	existing, err := s.store.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, id); err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	s.changed(ctx, eventprocessor.KindComment, eventprocessor.OpDeleted, existing.UserID, existing.ItemID, id)
	return nil
}

// ListComments returns the reviews of a movie ordered by ID.
func (s *Service) ListComments(ctx context.Context, itemID int) ([]recommend.Comment, error) {
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.store.ListCommentsByItem(ctx, itemID)
}

func (s *Service) polarity(ctx context.Context, text string) (float64, error) {
	p, err := s.scorer.Polarity(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("score sentiment: %w", err)
	}
	return sentiment.Clamp(p)
}

// changed records the mutation and makes sure the trust pool hears about it.
// The catalog is notified in-process unless the event was published while
// its consumer was running before and after the publish.
func (s *Service) changed(ctx context.Context, kind eventprocessor.Kind, op eventprocessor.Operation, userID, itemID, commentID int) {
	metrics.RecordFeedbackMutation(string(kind), string(op))

	if s.publisher != nil && s.consuming() {
		event := eventprocessor.NewFeedbackEvent(kind, op, userID, itemID)
		event.CommentID = commentID
		event.CorrelationID = logging.CorrelationIDFromContext(ctx)
		err := s.publisher.Publish(context.WithoutCancel(ctx), event)
		if err == nil && s.consuming() {
			return
		}
		if err != nil {
			s.logger.Warn().Err(err).
				Str("kind", string(kind)).
				Str("operation", string(op)).
				Int("item_id", itemID).
				Msg("Publishing feedback event failed, invalidating directly")
		}
	}

	if kind == eventprocessor.KindComment {
		s.catalog.NotifyCommentChanged()
	} else {
		s.catalog.NotifyRatingChanged()
	}
}
