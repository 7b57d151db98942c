// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/marquee/internal/recommend"
)

// ErrNotFound is returned when a record does not exist. It matches
// recommend.ErrNotFound under errors.Is.
var ErrNotFound = fmt.Errorf("store: %w", recommend.ErrNotFound)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// RatingStats summarizes the ratings of one movie.
type RatingStats struct {
	ItemID  int     `json:"item_id"`
	Average float64 `json:"average"`
	Votes   int     `json:"votes"`
}

// Store is the record store for movies, ratings and comments.
//
// Implementations must be safe for concurrent use. List methods return
// records in key order: items by id, ratings by (item, user), comments by id.
type Store interface {
	// PutItem inserts or replaces a movie and reports whether it was new.
	PutItem(ctx context.Context, item recommend.Item) (bool, error)
	// GetItem returns ErrNotFound when the movie does not exist.
	GetItem(ctx context.Context, id int) (recommend.Item, error)
	ListItems(ctx context.Context) ([]recommend.Item, error)

	// PutRating upserts the single rating a user holds for a movie.
	PutRating(ctx context.Context, r recommend.Rating) error
	GetRating(ctx context.Context, userID, itemID int) (recommend.Rating, error)
	DeleteRating(ctx context.Context, userID, itemID int) error
	ListRatings(ctx context.Context) ([]recommend.Rating, error)
	ListRatingsByItem(ctx context.Context, itemID int) ([]recommend.Rating, error)

	// CreateComment assigns an ID and timestamps and returns the stored comment.
	CreateComment(ctx context.Context, c recommend.Comment) (recommend.Comment, error)
	GetComment(ctx context.Context, id int) (recommend.Comment, error)
	// UpdateComment replaces content and polarity of an existing comment.
	UpdateComment(ctx context.Context, c recommend.Comment) (recommend.Comment, error)
	DeleteComment(ctx context.Context, id int) error
	ListComments(ctx context.Context) ([]recommend.Comment, error)
	ListCommentsByItem(ctx context.Context, itemID int) ([]recommend.Comment, error)

	Close() error
}

// Stats computes the average rating and vote count of itemID.
// A movie without ratings has zero votes and a zero average.
func Stats(ctx context.Context, s Store, itemID int) (RatingStats, error) {
	ratings, err := s.ListRatingsByItem(ctx, itemID)
	if err != nil {
		return RatingStats{}, err
	}
	return summarize(itemID, ratings), nil
}

func summarize(itemID int, ratings []recommend.Rating) RatingStats {
	st := RatingStats{ItemID: itemID, Votes: len(ratings)}
	if len(ratings) == 0 {
		return st
	}
	var sum float64
	for _, r := range ratings {
		sum += r.Score
	}
	st.Average = sum / float64(len(ratings))
	return st
}

// sortRatings orders ratings by (ItemID, UserID).
func sortRatings(rs []recommend.Rating) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].ItemID != rs[j].ItemID {
			return rs[i].ItemID < rs[j].ItemID
		}
		return rs[i].UserID < rs[j].UserID
	})
}
