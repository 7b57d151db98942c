// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"math"

	"github.com/tomtom215/marquee/internal/recommend"
)

// ComputeTrustPool derives the trust pool from the full set of ratings and
// comments. It is a pure function: Generation and ComputedAt are left for the
// caller to stamp.
//
// A rating is included when its user
//   - has no comments and the score is above th.RatingThreshold, or
//   - has comments whose average polarity is above th.TrustThreshold,
//     whatever the score.
//
// Both boundaries are exclusive. Any malformed record fails the whole
// computation with a *recommend.ComputationError.
//
//nolint:gocritic // hugeParam: th passed by value for immutability
func ComputeTrustPool(ratings []recommend.Rating, comments []recommend.Comment, th recommend.Thresholds) (*recommend.TrustPool, error) {
	for i := range ratings {
		if err := checkRating(&ratings[i]); err != nil {
			return nil, err
		}
	}

	trust, err := userTrust(comments)
	if err != nil {
		return nil, err
	}

	all := recommend.NewRatingIndex(ratings)

	included := make([]recommend.Rating, 0, all.Len())
	for _, r := range all.All() {
		if includeRating(r, trust, th) {
			included = append(included, r)
		}
	}

	return &recommend.TrustPool{
		Trusted: recommend.NewRatingIndex(included),
		All:     all,
		Trust:   trust,
	}, nil
}

// includeRating applies the asymmetric inclusion rule.
//
//nolint:gocritic // hugeParam: th passed by value for immutability
func includeRating(r recommend.Rating, trust map[int]recommend.UserTrust, th recommend.Thresholds) bool {
	ut, commented := trust[r.UserID]
	if !commented || !ut.HasComments {
		return r.Score > th.RatingThreshold
	}
	return ut.AveragePolarity > th.TrustThreshold
}

// userTrust averages comment polarity per user.
func userTrust(comments []recommend.Comment) (map[int]recommend.UserTrust, error) {
	sums := make(map[int]float64)
	counts := make(map[int]int)

	for i := range comments {
		c := &comments[i]
		if c.UserID <= 0 {
			return nil, recommend.NewComputationError("trustpool", "comment %d has user id %d", c.ID, c.UserID)
		}
		if c.ItemID <= 0 {
			return nil, recommend.NewComputationError("trustpool", "comment %d has item id %d", c.ID, c.ItemID)
		}
		if math.IsNaN(c.Polarity) || c.Polarity < -1 || c.Polarity > 1 {
			return nil, recommend.NewComputationError("trustpool", "comment %d polarity %v outside [-1, 1]", c.ID, c.Polarity)
		}
		sums[c.UserID] += c.Polarity
		counts[c.UserID]++
	}

	trust := make(map[int]recommend.UserTrust, len(counts))
	for userID, n := range counts {
		trust[userID] = recommend.UserTrust{
			UserID:          userID,
			AveragePolarity: sums[userID] / float64(n),
			HasComments:     true,
			CommentCount:    n,
		}
	}
	return trust, nil
}

// checkRating rejects ratings the pool cannot reason about.
func checkRating(r *recommend.Rating) error {
	if r.UserID <= 0 || r.ItemID <= 0 {
		return recommend.NewComputationError("trustpool", "rating (user %d, item %d) has a non-positive id", r.UserID, r.ItemID)
	}
	if math.IsNaN(r.Score) || r.Score < 0 || r.Score > 5 {
		return recommend.NewComputationError("trustpool", "rating (user %d, item %d) score %v outside [0, 5]", r.UserID, r.ItemID, r.Score)
	}
	return nil
}
