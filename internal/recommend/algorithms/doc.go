// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package algorithms implements the algorithmic parts of the recommender.
//
//   - TitleIndex: TF-IDF over unigrams and bigrams of normalized titles,
//     cosine similarity search with partial top-k selection
//   - ComputeTrustPool: the pure trust pool recomputation
//   - Collaborative: fan-versus-general occurrence scoring
//
// # Thread Safety
//
// TitleIndex is safe for concurrent use: readers work on a snapshot of the
// append-only row slice while ingestion appends complete rows under the
// write lock. ComputeTrustPool is a pure function. Collaborative keeps no
// mutable state.
package algorithms

import "github.com/tomtom215/marquee/internal/recommend"

// Compile-time interface checks.
var (
	_ recommend.TitleIndex          = (*TitleIndex)(nil)
	_ recommend.CollaborativeScorer = (*Collaborative)(nil)
)
