// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend implements the trust-weighted hybrid movie recommender.
//
// # Architecture
//
// A recommendation request flows through four parts:
//
//   - Title Index: TF-IDF vectors over unigrams and bigrams of normalized
//     titles, searched by cosine similarity (algorithms.TitleIndex)
//   - Trust Pool: the ratings eligible to drive collaborative filtering,
//     gated by each user's average comment sentiment (algorithms.ComputeTrustPool,
//     trustpool.Manager)
//   - Collaborative Scorer: items loved disproportionately by the trusted fans
//     of a seed item (algorithms.Collaborative)
//   - Orchestrator: the Engine in this package
//
// The Engine searches the title index, then asks the collaborative scorer
// about each candidate in similarity order and returns the first non-empty
// answer. When no candidate has trusted fans the title candidates are
// returned as they are.
//
// # Trust Pool Consistency
//
// The pool is a versioned immutable snapshot. Mutations only invalidate it;
// a single background worker recomputes the whole pool from the record store
// and publishes it atomically. Reads are eventually consistent: a rating
// written just now may not influence the next request.
//
// # Usage
//
//	index := algorithms.NewTitleIndex(cfg.Index)
//	index.Build(items)
//	pool := trustpool.NewManager(store, cfg.Thresholds, cfg.Pool, logger)
//	scorer := algorithms.NewCollaborative(cfg.Thresholds, cfg.Limits, store)
//
//	engine, err := recommend.NewEngine(cfg, index, scorer, pool, logger)
//	resp, err := engine.Recommend(ctx, recommend.Request{Query: "Toy Story"})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Title index ingestion takes an
// exclusive lock only to append fully computed rows.
package recommend
