// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package store is the record store for movies, ratings and comments.
//
// Two implementations are provided: BadgerStore persists records in an
// embedded BadgerDB (values encoded with goccy/go-json) and MemoryStore keeps
// them in maps for tests and one-shot CLI runs. Both satisfy Store, which is
// also the trustpool.Source and the collaborative scorer's item lookup.
//
// Badger key layout:
//
//	item:<id>                  -> recommend.Item
//	rating:<item>:<user>       -> recommend.Rating
//	comment:<id>               -> recommend.Comment
//	comment_item:<item>:<id>   -> (index, empty value)
package store
