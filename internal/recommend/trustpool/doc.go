// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package trustpool holds the versioned trust pool snapshot.
//
// The pool is rebuilt from the record store by a single writer and swapped in
// atomically, so recommendation requests always read one complete generation.
// Feedback mutations call Invalidate; the debounced worker in
// supervisor/services turns bursts of invalidations into one Recompute.
package trustpool
