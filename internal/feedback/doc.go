// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package feedback handles movie, rating and review writes.
//
// Every successful rating or comment mutation is followed by exactly one
// staleness signal for the trust pool, either as an event on the bus or,
// when no bus is configured or publishing fails, as a direct call on the
// recommendation engine. Review sentiment is scored when a comment is
// created and again only when its text changes.
package feedback
