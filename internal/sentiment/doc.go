// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package sentiment computes comment polarity in [-1, 1].
//
// Lexicon is the built-in offline scorer. Client calls an external HTTP
// service behind a gobreaker circuit breaker and an x/time/rate limiter;
// wrap it in Fallback to degrade to the lexicon while the service is down.
// Instrumented adds metrics and clamping around any Scorer.
package sentiment
