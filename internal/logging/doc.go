// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package logging provides zerolog-based structured logging for Marquee.
//
// A single global logger is configured once at startup with Init and is then
// shared by every component. Components derive child loggers with
// WithComponent; request-scoped code uses Ctx to pick up the request and
// correlation IDs stored in the context by the API middleware.
//
// Libraries that expect log/slog (the supervisor tree and the watermill
// event router) are bridged onto the same stream through SlogHandler.
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(ctx).Debug().Int("k", k).Msg("Searching titles")
package logging
