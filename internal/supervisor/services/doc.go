// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package services provides suture.Service wrappers for Marquee components.

Each wrapper turns a component lifecycle into suture's context-aware
Serve(ctx) error and implements fmt.Stringer so suture can name it in logs.

  - HTTPServerService: ListenAndServe plus graceful Shutdown
  - TrustPoolService: startup computation and debounced recomputes of the
    trust pool on invalidation signals
  - EventRouterService: the watermill router that turns feedback events
    into cache invalidations

Return values follow suture: ctx.Err() on shutdown, an error to be
restarted, or an error wrapping suture.ErrDoNotRestart to stay down.
*/
package services
