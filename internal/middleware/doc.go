// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides HTTP middleware for the Marquee API.

All middleware uses the chi signature func(http.Handler) http.Handler.

  - RequestID: assigns X-Request-ID, a correlation ID and a request logger
  - PrometheusMetrics: request count, latency and in-flight gauge labelled by route pattern
  - PerformanceMonitor: sliding window of latencies reported by /api/v1/status

Route labels come from chi's RoutePattern, so these middlewares must run
inside a chi router for per-route grouping; outside one every request is
labelled "unmatched".
*/
package middleware
