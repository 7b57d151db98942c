// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP Metrics:
  - marquee_http_requests_total (method, endpoint, status)
  - marquee_http_request_duration_seconds (method, endpoint)
  - marquee_http_requests_in_flight

Recommendation Metrics:
  - marquee_recommend_requests_total (source)
  - marquee_recommend_duration_seconds
  - marquee_recommend_collaborative_attempts
  - marquee_recommend_cache_total (result)
  - marquee_title_index_items

Trust Pool Metrics:
  - marquee_trust_pool_recomputes_total (status)
  - marquee_trust_pool_recompute_duration_seconds
  - marquee_trust_pool_invalidations_total
  - marquee_trust_pool_ratings
  - marquee_trust_pool_generation

Sentiment Metrics:
  - marquee_sentiment_requests_total (outcome)
  - marquee_sentiment_duration_seconds
  - marquee_circuit_breaker_state (name)

Feedback, Event and Dataset Metrics:
  - marquee_feedback_mutations_total (entity, operation)
  - marquee_events_published_total (topic, status)
  - marquee_events_consumed_total (topic, status)
  - marquee_dataset_records_imported_total (kind)
*/
package metrics
