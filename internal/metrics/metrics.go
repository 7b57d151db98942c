// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Recommendation outcomes and cache efficiency
// - Trust pool recomputation
// - Sentiment scorer calls and circuit breaker state
// - Mutation events and dataset imports

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_recommend_requests_total",
			Help: "Total recommendation requests by the ladder tier that answered",
		},
		[]string{"source"}, // "collaborative", "content", "none", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marquee_recommend_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marquee_recommend_collaborative_attempts",
			Help:    "Title candidates tried before a collaborative result was found",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		},
	)

	RecommendCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_recommend_cache_total",
			Help: "Recommendation cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	TitleIndexItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_title_index_items",
			Help: "Number of movies in the title index",
		},
	)

	// Trust Pool Metrics
	TrustPoolRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_trust_pool_recomputes_total",
			Help: "Trust pool recomputations by outcome",
		},
		[]string{"status"}, // "success", "error"
	)

	TrustPoolRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marquee_trust_pool_recompute_duration_seconds",
			Help:    "Duration of trust pool recomputation in seconds",
			Buckets: []float64{.001, .01, .1, .5, 1, 5, 15, 60},
		},
	)

	TrustPoolInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_trust_pool_invalidations_total",
			Help: "Mutation notifications received by the trust pool",
		},
	)

	TrustPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_trust_pool_ratings",
			Help: "Ratings included in the current trust pool",
		},
	)

	TrustPoolGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_trust_pool_generation",
			Help: "Generation of the current trust pool snapshot",
		},
	)

	// Sentiment Metrics
	SentimentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_sentiment_requests_total",
			Help: "Sentiment scorer calls by outcome",
		},
		[]string{"outcome"}, // "success", "error", "circuit_open", "rate_limited"
	)

	SentimentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marquee_sentiment_duration_seconds",
			Help:    "Sentiment scorer latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Feedback and Event Metrics
	FeedbackMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_feedback_mutations_total",
			Help: "Rating and comment mutations",
		},
		[]string{"entity", "operation"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_events_published_total",
			Help: "Mutation events published",
		},
		[]string{"topic", "status"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_events_consumed_total",
			Help: "Mutation events handled",
		},
		[]string{"topic", "status"},
	)

	// Dataset Metrics
	DatasetRecordsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_dataset_records_imported_total",
			Help: "Records loaded from CSV datasets",
		},
		[]string{"kind"}, // "movies", "ratings", "comments"
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records the outcome of one recommendation request.
// attempts is only observed for collaborative results.
func RecordRecommendation(source string, cacheHit bool, attempts int, duration time.Duration) {
	RecommendRequests.WithLabelValues(source).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if cacheHit {
		RecommendCacheResults.WithLabelValues("hit").Inc()
	} else {
		RecommendCacheResults.WithLabelValues("miss").Inc()
	}
	if source == "collaborative" && !cacheHit {
		RecommendAttempts.Observe(float64(attempts))
	}
}

// SetTitleIndexItems reports the current title index size.
func SetTitleIndexItems(n int) {
	TitleIndexItems.Set(float64(n))
}

// RecordTrustPoolRecompute records a recomputation and, on success, the new pool shape.
func RecordTrustPoolRecompute(duration time.Duration, generation uint64, size int, err error) {
	TrustPoolRecomputeDuration.Observe(duration.Seconds())
	if err != nil {
		TrustPoolRecomputes.WithLabelValues("error").Inc()
		return
	}
	TrustPoolRecomputes.WithLabelValues("success").Inc()
	TrustPoolGeneration.Set(float64(generation))
	TrustPoolSize.Set(float64(size))
}

// RecordSentiment records one sentiment scorer call.
func RecordSentiment(outcome string, duration time.Duration) {
	SentimentRequests.WithLabelValues(outcome).Inc()
	SentimentDuration.Observe(duration.Seconds())
}

// RecordFeedbackMutation records a rating or comment write.
func RecordFeedbackMutation(entity, operation string) {
	FeedbackMutations.WithLabelValues(entity, operation).Inc()
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(topic string, err error) {
	EventsPublished.WithLabelValues(topic, status(err)).Inc()
}

// RecordEventConsumed records a handled event.
func RecordEventConsumed(topic string, err error) {
	EventsConsumed.WithLabelValues(topic, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
