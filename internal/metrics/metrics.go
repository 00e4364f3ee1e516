// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dataset Metrics
	DatasetState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_state",
			Help: "Dataset coordinator state (0=unloaded, 1=loading, 2=ready)",
		},
	)

	DatasetBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_builds_total",
			Help: "Total number of dataset builds",
		},
		[]string{"result"}, // success, failure
	)

	DatasetBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_build_duration_seconds",
			Help:    "Duration of dataset builds in seconds, including cache tier loads",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	DatasetGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_generation",
			Help: "Publish counter of the currently served dataset bundle",
		},
	)

	DatasetCatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_catalog_entries",
			Help: "Number of entries in the served neighbor catalog",
		},
	)

	DatasetTierLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_tier_loads_total",
			Help: "Total number of dataset loads by cache tier",
		},
		[]string{"tier"}, // bundle, columnar, rowcache, source
	)

	IngestRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_ingest_rows_dropped_total",
			Help: "Total number of source rows dropped during ingestion",
		},
		[]string{"reason"}, // bad_identifier, missing_feature
	)

	CacheWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_cache_write_failures_total",
			Help: "Total number of failed cache tier writes",
		},
		[]string{"tier"},
	)

	DatasetStaleChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_stale_checks_total",
			Help: "Total number of source freshness checks",
		},
		[]string{"result"}, // fresh, stale, error, unloaded
	)

	// Taste Pipeline Metrics
	TasteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taste_requests_total",
			Help: "Total number of taste pipeline requests",
		},
		[]string{"operation", "outcome"}, // outcome: ok, no_matches, not_ready, error
	)

	MatchResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taste_match_results_total",
			Help: "Total number of query tracks by match type",
		},
		[]string{"match_type"}, // exact, artist, unmatched
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taste_recommendations_returned",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 15, 20, 25},
		},
	)

	NeighborQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taste_neighbor_query_duration_seconds",
			Help:    "Duration of batched nearest-neighbor queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Music Service Client Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "music_service_requests_total",
			Help: "Total number of music service API requests",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "music_service_request_duration_seconds",
			Help:    "Music service API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or capacity)",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// User Store Metrics
	UsersRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_recorded_total",
			Help: "Total number of user profile record calls",
		},
		[]string{"result"}, // created, existing, error
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTasteRequest counts one taste pipeline request.
func RecordTasteRequest(operation, outcome string) {
	TasteRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordMatches counts query tracks per match type.
func RecordMatches(exact, artist, unmatched int) {
	MatchResults.WithLabelValues("exact").Add(float64(exact))
	MatchResults.WithLabelValues("artist").Add(float64(artist))
	MatchResults.WithLabelValues("unmatched").Add(float64(unmatched))
}

// RecordUpstreamRequest records a music service API call.
func RecordUpstreamRequest(endpoint, status string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(endpoint, status).Inc()
	UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
