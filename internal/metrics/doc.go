// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
are exposed at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

Dataset:
  - dataset_state: coordinator state (gauge, 0=unloaded 1=loading 2=ready)
  - dataset_builds_total: builds by result (counter)
  - dataset_build_duration_seconds: build latency (histogram)
  - dataset_generation: publish counter of the served bundle (gauge)
  - dataset_catalog_entries: neighbor catalog size (gauge)
  - dataset_tier_loads_total: loads by cache tier (counter)
  - dataset_ingest_rows_dropped_total: dropped source rows by reason (counter)
  - dataset_cache_write_failures_total: failed cache writes by tier (counter)
  - dataset_stale_checks_total: freshness checks by result (counter)

Taste pipeline:
  - taste_requests_total: requests by operation and outcome (counter)
  - taste_match_results_total: query tracks by match type (counter)
  - taste_recommendations_returned: recommendations per request (histogram)
  - taste_neighbor_query_duration_seconds: batched neighbor search latency (histogram)

HTTP:
  - api_requests_total, api_request_duration_seconds, api_active_requests

Music service client:
  - music_service_requests_total, music_service_request_duration_seconds
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total
  - cache_hits_total, cache_misses_total, cache_evictions_total

# Usage

	metrics.RecordAPIRequest("POST", "/api/v1/taste/stats", "200", elapsed)
	metrics.DatasetBuilds.WithLabelValues("success").Inc()

# Thread Safety

All metric operations are thread-safe.
*/
package metrics
