// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

// Package middleware holds the HTTP middleware Soundprint adds on top of the
// chi and go-chi ecosystem:
//
//   - RequestID: assigns or propagates X-Request-ID and puts it in the
//     request context for logging.Ctx
//   - PrometheusMetrics: request counts and latency labeled by chi route
//     pattern
//   - Compression: gzip via klauspost/compress/gzhttp for larger bodies
//
// All middleware uses the func(http.Handler) http.Handler shape so it plugs
// into chi.Router.Use directly.
package middleware
