// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

// Command server runs the Soundprint HTTP API.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging
//  3. Dataset: DuckDB engine, cache tier resolver, load coordinator
//  4. Taste engine, music-service client, listener store
//  5. Supervisor tree: dataset service (data layer), HTTP server (api layer)
//
// The dataset source file must exist; the server exits otherwise. The first
// bundle loads in the background, and taste endpoints answer 503 with
// Retry-After until it is published.
//
//	DATASET_SOURCE_PATH=/data/tracks.csv DATASET_BUNDLE_DIR=/data/precomputed ./server
//
// SIGINT and SIGTERM stop the tree; in-flight requests get SHUTDOWN_TIMEOUT
// to finish.
package main
