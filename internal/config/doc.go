// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

/*
Package config provides centralized configuration management for Soundprint.

Configuration is loaded with Koanf in three layers, each overriding the one
before it:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or
    /etc/soundprint/config.yaml
 3. Environment variables, through an explicit name-to-path table

Only mapped environment variables are read, so unrelated variables cannot
change the configuration. Comma-separated values such as CORS_ORIGINS are
split into slices.

# Sections

  - server: listen address, timeouts, environment
  - dataset: source CSV, bundle directory, flat-table caches, readiness and
    build timeouts, refresh interval, DuckDB limits
  - recommend: batch size, recommendation cap, neighbors per query
  - spotify: music-service API base URL, top-tracks window, throttling and
    response cache
  - users: listener profile store
  - security: CORS, inbound rate limiting, remote rebuild and admin token
  - logging: level, format, caller

# Example

	dataset:
	  source_path: /data/tracks.csv
	  bundle_dir: /data/precomputed
	  refresh_interval: 10m
	spotify:
	  time_range: short_term

# Environment Variables

Frequently used variables (the full table is envMappings in koanf.go):

	HTTP_PORT                  listen port (default: 8080)
	DATASET_SOURCE_PATH        raw track CSV (required to exist at startup)
	DATASET_BUNDLE_DIR         precomputed bundle directory
	DATASET_REFRESH_INTERVAL   source freshness check period, 0 disables
	DUCKDB_MAX_MEMORY          ingestion engine memory limit
	RECOMMEND_MAX_RECOMMENDATIONS
	                           cap on the recommendation list (default: 25)
	SPOTIFY_ENABLED            register the /api/v1/me routes
	USERS_ENABLED              record listener profiles in BadgerDB
	CORS_ORIGINS               comma-separated allowed origins
	ALLOW_REMOTE_REBUILD       enable POST /api/v1/dataset/rebuild
	ADMIN_TOKEN                secret for the rebuild endpoint
	LOG_LEVEL, LOG_FORMAT      see package logging

Durations use Go syntax (30s, 10m, 2h).

# Validation

Validate runs after loading and returns the first problem found, naming the
environment variable that controls the offending setting.
*/
package config
