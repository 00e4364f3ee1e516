// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

/*
Package api serves Soundprint's HTTP interface on a chi router.

# Endpoints

Health (permissive rate limit):

	GET  /api/v1/health          overall status and component states
	GET  /api/v1/health/live     process liveness
	GET  /api/v1/health/ready    503 until a dataset bundle is published

Dataset:

	GET  /api/v1/dataset/status  lifecycle state, tier, counts, source mtime
	POST /api/v1/dataset/rebuild start a rebuild (admin token required)

Taste, for a caller-supplied track list:

	POST /api/v1/taste/match
	POST /api/v1/taste/stats
	POST /api/v1/taste/recommendations
	POST /api/v1/taste/insights

Taste, for the caller's own top tracks (Authorization: Bearer <music-service token>):

	GET  /api/v1/me
	GET  /api/v1/me/stats
	GET  /api/v1/me/recommendations
	GET  /api/v1/me/insights

Metrics:

	GET  /metrics

# Responses

Every JSON body is a models.APIResponse envelope. Taste responses carry the
dataset generation that served them in metadata.generation. A track list with
no catalog matches is a 200 with empty stats and recommendations. While the
dataset is still loading, taste endpoints answer 503 DATASET_NOT_READY with a
Retry-After header.

# Middleware

Global: request ID, real IP, panic recovery, CORS, gzip compression.
Per group: httprate limits, security headers, Prometheus request metrics.
*/
package api
