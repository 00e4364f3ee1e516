// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

/*
Package spotify is a small client for the music-service Web API.

Only two endpoints are used:

  - GET /me returns the caller's profile (id, display name, email)
  - GET /me/top/tracks returns the caller's most played tracks

The caller supplies an OAuth access token on every call. The client never
performs the authorization code exchange and never stores tokens; cached
responses are keyed by a SHA-256 digest of the token.

# Resilience

Outbound calls pass through three layers:

  - a token-bucket limiter (golang.org/x/time/rate) shared by all callers
  - a circuit breaker (sony/gobreaker) that opens after 60% of at least 10
    requests in a one-minute window fail, and probes again after two minutes
  - retry on HTTP 429 with exponential backoff, honoring Retry-After

A 401 from the service is reported as ErrUnauthorized and does not count
against the breaker: a bad token is the caller's problem, not an outage.

# Usage

	client, err := spotify.NewClient(&cfg.Spotify, logger)
	if err != nil {
	    return err
	}
	profile, err := client.Profile(ctx, token)
	tracks, err := client.TopTracks(ctx, token) // satisfies recommend.TopTracksSource
*/
package spotify
