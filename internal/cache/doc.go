// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

/*
Package cache provides a thread-safe in-memory TTL cache with LRU eviction.

It backs the music-service client's per-credential response cache, so repeat
/me requests within the TTL do not call the upstream API again.

# Usage

	c := cache.New[*spotify.Profile]("spotify_profile", 1000, 5*time.Minute)
	key := cache.SecretKey("profile", token)
	if p, ok := c.Get(key); ok {
	    return p, nil
	}
	c.Set(key, profile)

Keys derived from credentials should go through SecretKey, which hashes the
secret with SHA-256.

# Eviction

Entries expire after their TTL and are removed lazily on Get or in bulk by
Cleanup. When the cache is at capacity, Set evicts the least recently used
entry. Hits, misses and evictions are exported as cache_hits_total,
cache_misses_total and cache_evictions_total labeled with the cache name.
*/
package cache
