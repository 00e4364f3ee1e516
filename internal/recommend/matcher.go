// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/dataset"
)

// Match resolves each query against the bundle, preserving input order. The
// second return value is the matched subset in the same relative order.
func Match(b *dataset.Bundle, queries []Query) (all, matched []MatchResult) {
	all = make([]MatchResult, len(queries))
	matched = make([]MatchResult, 0, len(queries))

	for i := range queries {
		all[i] = matchOne(b, &queries[i])
		if all[i].Matched() {
			matched = append(matched, all[i])
		}
	}
	return all, matched
}

// matchOne tries the exact track id, then the artist id. Each id is looked
// up verbatim first; compact URIs and URLs are normalized only when the raw
// value is not a catalog key.
func matchOne(b *dataset.Bundle, q *Query) MatchResult {
	if t, found := lookup(q.TrackID, catalog.KindTrack, b.Track); found {
		f := t.Features
		return MatchResult{
			TrackName:  t.TrackName,
			ArtistName: t.ArtistName,
			MatchType:  MatchExact,
			Features:   &f,
		}
	}

	if a, found := lookup(q.ArtistID, catalog.KindArtist, b.Artist); found {
		f := a.Features
		return MatchResult{
			TrackName:  q.TrackName,
			ArtistName: q.ArtistName,
			MatchType:  MatchArtist,
			Features:   &f,
		}
	}

	return MatchResult{
		TrackName:  q.TrackName,
		ArtistName: q.ArtistName,
		MatchType:  MatchNone,
	}
}

func lookup[T any](raw string, kind catalog.Kind, get func(string) (T, bool)) (T, bool) {
	var zero T
	if raw == "" {
		return zero, false
	}
	if v, ok := get(raw); ok {
		return v, true
	}
	if id, ok := catalog.ExtractID(raw, kind); ok && id != raw {
		return get(id)
	}
	return zero, false
}

// countMatches tallies results per match type.
func countMatches(all []MatchResult) (exact, artist, unmatched int) {
	for i := range all {
		switch all[i].MatchType {
		case MatchExact:
			exact++
		case MatchArtist:
			artist++
		default:
			unmatched++
		}
	}
	return exact, artist, unmatched
}
