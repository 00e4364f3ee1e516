// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"context"

	"github.com/tomtom215/soundprint/internal/catalog"
)

// MatchType classifies how a query track was resolved against the catalog.
type MatchType string

const (
	// MatchExact means the track id was found in the track index.
	MatchExact MatchType = "exact"
	// MatchArtist means only the artist was found; features are the artist mean.
	MatchArtist MatchType = "artist"
	// MatchNone means neither the track nor the artist was found.
	MatchNone MatchType = "unmatched"
)

// Query is one entry of a caller's top-tracks list. Ids may be canonical,
// compact URIs or URLs.
type Query struct {
	TrackID    string `json:"track_id" validate:"required,max=256"`
	TrackName  string `json:"track_name" validate:"max=512"`
	ArtistID   string `json:"artist_id" validate:"max=256"`
	ArtistName string `json:"artist_name" validate:"max=512"`
}

// MatchResult is the outcome for one query, in input order.
type MatchResult struct {
	TrackName  string                 `json:"track_name"`
	ArtistName string                 `json:"artist_name"`
	MatchType  MatchType              `json:"match_type"`
	Features   *catalog.FeatureVector `json:"features"`
}

// Matched reports whether the result carries features.
func (m *MatchResult) Matched() bool {
	return m.MatchType != MatchNone
}

// Key returns the (track name, artist name) pair of the result.
func (m *MatchResult) Key() catalog.PairKey {
	return catalog.PairKey{TrackName: m.TrackName, ArtistName: m.ArtistName}
}

// StatsTrack is one matched track with rounded features.
type StatsTrack struct {
	TrackName    string    `json:"track_name"`
	ArtistName   string    `json:"artist_name"`
	MatchType    MatchType `json:"match_type"`
	Tempo        int       `json:"tempo"`
	Energy       float64   `json:"energy"`
	Valence      float64   `json:"valence"`
	Danceability float64   `json:"danceability"`
}

// TasteStats summarizes the matched subset.
type TasteStats struct {
	MatchedCount    int          `json:"matched_count"`
	TotalCount      int          `json:"total_count"`
	TempoAvg        float64      `json:"tempo_avg"`
	TempoRange      [2]int       `json:"tempo_range"`
	EnergyAvg       float64      `json:"energy_avg"`
	ValenceAvg      float64      `json:"valence_avg"`
	DanceabilityAvg float64      `json:"danceability_avg"`
	Tracks          []StatsTrack `json:"tracks"`
}

// RecommendationItem is one recommended catalog track.
type RecommendationItem struct {
	TrackID    string `json:"track_id"`
	TrackName  string `json:"track_name"`
	ArtistName string `json:"artist_name"`
	catalog.FeatureVector
}

// Insight is a short narrative description of a listener's taste.
type Insight struct {
	Headline     string   `json:"headline"`
	Observations []string `json:"observations"`
	Suggestion   string   `json:"suggestion"`
	CTA          string   `json:"cta"`
}

// TopTrack is one entry returned by a TopTracksSource.
type TopTrack = Query

// TopTracksSource fetches a listener's top tracks from the music service.
type TopTracksSource interface {
	TopTracks(ctx context.Context, token string) ([]TopTrack, error)
}
