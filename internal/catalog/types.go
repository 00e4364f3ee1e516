// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package catalog

import "math"

// NumFeatures is the dimensionality of a FeatureVector.
const NumFeatures = 6

// Default imputation values for the two nullable features.
const (
	DefaultAcousticness = 0.5
	DefaultLiveness     = 0.2
)

// FeatureNames lists the feature columns in vector order.
var FeatureNames = [NumFeatures]string{
	"tempo",
	"energy",
	"valence",
	"danceability",
	"acousticness",
	"liveness",
}

// FeatureVector holds the six audio features of a track.
type FeatureVector struct {
	Tempo        float64 `json:"tempo"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
	Liveness     float64 `json:"liveness"`
}

// Array returns the features in FeatureNames order.
func (v FeatureVector) Array() [NumFeatures]float64 {
	return [NumFeatures]float64{v.Tempo, v.Energy, v.Valence, v.Danceability, v.Acousticness, v.Liveness}
}

// Slice returns the features as a freshly allocated slice.
func (v FeatureVector) Slice() []float64 {
	a := v.Array()
	return a[:]
}

// Finite reports whether every feature is a finite number.
func (v FeatureVector) Finite() bool {
	for _, f := range v.Array() {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// VectorFromArray is the inverse of FeatureVector.Array.
func VectorFromArray(a [NumFeatures]float64) FeatureVector {
	return FeatureVector{
		Tempo:        a[0],
		Energy:       a[1],
		Valence:      a[2],
		Danceability: a[3],
		Acousticness: a[4],
		Liveness:     a[5],
	}
}

// TrackRecord is the track index entry, keyed by canonical track id.
type TrackRecord struct {
	TrackID    string        `json:"track_id"`
	TrackName  string        `json:"track_name"`
	ArtistName string        `json:"artist_name"`
	Features   FeatureVector `json:"features"`
}

// ArtistAggregate is the mean feature vector of every catalog row by one artist.
type ArtistAggregate struct {
	ArtistID string        `json:"artist_id"`
	Features FeatureVector `json:"features"`
}

// PairKey identifies a track by display names. The neighbor catalog and the
// recommendation exclusion sets are keyed by it rather than by id.
type PairKey struct {
	TrackName  string
	ArtistName string
}

// NeighborEntry is one row of the nearest-neighbor catalog.
type NeighborEntry struct {
	TrackID    string        `json:"track_id"`
	TrackName  string        `json:"track_name"`
	ArtistName string        `json:"artist_name"`
	Features   FeatureVector `json:"features"`
}

// Key returns the (track name, artist name) pair of the entry.
func (e NeighborEntry) Key() PairKey {
	return PairKey{TrackName: e.TrackName, ArtistName: e.ArtistName}
}

// Row is one record of the normalized flat table.
//
// Identifiers are already canonical and the four required features are
// finite; rows failing either check never leave the ingestion step.
// Acousticness and liveness may be absent.
type Row struct {
	TrackID      string   `json:"track_id"`
	ArtistID     string   `json:"artist_id"`
	TrackName    string   `json:"track_name"`
	ArtistName   string   `json:"artist_name"`
	Tempo        float64  `json:"tempo"`
	Energy       float64  `json:"energy"`
	Valence      float64  `json:"valence"`
	Danceability float64  `json:"danceability"`
	Acousticness *float64 `json:"acousticness"`
	Liveness     *float64 `json:"liveness"`
}

// Complete reports whether all six features are present.
func (r *Row) Complete() bool {
	return r.Acousticness != nil && r.Liveness != nil
}

// Features returns the row's vector and whether it was complete.
// Missing nullable features are zero in the returned vector.
func (r *Row) Features() (FeatureVector, bool) {
	v := FeatureVector{
		Tempo:        r.Tempo,
		Energy:       r.Energy,
		Valence:      r.Valence,
		Danceability: r.Danceability,
	}
	if r.Acousticness != nil {
		v.Acousticness = *r.Acousticness
	}
	if r.Liveness != nil {
		v.Liveness = *r.Liveness
	}
	return v, r.Complete()
}

// ImputedFeatures returns the row's vector with missing acousticness and
// liveness replaced by DefaultAcousticness and DefaultLiveness.
func (r *Row) ImputedFeatures() FeatureVector {
	v, _ := r.Features()
	if r.Acousticness == nil {
		v.Acousticness = DefaultAcousticness
	}
	if r.Liveness == nil {
		v.Liveness = DefaultLiveness
	}
	return v
}

// Key returns the (track name, artist name) pair of the row.
func (r *Row) Key() PairKey {
	return PairKey{TrackName: r.TrackName, ArtistName: r.ArtistName}
}

// Float returns a pointer to f, for populating optional Row fields.
func Float(f float64) *float64 {
	return &f
}
