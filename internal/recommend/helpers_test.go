// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/dataset"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// id22 pads s into a valid 22-character identifier.
func id22(s string) string {
	return (s + "0000000000000000000000")[:catalog.IDLength]
}

func track(id, artistID, name, artist string, tempo, energy float64) catalog.Row {
	return catalog.Row{
		TrackID:      id22(id),
		ArtistID:     id22(artistID),
		TrackName:    name,
		ArtistName:   artist,
		Tempo:        tempo,
		Energy:       energy,
		Valence:      0.5,
		Danceability: 0.5,
		Acousticness: catalog.Float(0.5),
		Liveness:     catalog.Float(0.2),
	}
}

func buildBundle(t *testing.T, rows []catalog.Row) *dataset.Bundle {
	t.Helper()
	b, err := dataset.Build(context.Background(), rows, nil, dataset.BundleMeta{Tier: dataset.TierSource})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b
}

// ladder returns n catalog tracks by one artist with tempos 60, 62, 64...
func ladder(n int) []catalog.Row {
	rows := make([]catalog.Row, n)
	for i := range rows {
		rows[i] = track(fmt.Sprintf("t%03d", i), "ladder", fmt.Sprintf("Track %03d", i), "Ladder", 60+2*float64(i), 0.5)
	}
	return rows
}

// staticSource is a BundleSource that always returns the same outcome.
type staticSource struct {
	bundle *dataset.Bundle
	err    error
}

func (s *staticSource) EnsureReady(context.Context, time.Duration) (*dataset.Bundle, error) {
	return s.bundle, s.err
}

func (s *staticSource) Ready(context.Context, time.Duration) bool {
	return s.err == nil && s.bundle != nil
}
