// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/soundprint/internal/catalog"
)

func statsOf(t *testing.T, tracks ...StatsTrack) *TasteStats {
	t.Helper()
	matched := make([]MatchResult, len(tracks))
	for i, tr := range tracks {
		matched[i] = matchedWith(tr.TrackName, catalog.FeatureVector{
			Tempo: float64(tr.Tempo), Energy: tr.Energy, Valence: tr.Valence, Danceability: tr.Danceability,
		})
		matched[i].ArtistName = tr.ArtistName
	}
	s, err := ComputeStats(matched, 50)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	return &s
}

func st(name, artist string, tempo int, energy, valence, dance float64) StatsTrack {
	return StatsTrack{TrackName: name, ArtistName: artist, Tempo: tempo, Energy: energy, Valence: valence, Danceability: dance}
}

func TestGenerateInsight_Headlines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stats  *TasteStats
		want   headlineKind
		remark string
	}{
		{
			name:  "tight tempo",
			stats: statsOf(t, st("a", "A", 118, 0.3, 0.2, 0.2), st("b", "B", 122, 0.3, 0.2, 0.2), st("c", "C", 125, 0.3, 0.2, 0.2)),
			want:  headlineTightTempo,
		},
		{
			name:  "wide tempo",
			stats: statsOf(t, st("a", "A", 70, 0.3, 0.2, 0.2), st("b", "B", 100, 0.3, 0.2, 0.2), st("c", "C", 160, 0.3, 0.2, 0.2)),
			want:  headlineWideTempo,
		},
		{
			name:  "high energy with two tracks",
			stats: statsOf(t, st("a", "A", 100, 0.9, 0.2, 0.2), st("b", "B", 140, 0.8, 0.2, 0.2)),
			want:  headlineHighEnergy,
		},
		{
			name:  "upbeat",
			stats: statsOf(t, st("a", "A", 100, 0.3, 0.9, 0.2), st("b", "B", 140, 0.3, 0.1, 0.2)),
			want:  headlineUpbeat,
		},
		{
			name:  "default",
			stats: statsOf(t, st("a", "A", 100, 0.3, 0.1, 0.2), st("b", "B", 140, 0.3, 0.1, 0.2)),
			want:  headlineDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := shapeOf(tt.stats)
			got, headline := chooseHeadline(newPhraser(tt.stats), &s)
			if got != tt.want {
				t.Errorf("headline kind = %v (%q), want %v", got, headline, tt.want)
			}
			if headline == "" {
				t.Error("empty headline")
			}
		})
	}
}

func TestGenerateInsight_Deterministic(t *testing.T) {
	t.Parallel()

	tracks := make([]StatsTrack, 0, 12)
	for i := 0; i < 12; i++ {
		tracks = append(tracks, st(fmt.Sprintf("Song %d", i), []string{"Ana", "Ana", "Ana", "Bo"}[i%4], 80+i*8, 0.75, 0.65, 0.72))
	}
	stats := statsOf(t, tracks...)
	recs := []RecommendationItem{
		{TrackName: "R1", FeatureVector: catalog.FeatureVector{Tempo: 120}},
		{TrackName: "R2", FeatureVector: catalog.FeatureVector{Tempo: 126}},
	}

	first, ok := GenerateInsight(stats, recs)
	if !ok {
		t.Fatal("GenerateInsight returned false")
	}
	for i := 0; i < 20; i++ {
		again, _ := GenerateInsight(stats, recs)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}

	if n := len(first.Observations); n < minObservations || n > maxObservations {
		t.Errorf("observations = %d, want 2..4", n)
	}
	for _, text := range append([]string{first.Headline, first.Suggestion, first.CTA}, first.Observations...) {
		if strings.ContainsAny(text, "—’“”") {
			t.Errorf("non-ASCII punctuation in %q", text)
		}
	}
}

func TestGenerateInsight_Fallbacks(t *testing.T) {
	t.Parallel()

	if _, ok := GenerateInsight(&TasteStats{}, nil); ok {
		t.Error("insight for empty stats")
	}
	if _, ok := GenerateInsight(nil, nil); ok {
		t.Error("insight for nil stats")
	}

	// One unremarkable track leaves the observation pool empty.
	stats := statsOf(t, st("solo", "Solo", 100, 0.3, 0.1, 0.2))
	in, ok := GenerateInsight(stats, nil)
	if !ok {
		t.Fatal("GenerateInsight returned false")
	}
	if len(in.Observations) != 1 || !strings.Contains(in.Observations[0], "100 BPM") {
		t.Errorf("observations = %v, want the single fallback line", in.Observations)
	}
	if in.CTA != "Load your recommendations to see picks that match this profile." {
		t.Errorf("CTA = %q", in.CTA)
	}
}

func TestShapeOf_TopArtistTieKeepsFirstSeen(t *testing.T) {
	t.Parallel()

	stats := statsOf(t,
		st("a", "First", 100, 0.3, 0.1, 0.2),
		st("b", "Second", 100, 0.3, 0.1, 0.2),
		st("c", "Second", 100, 0.3, 0.1, 0.2),
		st("d", "First", 100, 0.3, 0.1, 0.2),
	)
	s := shapeOf(stats)
	if s.topArtist != "First" || s.topArtistCount != 2 {
		t.Errorf("top artist = %q x%d, want First x2", s.topArtist, s.topArtistCount)
	}
}

func TestSuggestion_TempoZones(t *testing.T) {
	t.Parallel()

	stats := statsOf(t, st("a", "A", 100, 0.3, 0.1, 0.2), st("b", "B", 110, 0.3, 0.1, 0.2))

	inZone := []string{
		"We kept the picks in your wheelhouse. Same kind of groove, so they should feel familiar but fresh.",
		"The list below matches your tempo zone and should slot in nicely.",
		"These sit in the same BPM neighborhood as what you already love.",
	}
	recs := []RecommendationItem{
		{FeatureVector: catalog.FeatureVector{Tempo: 104}},
		{FeatureVector: catalog.FeatureVector{Tempo: 108}},
	}
	got := suggestion(newPhraser(stats), stats, recs)
	found := false
	for _, s := range inZone {
		found = found || s == got
	}
	if !found {
		t.Errorf("suggestion = %q, want an in-zone phrasing", got)
	}
}
