// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package catalog

import (
	"strings"
	"testing"
)

const sampleID = "4uLU6hMCjMI75M1A2tKUQC"

func TestExtractID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		kind   Kind
		want   string
		wantOK bool
	}{
		{"url", "https://open.spotify.com/track/" + sampleID, KindTrack, sampleID, true},
		{"url trailing slashes", "https://open.spotify.com/track/" + sampleID + "//", KindTrack, sampleID, true},
		{"uri", "spotify:track:" + sampleID, KindTrack, sampleID, true},
		{"artist uri", "spotify:artist:" + sampleID, KindArtist, sampleID, true},
		{"bare id", sampleID, KindTrack, sampleID, true},
		{"surrounding whitespace", "  spotify:track:" + sampleID + " ", KindTrack, sampleID, true},
		{"wrong kind prefix", "spotify:artist:" + sampleID, KindTrack, "", false},
		{"too short", "spotify:track:abc", KindTrack, "", false},
		{"too long", "spotify:track:" + sampleID + "X", KindTrack, "", false},
		{"empty", "", KindTrack, "", false},
		{"url without id", "https://open.spotify.com/", KindTrack, "", false},
		{"nan text", "nan", KindTrack, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractID(tt.raw, tt.kind)
			if ok != tt.wantOK {
				t.Fatalf("ExtractID(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractID_URLLengthIsCheckedOnLastSegment(t *testing.T) {
	t.Parallel()

	// Query strings are not stripped, so the segment is too long.
	raw := "https://open.spotify.com/track/" + sampleID + "?si=abc"
	if _, ok := ExtractID(raw, KindTrack); ok {
		t.Errorf("ExtractID(%q) accepted an id with a query string", raw)
	}
}

func TestExtractIDs_Aligned(t *testing.T) {
	t.Parallel()

	in := []string{"spotify:track:" + sampleID, "bogus", "https://open.spotify.com/track/" + sampleID}
	got := ExtractIDs(in, KindTrack)
	if len(got) != len(in) {
		t.Fatalf("len = %d, want %d", len(got), len(in))
	}
	if got[0] != sampleID || got[1] != "" || got[2] != sampleID {
		t.Errorf("ExtractIDs = %q", got)
	}
}

func TestIDExpr(t *testing.T) {
	t.Parallel()

	expr := IDExpr(`"track_uri"`, KindTrack)
	for _, want := range []string{
		`trim(CAST("track_uri" AS VARCHAR))`,
		"'spotify.com'",
		"'spotify:track:'",
		"= 22",
	} {
		if !strings.Contains(expr, want) {
			t.Errorf("IDExpr missing %q in %s", want, expr)
		}
	}
}

func TestRowImputedFeatures(t *testing.T) {
	t.Parallel()

	r := Row{Tempo: 120, Energy: 0.5, Valence: 0.4, Danceability: 0.6}
	if r.Complete() {
		t.Fatal("row without acousticness/liveness reported complete")
	}
	v := r.ImputedFeatures()
	if v.Acousticness != DefaultAcousticness || v.Liveness != DefaultLiveness {
		t.Errorf("imputed = %+v", v)
	}

	r.Acousticness = Float(0.1)
	r.Liveness = Float(0.9)
	v, ok := r.Features()
	if !ok || v.Acousticness != 0.1 || v.Liveness != 0.9 {
		t.Errorf("Features() = %+v, %v", v, ok)
	}
}

func TestFeatureVectorArrayRoundTrip(t *testing.T) {
	t.Parallel()

	v := FeatureVector{Tempo: 1, Energy: 2, Valence: 3, Danceability: 4, Acousticness: 5, Liveness: 6}
	if got := VectorFromArray(v.Array()); got != v {
		t.Errorf("round trip = %+v, want %+v", got, v)
	}
}
