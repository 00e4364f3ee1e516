// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/soundprint/internal/models"
)

func tracks(n int) []models.TrackQuery {
	out := make([]models.TrackQuery, n)
	for i := range out {
		out[i] = models.TrackQuery{TrackID: "4uLU6hMCjMI75M1A2tKUQC", TrackName: "T", ArtistName: "A"}
	}
	return out
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return one instance")
	}
}

func TestValidateTasteRequest(t *testing.T) {
	t.Parallel()

	blank := tracks(3)
	blank[2].TrackID = "   "

	long := tracks(1)
	long[0].TrackName = strings.Repeat("n", 513)

	tests := []struct {
		name      string
		req       models.TasteRequest
		wantField string
		wantMsg   string
	}{
		{"valid", models.TasteRequest{Tracks: tracks(50)}, "", ""},
		{"missing tracks", models.TasteRequest{}, "tracks", "tracks is required"},
		{"empty tracks", models.TasteRequest{Tracks: []models.TrackQuery{}}, "tracks", "at least 1 items"},
		{"too many tracks", models.TasteRequest{Tracks: tracks(51)}, "tracks", "at most 50 items"},
		{"blank id", models.TasteRequest{Tracks: blank}, "tracks[2].track_id", "must not be blank"},
		{"long name", models.TasteRequest{Tracks: long}, "tracks[0].track_name", "at most 512 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			f := verr.Fields()[0]
			if f.Field != tt.wantField || !strings.Contains(f.Message, tt.wantMsg) {
				t.Errorf("field %q message %q, want %q containing %q", f.Field, f.Message, tt.wantField, tt.wantMsg)
			}

			apiErr := verr.ToAPIError()
			if apiErr.Code != models.ErrCodeValidation || apiErr.Details["field"] != tt.wantField {
				t.Errorf("ToAPIError() = %+v", apiErr)
			}
		})
	}
}

func TestMultipleErrors(t *testing.T) {
	t.Parallel()

	req := models.TasteRequest{Tracks: []models.TrackQuery{{TrackID: ""}, {TrackID: "ok", ArtistID: strings.Repeat("a", 300)}}}
	verr := ValidateStruct(&req)
	if verr == nil || len(verr.Fields()) != 2 {
		t.Fatalf("ValidateStruct() = %v, want 2 errors", verr)
	}

	apiErr := verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("details = %+v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "tracks[0].track_id is required") ||
		!strings.Contains(apiErr.Message, "tracks[1].artist_id") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestFieldPath(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"TasteRequest.tracks[0].track_id": "tracks[0].track_id",
		"TasteRequest.tracks":             "tracks",
		"tracks":                          "tracks",
	}
	for in, want := range tests {
		if got := fieldPath(in); got != want {
			t.Errorf("fieldPath(%q) = %q, want %q", in, got, want)
		}
	}
}
