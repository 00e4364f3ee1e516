// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package models

import "time"

// MaxTasteTracks is the largest track list a taste request may carry.
const MaxTasteTracks = 50

// TrackQuery is one entry of a caller's top-tracks list. TrackID and
// ArtistID may be bare ids, open.spotify.com URLs or spotify:type:id URIs.
type TrackQuery struct {
	TrackID    string `json:"track_id" validate:"required,notblank,max=256"`
	TrackName  string `json:"track_name" validate:"max=512"`
	ArtistID   string `json:"artist_id" validate:"max=256"`
	ArtistName string `json:"artist_name" validate:"max=512"`
}

// TasteRequest is the body of every POST /api/v1/taste/* endpoint.
type TasteRequest struct {
	Tracks []TrackQuery `json:"tracks" validate:"required,min=1,max=50,dive"`
}

// RecommendationsEnvelope keys the recommendation list the way dashboards
// already consume it.
type RecommendationsEnvelope struct {
	Recommended interface{} `json:"recommended"`
	Count       int         `json:"count"`
}

// DatasetStatus is the body of GET /api/v1/dataset/status.
type DatasetStatus struct {
	State         string     `json:"state"`
	Tier          string     `json:"tier,omitempty"`
	Generation    uint64     `json:"generation"`
	Tracks        int        `json:"tracks"`
	Artists       int        `json:"artists"`
	SourcePath    string     `json:"source_path"`
	SourceModTime *time.Time `json:"source_mod_time,omitempty"`
	Builds        uint64     `json:"builds"`
	LastError     string     `json:"last_error,omitempty"`
}

// RebuildResponse is the body of POST /api/v1/dataset/rebuild.
type RebuildResponse struct {
	Started bool   `json:"started"`
	State   string `json:"state"`
}

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status       string            `json:"status"` // ok, degraded, unavailable
	Version      string            `json:"version"`
	Uptime       float64           `json:"uptime_seconds"`
	DatasetState string            `json:"dataset_state"`
	Components   map[string]string `json:"components,omitempty"`
}

// ListenerProfile is the body of GET /api/v1/me.
type ListenerProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	FirstSeen   bool   `json:"first_seen"`
}
