// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package spotify

// Profile is the subset of the /me response the server keeps.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

// topTracksResponse is the paging object returned by /me/top/tracks.
type topTracksResponse struct {
	Items []trackObject `json:"items"`
	Total int           `json:"total"`
	Limit int           `json:"limit"`
}

type trackObject struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	URI     string         `json:"uri"`
	Artists []artistObject `json:"artists"`
}

type artistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// errorResponse is the service's regular error object.
type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
