// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

// Package validation validates request bodies with go-playground/validator.
//
// One validator instance is shared process-wide; it caches struct metadata
// on first use. Field paths in errors use JSON names, so a bad entry in a
// taste request reports as "tracks[3].track_id" rather than the Go path.
//
//	var req models.TasteRequest
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondAPIError(w, http.StatusBadRequest, verr.ToAPIError())
//	    return
//	}
//
// Custom tags:
//
//	notblank  string is not empty after trimming whitespace
package validation
