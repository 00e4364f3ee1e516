// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package catalog

import "errors"

var (
	// ErrDatasetNotReady is returned when the dataset did not become ready
	// within the caller's wait budget. Callers retry later.
	ErrDatasetNotReady = errors.New("dataset not ready")

	// ErrNoMatches means none of the queried tracks resolved against the
	// catalog. It is a valid outcome, not an engine failure.
	ErrNoMatches = errors.New("no tracks matched the catalog")

	// ErrMalformedIdentifier marks an identifier that does not normalize to a
	// canonical id. Ingestion drops such rows and only counts them.
	ErrMalformedIdentifier = errors.New("malformed catalog identifier")

	// ErrCacheWrite wraps failures to persist a cache tier. Never fatal.
	ErrCacheWrite = errors.New("cache write failed")

	// ErrSourceMissing means the raw source file does not exist.
	ErrSourceMissing = errors.New("source file missing")

	// ErrEmptyDataset means ingestion kept no rows.
	ErrEmptyDataset = errors.New("dataset contains no usable rows")
)
