// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

// Package catalog defines the track catalog's record types, the canonical
// identifier normalizer and the sentinel errors shared by the dataset and
// recommendation layers.
//
// # Identifiers
//
// Source rows and caller queries carry identifiers in two encodings:
//
//	https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC
//	spotify:track:4uLU6hMCjMI75M1A2tKUQC
//
// ExtractID reduces both to the 22-character canonical id and rejects
// everything else. IDExpr is the same rule as a DuckDB expression, used when a
// whole source column is normalized at once.
//
// # Rows and records
//
// Row is the normalized flat-table record produced by ingestion. TrackRecord,
// ArtistAggregate and NeighborEntry are the index entries built from rows; all
// three carry a complete FeatureVector.
package catalog
