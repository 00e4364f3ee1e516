// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/neighbors"
)

// Tier identifies where a bundle was loaded from.
type Tier int

const (
	TierNone Tier = iota
	// TierBundle is the precomputed artifact set.
	TierBundle
	// TierColumnar is the Parquet flat-table cache.
	TierColumnar
	// TierRowCache is the zstd JSON-lines flat-table cache.
	TierRowCache
	// TierSource is the raw CSV.
	TierSource
)

func (t Tier) String() string {
	switch t {
	case TierBundle:
		return "bundle"
	case TierColumnar:
		return "columnar"
	case TierRowCache:
		return "rowcache"
	case TierSource:
		return "source"
	default:
		return "none"
	}
}

// Bundle is the immutable set of indexes a request needs: the track and artist
// lookups, the neighbor catalog and the fitted neighbor index aligned with it.
// A Bundle is never modified after it is published, so readers share it
// without locking.
type Bundle struct {
	tracks  map[string]catalog.TrackRecord
	artists map[string]catalog.ArtistAggregate
	entries []catalog.NeighborEntry
	index   neighbors.Index

	sourceMod  time.Time
	tier       Tier
	builtAt    time.Time
	generation uint64
}

// BundleMeta describes a bundle's provenance.
type BundleMeta struct {
	SourceModTime time.Time
	Tier          Tier
	BuiltAt       time.Time
}

// NewBundle assembles a bundle from prebuilt parts. The index must have been
// fitted on the entries' feature vectors, in order.
func NewBundle(
	tracks map[string]catalog.TrackRecord,
	artists map[string]catalog.ArtistAggregate,
	entries []catalog.NeighborEntry,
	index neighbors.Index,
	meta BundleMeta,
) (*Bundle, error) {
	if index.Len() != len(entries) {
		return nil, fmt.Errorf("neighbor index has %d vectors but catalog has %d entries", index.Len(), len(entries))
	}
	if meta.BuiltAt.IsZero() {
		meta.BuiltAt = time.Now()
	}
	return &Bundle{
		tracks:    tracks,
		artists:   artists,
		entries:   entries,
		index:     index,
		sourceMod: meta.SourceModTime,
		tier:      meta.Tier,
		builtAt:   meta.BuiltAt,
	}, nil
}

// Track looks up a track by canonical id.
func (b *Bundle) Track(id string) (catalog.TrackRecord, bool) {
	t, ok := b.tracks[id]
	return t, ok
}

// Artist looks up an artist aggregate by canonical id.
func (b *Bundle) Artist(id string) (catalog.ArtistAggregate, bool) {
	a, ok := b.artists[id]
	return a, ok
}

// Entry returns the i-th neighbor catalog entry.
func (b *Bundle) Entry(i int) catalog.NeighborEntry {
	return b.entries[i]
}

// Nearest runs a batched k-nearest-neighbor search over the catalog.
func (b *Bundle) Nearest(ctx context.Context, queries [][]float64, k, workers int) ([][]neighbors.Neighbor, error) {
	return neighbors.QueryBatch(ctx, b.index, queries, k, workers)
}

// SourceModTime is the source modification time the bundle was built from.
func (b *Bundle) SourceModTime() time.Time { return b.sourceMod }

// Tier reports where the bundle was loaded from.
func (b *Bundle) Tier() Tier { return b.tier }

// Generation is the coordinator's publish counter for this bundle, starting
// at 1. Zero means the bundle was never published.
func (b *Bundle) Generation() uint64 { return b.generation }

// Summary describes a bundle for status reporting.
type Summary struct {
	Tracks        int       `json:"tracks"`
	Artists       int       `json:"artists"`
	CatalogSize   int       `json:"catalog_size"`
	Tier          string    `json:"tier"`
	SourceModTime time.Time `json:"source_mtime"`
	BuiltAt       time.Time `json:"built_at"`
	Generation    uint64    `json:"generation"`
}

// Summary returns counts and provenance.
func (b *Bundle) Summary() Summary {
	return Summary{
		Tracks:        len(b.tracks),
		Artists:       len(b.artists),
		CatalogSize:   len(b.entries),
		Tier:          b.tier.String(),
		SourceModTime: b.sourceMod,
		BuiltAt:       b.builtAt,
		Generation:    b.generation,
	}
}
