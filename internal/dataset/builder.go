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

// cancelCheckEvery is how many rows the builder processes between context
// checks.
const cancelCheckEvery = 1 << 16

// IndexFactory returns a new unfitted neighbor index.
type IndexFactory func() neighbors.Index

// Build derives a bundle from the normalized flat table.
//
//   - Artist aggregates average every row of the artist. Acousticness and
//     liveness are averaged over the rows that have them, falling back to the
//     imputation defaults when none do.
//   - The track index keeps the first row per track id, with missing features
//     imputed.
//   - The neighbor catalog keeps the first row per (track name, artist name)
//     pair and then drops it if any feature is missing. A pair whose first row
//     is incomplete is therefore absent even when a later row is complete.
func Build(ctx context.Context, rows []catalog.Row, newIndex IndexFactory, meta BundleMeta) (*Bundle, error) {
	if len(rows) == 0 {
		return nil, catalog.ErrEmptyDataset
	}
	if newIndex == nil {
		newIndex = func() neighbors.Index { return neighbors.NewBruteForce() }
	}

	type artistAcc struct {
		sum   [catalog.NumFeatures]float64
		count [catalog.NumFeatures]int
	}
	accs := make(map[string]*artistAcc)
	tracks := make(map[string]catalog.TrackRecord)
	seenPairs := make(map[catalog.PairKey]struct{})
	var entries []catalog.NeighborEntry

	for i := range rows {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		r := &rows[i]

		acc := accs[r.ArtistID]
		if acc == nil {
			acc = &artistAcc{}
			accs[r.ArtistID] = acc
		}
		raw, _ := r.Features()
		vals := raw.Array()
		present := [catalog.NumFeatures]bool{true, true, true, true, r.Acousticness != nil, r.Liveness != nil}
		for f := range vals {
			if present[f] {
				acc.sum[f] += vals[f]
				acc.count[f]++
			}
		}

		if _, ok := tracks[r.TrackID]; !ok {
			tracks[r.TrackID] = catalog.TrackRecord{
				TrackID:    r.TrackID,
				TrackName:  r.TrackName,
				ArtistName: r.ArtistName,
				Features:   r.ImputedFeatures(),
			}
		}

		key := r.Key()
		if _, ok := seenPairs[key]; ok {
			continue
		}
		seenPairs[key] = struct{}{}
		if v, complete := r.Features(); complete {
			entries = append(entries, catalog.NeighborEntry{
				TrackID:    r.TrackID,
				TrackName:  r.TrackName,
				ArtistName: r.ArtistName,
				Features:   v,
			})
		}
	}

	defaults := [catalog.NumFeatures]float64{4: catalog.DefaultAcousticness, 5: catalog.DefaultLiveness}
	artists := make(map[string]catalog.ArtistAggregate, len(accs))
	for id, acc := range accs {
		var mean [catalog.NumFeatures]float64
		for f := range mean {
			if acc.count[f] == 0 {
				mean[f] = defaults[f]
				continue
			}
			mean[f] = acc.sum[f] / float64(acc.count[f])
		}
		artists[id] = catalog.ArtistAggregate{ArtistID: id, Features: catalog.VectorFromArray(mean)}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := make([][]float64, len(entries))
	for i := range entries {
		vectors[i] = entries[i].Features.Slice()
	}
	index := newIndex()
	if err := index.Fit(vectors); err != nil {
		return nil, fmt.Errorf("failed to fit neighbor index: %w", err)
	}

	if meta.BuiltAt.IsZero() {
		meta.BuiltAt = time.Now()
	}
	return NewBundle(tracks, artists, entries, index, meta)
}
