// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/dataset"
	"github.com/tomtom215/soundprint/internal/metrics"
)

// recommendParams are the knobs of one recommendation pass.
type recommendParams struct {
	k       int
	limit   int
	workers int
}

// recommend finds catalog tracks near the matched subset. Neighbor searches
// run in parallel but results are consumed in input order, nearest first, so
// the output is deterministic. Pairs already in the matched subset or already
// recommended are skipped and the list stops at limit items.
func recommend(ctx context.Context, b *dataset.Bundle, matched []MatchResult, p recommendParams) ([]RecommendationItem, error) {
	out := make([]RecommendationItem, 0, p.limit)
	if len(matched) == 0 {
		return out, catalog.ErrNoMatches
	}

	excluded := make(map[catalog.PairKey]struct{}, len(matched))
	queries := make([][]float64, 0, len(matched))
	for i := range matched {
		excluded[matched[i].Key()] = struct{}{}
		if matched[i].Features != nil {
			queries = append(queries, matched[i].Features.Slice())
		}
	}

	start := time.Now()
	results, err := b.Nearest(ctx, queries, p.k, p.workers)
	metrics.NeighborQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("neighbor search: %w", err)
	}

	seen := make(map[catalog.PairKey]struct{}, p.limit)
	for _, hits := range results {
		for _, hit := range hits {
			entry := b.Entry(hit.Index)
			key := entry.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			if _, mine := excluded[key]; mine {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, RecommendationItem{
				TrackID:       entry.TrackID,
				TrackName:     entry.TrackName,
				ArtistName:    entry.ArtistName,
				FeatureVector: entry.Features,
			})
			if len(out) >= p.limit {
				return out, nil
			}
		}
	}
	return out, nil
}
