// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"math"

	"github.com/tomtom215/soundprint/internal/catalog"
)

// ComputeStats summarizes the matched subset. Each track's features are
// rounded for display first and the averages are taken over the rounded
// values. An empty subset yields an empty payload and catalog.ErrNoMatches.
func ComputeStats(matched []MatchResult, totalCount int) (TasteStats, error) {
	stats := TasteStats{
		MatchedCount: len(matched),
		TotalCount:   totalCount,
		Tracks:       make([]StatsTrack, 0, len(matched)),
	}
	if len(matched) == 0 {
		return stats, catalog.ErrNoMatches
	}

	var tempoSum, energySum, valenceSum, danceSum float64
	lo, hi := math.MaxInt, math.MinInt

	for i := range matched {
		m := &matched[i]
		if m.Features == nil {
			continue
		}
		st := StatsTrack{
			TrackName:    m.TrackName,
			ArtistName:   m.ArtistName,
			MatchType:    m.MatchType,
			Tempo:        int(math.RoundToEven(m.Features.Tempo)),
			Energy:       round2(m.Features.Energy),
			Valence:      round2(m.Features.Valence),
			Danceability: round2(m.Features.Danceability),
		}
		stats.Tracks = append(stats.Tracks, st)

		tempoSum += float64(st.Tempo)
		energySum += st.Energy
		valenceSum += st.Valence
		danceSum += st.Danceability
		lo = min(lo, st.Tempo)
		hi = max(hi, st.Tempo)
	}

	n := float64(len(stats.Tracks))
	if n == 0 {
		stats.MatchedCount = 0
		return stats, catalog.ErrNoMatches
	}
	stats.MatchedCount = len(stats.Tracks)
	stats.TempoAvg = round1(tempoSum / n)
	stats.TempoRange = [2]int{lo, hi}
	stats.EnergyAvg = round2(energySum / n)
	stats.ValenceAvg = round2(valenceSum / n)
	stats.DanceabilityAvg = round2(danceSum / n)
	return stats, nil
}

// Display rounding is half to even at the given scale, so 0.125 shows as
// 0.12 and a tempo of 120.5 as 120.
func round1(x float64) float64 { return math.RoundToEven(x*10) / 10 }

func round2(x float64) float64 { return math.RoundToEven(x*100) / 100 }
