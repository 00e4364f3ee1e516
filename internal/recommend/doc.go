// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

/*
Package recommend turns a listener's top tracks into taste statistics,
nearest-neighbor recommendations and a short narrative insight.

# Pipeline

	queries --Match--> all results, matched subset
	matched --ComputeStats--> TasteStats
	matched --recommend--> []RecommendationItem (<= MaxRecommendations)
	stats + recommendations --GenerateInsight--> Insight

Matching tries the track id first, then falls back to the artist's mean
feature vector, and otherwise reports the track as unmatched. Input order is
preserved everywhere.

Statistics round each track's features for display before averaging (tempo to
an integer, the other features to two decimals). The averages are computed
over the rounded values.

Recommendations query the bundle's neighbor index for each matched vector in
parallel, then walk the results in input order, nearest first, skipping pairs
already recommended or already in the matched subset. Equidistant neighbors
are ordered by catalog position.

# Concurrency

Engine is stateless apart from configuration. A request captures one bundle
through EnsureReady and uses it for every step, so a concurrent rebuild never
mixes two datasets in one response.
*/
package recommend
