// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/soundprint/internal/models"
	"github.com/tomtom215/soundprint/internal/recommend"
)

// Operation names label taste requests in metrics.
const (
	opMatch           = "match"
	opStats           = "stats"
	opRecommendations = "recommendations"
	opInsights        = "insights"
)

// renderReport picks the part of a report an operation returns.
func renderReport(operation string, report *recommend.Report) interface{} {
	switch operation {
	case opMatch:
		return report.Matches
	case opStats:
		return report.Stats
	case opRecommendations:
		return models.RecommendationsEnvelope{
			Recommended: report.Recommendations,
			Count:       len(report.Recommendations),
		}
	default:
		return report
	}
}

// TasteMatch resolves each posted track against the catalog.
func (h *Handler) TasteMatch(w http.ResponseWriter, r *http.Request) {
	h.handleTaste(w, r, opMatch)
}

// TasteStats summarizes the audio features of the matched tracks.
func (h *Handler) TasteStats(w http.ResponseWriter, r *http.Request) {
	h.handleTaste(w, r, opStats)
}

// TasteRecommendations returns catalog tracks close to the matched tracks.
func (h *Handler) TasteRecommendations(w http.ResponseWriter, r *http.Request) {
	h.handleTaste(w, r, opRecommendations)
}

// TasteInsights returns the full report with its narrative insight.
func (h *Handler) TasteInsights(w http.ResponseWriter, r *http.Request) {
	h.handleTaste(w, r, opInsights)
}

func (h *Handler) handleTaste(w http.ResponseWriter, r *http.Request, operation string) {
	start := time.Now()

	var req models.TasteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	report, err := h.engine.Analyze(r.Context(), operation, toQueries(req.Tracks))
	if err != nil {
		respondPipelineError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, renderReport(operation, report), models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
		Generation:  report.Generation,
	})
}

func toQueries(tracks []models.TrackQuery) []recommend.Query {
	queries := make([]recommend.Query, len(tracks))
	for i, t := range tracks {
		queries[i] = recommend.Query{
			TrackID:    t.TrackID,
			TrackName:  t.TrackName,
			ArtistID:   t.ArtistID,
			ArtistName: t.ArtistName,
		}
	}
	return queries
}
