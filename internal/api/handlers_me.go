// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/soundprint/internal/logging"
	"github.com/tomtom215/soundprint/internal/models"
	"github.com/tomtom215/soundprint/internal/spotify"
	"github.com/tomtom215/soundprint/internal/users"
)

// Me returns the caller's music-service profile and records it.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	profile, ctx, err := h.identify(r.Context(), token)
	if err != nil {
		respondPipelineError(w, r, err)
		return
	}
	created := h.recordListener(ctx, profile)

	respondSuccess(w, http.StatusOK, models.ListenerProfile{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		FirstSeen:   created,
	}, models.Metadata{})
}

// MeStats is TasteStats over the caller's top tracks.
func (h *Handler) MeStats(w http.ResponseWriter, r *http.Request) {
	h.handleMeTaste(w, r, opStats)
}

// MeRecommendations is TasteRecommendations over the caller's top tracks.
func (h *Handler) MeRecommendations(w http.ResponseWriter, r *http.Request) {
	h.handleMeTaste(w, r, opRecommendations)
}

// MeInsights is TasteInsights over the caller's top tracks.
func (h *Handler) MeInsights(w http.ResponseWriter, r *http.Request) {
	h.handleMeTaste(w, r, opInsights)
}

func (h *Handler) handleMeTaste(w http.ResponseWriter, r *http.Request, operation string) {
	start := time.Now()
	token := bearerToken(r)

	profile, ctx, err := h.identify(r.Context(), token)
	if err != nil {
		respondPipelineError(w, r, err)
		return
	}
	h.recordListener(ctx, profile)

	report, err := h.engine.AnalyzeTopTracks(ctx, "me_"+operation, h.music, token)
	if err != nil {
		respondPipelineError(w, r.WithContext(ctx), err)
		return
	}

	respondSuccess(w, http.StatusOK, renderReport(operation, report), models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
		Generation:  report.Generation,
	})
}

// identify fetches the caller's profile and returns a context that logs the
// listener id.
func (h *Handler) identify(ctx context.Context, token string) (spotify.Profile, context.Context, error) {
	profile, err := h.music.Profile(ctx, token)
	if err != nil {
		return spotify.Profile{}, ctx, err
	}
	return profile, logging.ContextWithUserID(ctx, profile.ID), nil
}

// recordListener stores the profile if unseen. Store failures are logged and
// do not fail the request.
func (h *Handler) recordListener(ctx context.Context, p spotify.Profile) bool {
	if h.users == nil {
		return false
	}
	created, err := h.users.Record(ctx, users.User{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to record listener")
		return false
	}
	if created {
		logging.Ctx(ctx).Info().Msg("New listener recorded")
	}
	return created
}
