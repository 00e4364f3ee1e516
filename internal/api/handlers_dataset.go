// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/tomtom215/soundprint/internal/logging"
	"github.com/tomtom215/soundprint/internal/models"
)

// AdminTokenHeader carries the admin token for privileged endpoints. An
// "Authorization: Bearer" header is accepted too.
const AdminTokenHeader = "X-Admin-Token"

// DatasetStatus reports the dataset lifecycle.
func (h *Handler) DatasetStatus(w http.ResponseWriter, _ *http.Request) {
	status := models.DatasetStatus{
		State:  h.dataset.State().String(),
		Builds: uint64(max(h.dataset.Builds(), 0)),
	}
	if h.config != nil {
		status.SourcePath = h.config.Dataset.SourcePath
	}
	if err := h.dataset.LastError(); err != nil {
		status.LastError = err.Error()
	}

	var meta models.Metadata
	if b := h.dataset.Current(); b != nil {
		summary := b.Summary()
		status.Tier = summary.Tier
		status.Generation = summary.Generation
		status.Tracks = summary.Tracks
		status.Artists = summary.Artists
		if !summary.SourceModTime.IsZero() {
			mod := summary.SourceModTime
			status.SourceModTime = &mod
		}
		meta.Generation = summary.Generation
	}

	respondSuccess(w, http.StatusOK, status, meta)
}

// DatasetRebuild starts a background rebuild. The current bundle keeps
// serving until the new one is published; a failed rebuild leaves it in
// place.
func (h *Handler) DatasetRebuild(w http.ResponseWriter, r *http.Request) {
	if h.config == nil || !h.config.Security.AllowRemoteRebuild {
		respondError(w, r, http.StatusForbidden, models.ErrCodeForbidden, "Remote rebuilds are disabled", nil)
		return
	}
	if !h.validAdminToken(r) {
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Invalid admin token", nil)
		return
	}

	if !h.dataset.TriggerRebuild() {
		respondAPIError(w, http.StatusConflict, &models.APIError{
			Code:    models.ErrCodeRebuildInProgress,
			Message: "A dataset build is already running",
		})
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Dataset rebuild requested")
	respondSuccess(w, http.StatusAccepted, models.RebuildResponse{
		Started: true,
		State:   h.dataset.State().String(),
	}, models.Metadata{})
}

func (h *Handler) validAdminToken(r *http.Request) bool {
	want := h.config.Security.AdminToken
	if want == "" {
		return false
	}
	got := r.Header.Get(AdminTokenHeader)
	if got == "" {
		got = bearerToken(r)
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
