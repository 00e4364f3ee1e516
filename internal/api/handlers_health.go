// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/soundprint/internal/models"
)

// Health reports overall status. It always answers 200; status is "ok" once
// a bundle is published and "degraded" before that or while the
// music-service breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	state := h.dataset.State().String()
	components := map[string]string{"dataset": state}
	status := "ok"
	if h.dataset.Current() == nil {
		status = "degraded"
	}

	if h.music != nil {
		breaker := h.music.BreakerState()
		components["music_service"] = breaker
		if breaker == "open" {
			status = "degraded"
		}
	}
	if h.users != nil {
		if n, err := h.users.Count(r.Context()); err != nil {
			components["users"] = "error"
			status = "degraded"
		} else {
			components["users"] = strconv.Itoa(n) + " listeners"
		}
	}

	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:       status,
		Version:      h.version,
		Uptime:       time.Since(h.startTime).Seconds(),
		DatasetState: state,
		Components:   components,
	}, models.Metadata{})
}

// HealthLive answers 200 while the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, models.Metadata{})
}

// HealthReady answers 200 once a dataset bundle is published and 503 before.
// A rebuild in progress does not make the server unready: the previous
// bundle keeps serving.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if h.dataset.Current() == nil {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}
	respondSuccess(w, statusCode, map[string]interface{}{
		"status":        status,
		"dataset_state": h.dataset.State().String(),
	}, models.Metadata{})
}
