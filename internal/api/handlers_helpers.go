// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package api

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/logging"
	"github.com/tomtom215/soundprint/internal/models"
	"github.com/tomtom215/soundprint/internal/spotify"
	"github.com/tomtom215/soundprint/internal/validation"
)

const (
	// maxBodyBytes bounds taste request bodies; 50 tracks fit comfortably.
	maxBodyBytes = 256 << 10

	// retryAfterSeconds is sent with DATASET_NOT_READY.
	retryAfterSeconds = 30
)

// sanitizeLogValue escapes control characters so client-supplied values
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes response with an ETag over the encoded body.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func generateETag(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data) //nolint:errcheck // hash writes never fail
	return `"` + strconv.FormatUint(uint64(h.Sum32()), 16) + `"`
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, meta models.Metadata) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   models.StatusSuccess,
		Data:     data,
		Metadata: meta,
	})
}

// respondError sends an error envelope. err, when set, is logged and never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", code).
			Str("path", r.URL.Path).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondAPIError(w, status, &models.APIError{Code: code, Message: message})
}

func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status:   models.StatusError,
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

// decodeAndValidate reads a JSON body into v and validates it. It writes the
// 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		message := "Request body must be a JSON object"
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			message = fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			message = "Request body is empty"
		}
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, message, nil)
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		respondAPIError(w, http.StatusBadRequest, verr.ToAPIError())
		return false
	}
	return true
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// respondPipelineError maps errors from the taste engine and the music-service
// client onto HTTP statuses.
func respondPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *spotify.APIError
	switch {
	case errors.Is(err, catalog.ErrDatasetNotReady):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeDatasetNotReady,
			"Dataset is still loading, retry shortly", err)
	case errors.Is(err, spotify.ErrMissingToken), errors.Is(err, spotify.ErrUnauthorized):
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized,
			"Music service rejected the access token", nil)
	case spotify.IsUnavailable(err), errors.Is(err, spotify.ErrRateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUpstreamBusy,
			"Music service is temporarily unavailable", err)
	case errors.As(err, &upstream):
		respondError(w, r, http.StatusBadGateway, models.ErrCodeUpstream,
			"Music service request failed", err)
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		logging.Ctx(r.Context()).Debug().Msg("Request canceled by client")
	default:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal,
			"Internal server error", err)
	}
}
