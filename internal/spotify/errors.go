// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package spotify

import (
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// ErrUnauthorized means the access token was rejected (HTTP 401).
	ErrUnauthorized = errors.New("music service rejected the access token")

	// ErrRateLimited is returned when 429 responses outlast the retry budget.
	ErrRateLimited = errors.New("music service rate limit exceeded")

	// ErrMissingToken is returned before any request is made when no token is supplied.
	ErrMissingToken = errors.New("access token is required")
)

// APIError is a non-2xx response other than 401 and 429.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("music service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("music service returned status %d: %s", e.StatusCode, e.Message)
}

// IsUnavailable reports whether err came from an open or saturated circuit.
func IsUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
