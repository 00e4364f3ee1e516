// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDataset(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateSpotify(); err != nil {
		return err
	}

	if err := c.validateUsers(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validEnvironments defines the allowed server environments
var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive")
	}
	if c.Server.Environment != "" && !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

// validateDataset validates dataset locations and load timing
func (c *Config) validateDataset() error {
	if err := c.validateDatasetPaths(); err != nil {
		return err
	}
	return c.validateDatasetTimeouts()
}

func (c *Config) validateDatasetPaths() error {
	if strings.TrimSpace(c.Dataset.SourcePath) == "" {
		return fmt.Errorf("DATASET_SOURCE_PATH is required")
	}
	if strings.TrimSpace(c.Dataset.BundleDir) == "" {
		return fmt.Errorf("DATASET_BUNDLE_DIR is required")
	}
	if c.Dataset.MaxMemory == "" {
		return fmt.Errorf("DUCKDB_MAX_MEMORY is required")
	}
	if c.Dataset.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	return nil
}

func (c *Config) validateDatasetTimeouts() error {
	if c.Dataset.ReadyTimeout <= 0 {
		return fmt.Errorf("DATASET_READY_TIMEOUT must be positive")
	}
	if c.Dataset.BuildTimeout < c.Dataset.ReadyTimeout {
		return fmt.Errorf("DATASET_BUILD_TIMEOUT (%v) must not be shorter than DATASET_READY_TIMEOUT (%v)",
			c.Dataset.BuildTimeout, c.Dataset.ReadyTimeout)
	}
	if c.Dataset.RefreshInterval != 0 && c.Dataset.RefreshInterval < time.Second {
		return fmt.Errorf("DATASET_REFRESH_INTERVAL must be 0 (disabled) or at least 1s")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.BatchSize < 1 || r.BatchSize > 50 {
		return fmt.Errorf("RECOMMEND_BATCH_SIZE must be between 1 and 50")
	}
	if r.MaxRecommendations < 1 {
		return fmt.Errorf("RECOMMEND_MAX_RECOMMENDATIONS must be positive")
	}
	if r.NeighborsPerQuery < 1 {
		return fmt.Errorf("RECOMMEND_NEIGHBORS_PER_QUERY must be positive")
	}
	if r.QueryWorkers < 0 {
		return fmt.Errorf("RECOMMEND_QUERY_WORKERS must be non-negative")
	}
	return nil
}

// validTimeRanges are the top-items windows the music service accepts
var validTimeRanges = map[string]bool{
	"short_term":  true,
	"medium_term": true,
	"long_term":   true,
}

// validateSpotify validates music-service client settings (only if enabled)
func (c *Config) validateSpotify() error {
	if !c.Spotify.Enabled {
		return nil
	}

	if err := validateHTTPURL(c.Spotify.APIBaseURL, "SPOTIFY_API_BASE_URL"); err != nil {
		return fmt.Errorf("SPOTIFY_API_BASE_URL is invalid: %w", err)
	}
	if !validTimeRanges[c.Spotify.TimeRange] {
		return fmt.Errorf("SPOTIFY_TIME_RANGE must be one of: short_term, medium_term, long_term")
	}
	if c.Spotify.TopTracksLimit < 1 || c.Spotify.TopTracksLimit > 50 {
		return fmt.Errorf("SPOTIFY_TOP_TRACKS_LIMIT must be between 1 and 50")
	}
	if c.Spotify.Timeout <= 0 {
		return fmt.Errorf("SPOTIFY_TIMEOUT must be positive")
	}
	if c.Spotify.RequestsPerSecond <= 0 || c.Spotify.Burst < 1 {
		return fmt.Errorf("SPOTIFY_REQUESTS_PER_SECOND and SPOTIFY_BURST must be positive")
	}
	return nil
}

func (c *Config) validateUsers() error {
	if c.Users.Enabled && !c.Users.InMemory && strings.TrimSpace(c.Users.StorePath) == "" {
		return fmt.Errorf("USERS_STORE_PATH is required when USERS_ENABLED=true")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateAdmin()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window

	minAdminTokenLength = 16
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateAdmin requires a real admin token whenever remote rebuilds are on.
func (c *Config) validateAdmin() error {
	if !c.Security.AllowRemoteRebuild {
		return nil
	}
	token := c.Security.AdminToken
	if len(token) < minAdminTokenLength {
		return fmt.Errorf("ADMIN_TOKEN must be at least %d characters when ALLOW_REMOTE_REBUILD=true", minAdminTokenLength)
	}
	if containsPlaceholder(token) {
		return fmt.Errorf("ADMIN_TOKEN contains a placeholder value; set a real secret")
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration should be flagged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.HasWildcardCORS()
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns are common placeholder fragments that indicate a
// secret was never filled in.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
