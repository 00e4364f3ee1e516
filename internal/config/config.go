// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Recommend RecommendConfig `koanf:"recommend"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	Users     UsersConfig     `koanf:"users"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// DatasetConfig locates the source table and its caches and controls how the
// dataset is loaded.
//
// Environment Variables:
//   - DATASET_SOURCE_PATH: CSV source table (required)
//   - DATASET_BUNDLE_DIR: precomputed bundle directory (default: precomputed)
//   - DATASET_COLUMNAR_CACHE_PATH / DATASET_ROW_CACHE_PATH: override the
//     flat-table cache locations (default: next to the source)
//   - DATASET_READY_TIMEOUT: how long a request waits for the dataset (default: 120s)
//   - DATASET_BUILD_TIMEOUT: upper bound for one build (default: 30m)
//   - DATASET_LOAD_ON_STARTUP: start loading at boot (default: true)
//   - DATASET_REFRESH_INTERVAL: source freshness check period, 0 disables (default: 10m)
//   - DUCKDB_THREADS / DUCKDB_MAX_MEMORY: ingestion engine limits
type DatasetConfig struct {
	SourcePath        string        `koanf:"source_path"`
	BundleDir         string        `koanf:"bundle_dir"`
	ColumnarCachePath string        `koanf:"columnar_cache_path"`
	RowCachePath      string        `koanf:"row_cache_path"`
	ReadyTimeout      time.Duration `koanf:"ready_timeout"`
	BuildTimeout      time.Duration `koanf:"build_timeout"`
	LoadOnStartup     bool          `koanf:"load_on_startup"`
	RefreshInterval   time.Duration `koanf:"refresh_interval"`
	Threads           int           `koanf:"threads"` // 0 = runtime.NumCPU()
	MaxMemory         string        `koanf:"max_memory"`
}

// RecommendConfig holds taste pipeline limits.
type RecommendConfig struct {
	BatchSize          int `koanf:"batch_size"`
	MaxRecommendations int `koanf:"max_recommendations"`
	NeighborsPerQuery  int `koanf:"neighbors_per_query"`
	QueryWorkers       int `koanf:"query_workers"` // 0 = GOMAXPROCS
}

// SpotifyConfig holds music-service API client settings. The caller supplies
// an access token per request; the server never performs the OAuth exchange.
type SpotifyConfig struct {
	Enabled           bool          `koanf:"enabled"`
	APIBaseURL        string        `koanf:"api_base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	TopTracksLimit    int           `koanf:"top_tracks_limit"`
	TimeRange         string        `koanf:"time_range"` // short_term, medium_term, long_term
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	CacheCapacity     int           `koanf:"cache_capacity"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// UsersConfig controls the listener profile store.
type UsersConfig struct {
	Enabled   bool   `koanf:"enabled"`
	StorePath string `koanf:"store_path"`
	InMemory  bool   `koanf:"in_memory"`
}

// SecurityConfig holds CORS, rate limiting and admin settings.
type SecurityConfig struct {
	CORSOrigins        []string      `koanf:"cors_origins"`
	RateLimitReqs      int           `koanf:"rate_limit_reqs"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled  bool          `koanf:"rate_limit_disabled"`
	AllowRemoteRebuild bool          `koanf:"allow_remote_rebuild"`
	AdminToken         string        `koanf:"admin_token"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	Format string `koanf:"format"`

	// Caller includes file and line number in log lines.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}
