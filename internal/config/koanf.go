// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/soundprint/config.yaml",
	"/etc/soundprint/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			Environment:     "development",
		},
		Dataset: DatasetConfig{
			SourcePath:      "data/tracks.csv",
			BundleDir:       "precomputed",
			ReadyTimeout:    120 * time.Second,
			BuildTimeout:    30 * time.Minute,
			LoadOnStartup:   true,
			RefreshInterval: 10 * time.Minute,
			Threads:         0,
			MaxMemory:       "2GB",
		},
		Recommend: RecommendConfig{
			BatchSize:          50,
			MaxRecommendations: 25,
			NeighborsPerQuery:  5,
			QueryWorkers:       0,
		},
		Spotify: SpotifyConfig{
			Enabled:           true,
			APIBaseURL:        "https://api.spotify.com/v1",
			Timeout:           10 * time.Second,
			TopTracksLimit:    50,
			TimeRange:         "medium_term",
			CacheTTL:          5 * time.Minute,
			CacheCapacity:     1000,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Users: UsersConfig{
			Enabled:   true,
			StorePath: "data/users",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration using Koanf with layered sources:
//  1. Defaults (lowest priority)
//  2. Config file (config.yaml, CONFIG_PATH, or /etc/soundprint/config.yaml)
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyDerivedDefaults fills values that depend on other settings.
func (c *Config) applyDerivedDefaults() {
	if c.Dataset.Threads <= 0 {
		c.Dataset.Threads = runtime.NumCPU()
	}
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak into
// the configuration.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"server_timeout":   "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Dataset
	"dataset_source_path":         "dataset.source_path",
	"dataset_bundle_dir":          "dataset.bundle_dir",
	"dataset_columnar_cache_path": "dataset.columnar_cache_path",
	"dataset_row_cache_path":      "dataset.row_cache_path",
	"dataset_ready_timeout":       "dataset.ready_timeout",
	"dataset_build_timeout":       "dataset.build_timeout",
	"dataset_load_on_startup":     "dataset.load_on_startup",
	"dataset_refresh_interval":    "dataset.refresh_interval",
	"duckdb_threads":              "dataset.threads",
	"duckdb_max_memory":           "dataset.max_memory",

	// Recommend
	"recommend_batch_size":          "recommend.batch_size",
	"recommend_max_recommendations": "recommend.max_recommendations",
	"recommend_neighbors_per_query": "recommend.neighbors_per_query",
	"recommend_query_workers":       "recommend.query_workers",

	// Spotify
	"spotify_enabled":             "spotify.enabled",
	"spotify_api_base_url":        "spotify.api_base_url",
	"spotify_timeout":             "spotify.timeout",
	"spotify_top_tracks_limit":    "spotify.top_tracks_limit",
	"spotify_time_range":          "spotify.time_range",
	"spotify_cache_ttl":           "spotify.cache_ttl",
	"spotify_cache_capacity":      "spotify.cache_capacity",
	"spotify_requests_per_second": "spotify.requests_per_second",
	"spotify_burst":               "spotify.burst",

	// Users
	"users_enabled":    "users.enabled",
	"users_store_path": "users.store_path",
	"users_in_memory":  "users.in_memory",

	// Security
	"cors_origins":         "security.cors_origins",
	"rate_limit_requests":  "security.rate_limit_reqs",
	"rate_limit_window":    "security.rate_limit_window",
	"disable_rate_limit":   "security.rate_limit_disabled",
	"allow_remote_rebuild": "security.allow_remote_rebuild",
	"admin_token":          "security.admin_token",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DATASET_SOURCE_PATH -> dataset.source_path
//   - DUCKDB_MAX_MEMORY -> dataset.max_memory
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
