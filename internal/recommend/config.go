// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains all configuration for the taste engine.
type Config struct {
	// BatchSize is the query batch size reported as total_count.
	BatchSize int `json:"batch_size"`

	// MaxRecommendations caps the recommendation list across the whole batch.
	MaxRecommendations int `json:"max_recommendations"`

	// NeighborsPerQuery is k for each matched vector's neighbor search.
	NeighborsPerQuery int `json:"neighbors_per_query"`

	// QueryWorkers bounds parallel neighbor queries. Zero means GOMAXPROCS.
	QueryWorkers int `json:"query_workers"`

	// ReadyTimeout bounds how long a request waits for the dataset.
	ReadyTimeout time.Duration `json:"ready_timeout"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:          50,
		MaxRecommendations: 25,
		NeighborsPerQuery:  5,
		QueryWorkers:       runtime.GOMAXPROCS(0),
		ReadyTimeout:       120 * time.Second,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.MaxRecommendations <= 0 {
		return fmt.Errorf("max_recommendations must be positive, got %d", c.MaxRecommendations)
	}
	if c.NeighborsPerQuery <= 0 {
		return fmt.Errorf("neighbors_per_query must be positive, got %d", c.NeighborsPerQuery)
	}
	if c.QueryWorkers < 0 {
		return fmt.Errorf("query_workers must be non-negative, got %d", c.QueryWorkers)
	}
	if c.ReadyTimeout <= 0 {
		return fmt.Errorf("ready_timeout must be positive, got %v", c.ReadyTimeout)
	}
	return nil
}

func (c *Config) workers() int {
	if c.QueryWorkers > 0 {
		return c.QueryWorkers
	}
	return runtime.GOMAXPROCS(0)
}
