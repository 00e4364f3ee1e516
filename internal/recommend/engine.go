// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/dataset"
	"github.com/tomtom215/soundprint/internal/metrics"
)

// BundleSource hands out the currently published dataset bundle, waiting a
// bounded time for the first one. *dataset.Coordinator implements it.
type BundleSource interface {
	EnsureReady(ctx context.Context, timeout time.Duration) (*dataset.Bundle, error)
	Ready(ctx context.Context, timeout time.Duration) bool
}

// Engine runs the taste pipeline: match, stats, recommendations and insight.
// It holds no per-request state and is safe for concurrent use. Each request
// captures one bundle and uses it throughout.
type Engine struct {
	config *Config
	source BundleSource
	logger zerolog.Logger
}

// Report is the full pipeline output for one list of query tracks.
type Report struct {
	Matches         []MatchResult        `json:"matches"`
	Stats           TasteStats           `json:"stats"`
	Recommendations []RecommendationItem `json:"recommendations"`
	Insight         *Insight             `json:"insight"`
	Generation      uint64               `json:"dataset_generation"`
}

// NewEngine creates a taste engine over source.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, source BundleSource, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, errors.New("bundle source is required")
	}
	return &Engine{
		config: cfg,
		source: source,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// EnsureReady returns the published bundle, waiting up to the configured
// ready timeout. It fails with catalog.ErrDatasetNotReady.
func (e *Engine) EnsureReady(ctx context.Context) (*dataset.Bundle, error) {
	return e.source.EnsureReady(ctx, e.config.ReadyTimeout)
}

// Ready reports whether a bundle becomes available within timeout.
func (e *Engine) Ready(ctx context.Context, timeout time.Duration) bool {
	return e.source.Ready(ctx, timeout)
}

// Match resolves queries against b. See the package function Match.
func (e *Engine) Match(b *dataset.Bundle, queries []Query) (all, matched []MatchResult) {
	all, matched = Match(b, queries)
	metrics.RecordMatches(countMatches(all))
	return all, matched
}

// Stats summarizes matched. It returns catalog.ErrNoMatches with an empty
// payload when matched is empty.
func (e *Engine) Stats(matched []MatchResult) (TasteStats, error) {
	return ComputeStats(matched, e.config.BatchSize)
}

// Recommend finds up to MaxRecommendations catalog tracks near matched.
func (e *Engine) Recommend(ctx context.Context, b *dataset.Bundle, matched []MatchResult) ([]RecommendationItem, error) {
	recs, err := recommend(ctx, b, matched, recommendParams{
		k:       e.config.NeighborsPerQuery,
		limit:   e.config.MaxRecommendations,
		workers: e.config.workers(),
	})
	if err == nil {
		metrics.RecommendationsReturned.Observe(float64(len(recs)))
	}
	return recs, err
}

// Analyze runs the whole pipeline for queries. operation labels the request
// in metrics. An empty matched subset is not an error: the report carries
// empty stats and recommendations and a nil insight.
func (e *Engine) Analyze(ctx context.Context, operation string, queries []Query) (*Report, error) {
	b, err := e.EnsureReady(ctx)
	if err != nil {
		metrics.RecordTasteRequest(operation, "not_ready")
		return nil, err
	}

	all, matched := e.Match(b, queries)
	report := &Report{
		Matches:         all,
		Recommendations: []RecommendationItem{},
		Generation:      b.Generation(),
	}

	report.Stats, err = e.Stats(matched)
	if errors.Is(err, catalog.ErrNoMatches) {
		metrics.RecordTasteRequest(operation, "no_matches")
		e.logger.Debug().Int("queries", len(queries)).Msg("No query tracks matched the catalog")
		return report, nil
	}

	recs, err := e.Recommend(ctx, b, matched)
	if err != nil {
		metrics.RecordTasteRequest(operation, "error")
		return nil, err
	}
	report.Recommendations = recs

	if insight, ok := GenerateInsight(&report.Stats, recs); ok {
		report.Insight = &insight
	}

	metrics.RecordTasteRequest(operation, "ok")
	e.logger.Debug().
		Int("queries", len(queries)).
		Int("matched", len(matched)).
		Int("recommendations", len(recs)).
		Uint64("generation", b.Generation()).
		Msg("Taste analysis complete")
	return report, nil
}

// AnalyzeTopTracks fetches the caller's top tracks from src and analyzes them.
func (e *Engine) AnalyzeTopTracks(ctx context.Context, operation string, src TopTracksSource, token string) (*Report, error) {
	tracks, err := src.TopTracks(ctx, token)
	if err != nil {
		metrics.RecordTasteRequest(operation, "upstream_error")
		return nil, fmt.Errorf("fetch top tracks: %w", err)
	}
	if len(tracks) > e.config.BatchSize {
		tracks = tracks[:e.config.BatchSize]
	}
	return e.Analyze(ctx, operation, tracks)
}
