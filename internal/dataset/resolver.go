// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/metrics"
)

// Resolver picks the cheapest fresh source for the dataset: the precomputed
// bundle, then the columnar cache, then the row cache, then the raw source.
// A tier is fresh when it is not older than the source file. A fresh tier
// that fails to load is logged and skipped.
type Resolver struct {
	paths    Paths
	engine   *Engine
	newIndex IndexFactory
	logger   zerolog.Logger
}

// NewResolver creates a resolver. A nil newIndex uses the brute-force index.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewResolver(paths Paths, engine *Engine, newIndex IndexFactory, logger zerolog.Logger) *Resolver {
	return &Resolver{
		paths:    paths,
		engine:   engine,
		newIndex: newIndex,
		logger:   logger.With().Str("component", "dataset_resolver").Logger(),
	}
}

// Paths returns the resolver's file locations.
func (r *Resolver) Paths() Paths { return r.paths }

// SourceModTime returns the raw source's modification time, or an error
// wrapping catalog.ErrSourceMissing.
func (r *Resolver) SourceModTime() (time.Time, error) {
	return r.paths.SourceModTime()
}

// Load implements Loader.
func (r *Resolver) Load(ctx context.Context) (*Bundle, error) {
	return r.Resolve(ctx)
}

// Resolve performs the full tiered load.
func (r *Resolver) Resolve(ctx context.Context) (*Bundle, error) {
	sourceMod, err := r.SourceModTime()
	if err != nil {
		return nil, err
	}

	if ok, reason := bundleValid(r.paths, sourceMod); ok {
		start := time.Now()
		b, err := LoadBundle(ctx, r.engine, r.paths, sourceMod)
		if err == nil {
			r.logger.Info().
				Str("tier", TierBundle.String()).
				Dur("duration", time.Since(start)).
				Int("catalog_size", len(b.entries)).
				Msg("Loaded precomputed bundle")
			metrics.DatasetTierLoads.WithLabelValues(TierBundle.String()).Inc()
			return b, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn().Err(err).Msg("Precomputed bundle unreadable, falling back")
	} else {
		r.logger.Debug().Str("reason", reason).Msg("Precomputed bundle not usable")
	}

	rows, tier, err := r.loadFlatTable(ctx, sourceMod)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	b, err := Build(ctx, rows, r.newIndex, BundleMeta{SourceModTime: sourceMod, Tier: tier})
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset: %w", err)
	}
	r.logger.Info().
		Str("tier", tier.String()).
		Int("rows", len(rows)).
		Int("tracks", len(b.tracks)).
		Int("artists", len(b.artists)).
		Int("catalog_size", len(b.entries)).
		Dur("build_duration", time.Since(start)).
		Msg("Built dataset from flat table")
	metrics.DatasetTierLoads.WithLabelValues(tier.String()).Inc()
	return b, nil
}

// LoadFlatTable loads the normalized flat table from tiers 2 to 4.
func (r *Resolver) LoadFlatTable(ctx context.Context) ([]catalog.Row, Tier, error) {
	sourceMod, err := r.SourceModTime()
	if err != nil {
		return nil, TierNone, err
	}
	return r.loadFlatTable(ctx, sourceMod)
}

func (r *Resolver) loadFlatTable(ctx context.Context, sourceMod time.Time) ([]catalog.Row, Tier, error) {
	colExists, colFresh := freshFile(r.paths.ColumnarCache, sourceMod)
	if colExists && colFresh {
		rows, err := r.engine.ReadColumnar(ctx, r.paths.ColumnarCache)
		if err == nil {
			r.logger.Info().Str("path", r.paths.ColumnarCache).Int("rows", len(rows)).Msg("Loaded columnar cache")
			return rows, TierColumnar, nil
		}
		if ctx.Err() != nil {
			return nil, TierNone, ctx.Err()
		}
		r.logger.Warn().Err(err).Str("path", r.paths.ColumnarCache).Msg("Columnar cache unreadable, falling back")
	}

	// The row cache is only consulted when there is no columnar file at all.
	if !colExists {
		if exists, fresh := freshFile(r.paths.RowCache, sourceMod); exists && fresh {
			rows, err := ReadRowCache(ctx, r.paths.RowCache)
			if err == nil {
				r.logger.Info().Str("path", r.paths.RowCache).Int("rows", len(rows)).Msg("Loaded row cache")
				return rows, TierRowCache, nil
			}
			if ctx.Err() != nil {
				return nil, TierNone, ctx.Err()
			}
			r.logger.Warn().Err(err).Str("path", r.paths.RowCache).Msg("Row cache unreadable, falling back")
		}
	}

	rows, _, err := r.ingest(ctx)
	if err != nil {
		return nil, TierNone, err
	}
	return rows, TierSource, nil
}

// ingest parses the raw source and persists the flat-table cache. A cache
// write failure is counted and logged, never returned.
func (r *Resolver) ingest(ctx context.Context) ([]catalog.Row, IngestStats, error) {
	start := time.Now()
	rows, stats, err := r.engine.ReadSource(ctx, r.paths.Source, r.paths.ColumnarCache)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, stats, err
		}
		return nil, stats, fmt.Errorf("failed to ingest %s: %w", r.paths.Source, err)
	}

	metrics.IngestRowsDropped.WithLabelValues("bad_identifier").Add(float64(stats.BadIdentifiers))
	metrics.IngestRowsDropped.WithLabelValues("missing_feature").Add(float64(stats.MissingFeatures))

	if !stats.ColumnarWritten {
		metrics.CacheWriteFailures.WithLabelValues(TierColumnar.String()).Inc()
		if err := WriteRowCache(r.paths.RowCache, rows); err != nil {
			metrics.CacheWriteFailures.WithLabelValues(TierRowCache.String()).Inc()
			r.logger.Warn().Err(err).Str("path", r.paths.RowCache).Msg("Failed to write row cache")
		}
	}

	r.logger.Info().
		Str("path", r.paths.Source).
		Int64("source_rows", stats.SourceRows).
		Int64("bad_identifiers", stats.BadIdentifiers).
		Int64("missing_features", stats.MissingFeatures).
		Int64("kept", stats.Kept).
		Dur("duration", time.Since(start)).
		Msg("Ingested raw source")

	if len(rows) == 0 {
		return nil, stats, catalog.ErrEmptyDataset
	}
	return rows, stats, nil
}

// Normalize re-reads the raw source and rewrites the flat-table cache
// regardless of freshness.
func (r *Resolver) Normalize(ctx context.Context) (IngestStats, error) {
	if _, err := r.SourceModTime(); err != nil {
		return IngestStats{}, err
	}
	_, stats, err := r.ingest(ctx)
	return stats, err
}

// Stale reports whether the source has changed since b was built.
func (r *Resolver) Stale(b *Bundle) (bool, error) {
	sourceMod, err := r.SourceModTime()
	if err != nil {
		return false, err
	}
	return unixSeconds(b.sourceMod) < unixSeconds(sourceMod), nil
}

// Plan describes which tier Resolve would use, without loading anything.
type Plan struct {
	Tier          Tier      `json:"-"`
	TierName      string    `json:"tier"`
	SourceModTime time.Time `json:"source_mtime"`
	Reasons       []string  `json:"reasons"`
}

// Plan reports the tier that Resolve would try first and why the cheaper
// tiers were rejected.
func (r *Resolver) Plan() (Plan, error) {
	sourceMod, err := r.SourceModTime()
	if err != nil {
		return Plan{}, err
	}
	p := Plan{SourceModTime: sourceMod}
	done := func(t Tier) (Plan, error) {
		p.Tier, p.TierName = t, t.String()
		return p, nil
	}

	ok, reason := bundleValid(r.paths, sourceMod)
	if ok {
		return done(TierBundle)
	}
	p.Reasons = append(p.Reasons, "bundle: "+reason)

	colExists, colFresh := freshFile(r.paths.ColumnarCache, sourceMod)
	switch {
	case colExists && colFresh:
		return done(TierColumnar)
	case colExists:
		p.Reasons = append(p.Reasons, "columnar: source newer than cache")
		return done(TierSource)
	default:
		p.Reasons = append(p.Reasons, "columnar: missing")
	}

	rcExists, rcFresh := freshFile(r.paths.RowCache, sourceMod)
	switch {
	case rcExists && rcFresh:
		return done(TierRowCache)
	case rcExists:
		p.Reasons = append(p.Reasons, "rowcache: source newer than cache")
	default:
		p.Reasons = append(p.Reasons, "rowcache: missing")
	}
	return done(TierSource)
}

// Precompute builds the dataset from the freshest flat table and writes the
// precomputed bundle directory.
func Precompute(ctx context.Context, r *Resolver) (*Bundle, error) {
	sourceMod, err := r.SourceModTime()
	if err != nil {
		return nil, err
	}
	rows, tier, err := r.loadFlatTable(ctx, sourceMod)
	if err != nil {
		return nil, err
	}
	b, err := Build(ctx, rows, r.newIndex, BundleMeta{SourceModTime: sourceMod, Tier: tier})
	if err != nil {
		return nil, err
	}
	if err := SaveBundle(ctx, r.engine, r.paths, b); err != nil {
		return nil, err
	}
	r.logger.Info().
		Str("dir", r.paths.BundleDir).
		Int("catalog_size", len(b.entries)).
		Msg("Wrote precomputed bundle")
	return b, nil
}
