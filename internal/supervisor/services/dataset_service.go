// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/soundprint/internal/dataset"
	"github.com/tomtom215/soundprint/internal/metrics"
)

// DatasetCoordinator is the part of *dataset.Coordinator the service uses.
type DatasetCoordinator interface {
	EnsureReady(ctx context.Context, timeout time.Duration) (*dataset.Bundle, error)
	Current() *dataset.Bundle
	TriggerRebuild() bool
}

// StalenessChecker reports whether the source changed after a bundle was
// built. Satisfied by *dataset.Resolver.
type StalenessChecker interface {
	Stale(b *dataset.Bundle) (bool, error)
}

// DatasetServiceConfig controls the dataset lifecycle.
type DatasetServiceConfig struct {
	// LoadOnStartup starts the initial build as soon as the service runs
	// instead of on the first request.
	LoadOnStartup bool

	// ReadyTimeout bounds the startup wait. The build itself keeps running
	// past it.
	ReadyTimeout time.Duration

	// RefreshInterval is how often the source is checked for changes.
	// Zero disables the check.
	RefreshInterval time.Duration
}

// DatasetService loads the dataset at startup and rebuilds it when the
// source table changes on disk.
type DatasetService struct {
	coord   DatasetCoordinator
	checker StalenessChecker
	config  DatasetServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewDatasetService creates the dataset lifecycle service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewDatasetService(coord DatasetCoordinator, checker StalenessChecker, cfg DatasetServiceConfig, logger zerolog.Logger) *DatasetService {
	return &DatasetService{
		coord:   coord,
		checker: checker,
		config:  cfg,
		logger:  logger.With().Str("service", "dataset").Logger(),
		name:    "dataset-service",
	}
}

// Serve implements suture.Service.
func (s *DatasetService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("load_on_startup", s.config.LoadOnStartup).
		Dur("refresh_interval", s.config.RefreshInterval).
		Msg("dataset service starting")

	if s.config.LoadOnStartup && s.coord.Current() == nil {
		s.loadOnce(ctx)
	}

	if s.config.RefreshInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("dataset service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.checkSource()
		}
	}
}

func (s *DatasetService) loadOnce(ctx context.Context) {
	start := time.Now()
	b, err := s.coord.EnsureReady(ctx, s.config.ReadyTimeout)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Dur("waited", time.Since(start)).
				Msg("dataset not ready after startup wait; requests will keep waiting on the build")
		}
		return
	}
	summary := b.Summary()
	s.logger.Info().
		Str("tier", summary.Tier).
		Int("tracks", summary.Tracks).
		Int("artists", summary.Artists).
		Dur("duration", time.Since(start)).
		Msg("dataset ready")
}

// checkSource starts a rebuild when the source is newer than the served
// bundle. With no bundle published (the first build failed) it retries the
// build.
func (s *DatasetService) checkSource() {
	current := s.coord.Current()
	if current == nil {
		metrics.DatasetStaleChecks.WithLabelValues("unloaded").Inc()
		if s.coord.TriggerRebuild() {
			s.logger.Info().Msg("no dataset published, retrying build")
		}
		return
	}

	stale, err := s.checker.Stale(current)
	switch {
	case err != nil:
		metrics.DatasetStaleChecks.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg("source freshness check failed")
	case !stale:
		metrics.DatasetStaleChecks.WithLabelValues("fresh").Inc()
	default:
		metrics.DatasetStaleChecks.WithLabelValues("stale").Inc()
		if s.coord.TriggerRebuild() {
			s.logger.Info().
				Time("bundle_source_mtime", current.SourceModTime()).
				Msg("source changed, rebuilding dataset")
		}
	}
}

// String implements fmt.Stringer.
func (s *DatasetService) String() string {
	return s.name
}
