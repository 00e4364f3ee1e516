// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package main

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/soundprint/internal/api"
	"github.com/tomtom215/soundprint/internal/config"
	"github.com/tomtom215/soundprint/internal/dataset"
	"github.com/tomtom215/soundprint/internal/logging"
	"github.com/tomtom215/soundprint/internal/recommend"
	"github.com/tomtom215/soundprint/internal/spotify"
	"github.com/tomtom215/soundprint/internal/users"
)

// application holds the long-lived components. Close releases them in
// reverse order of construction.
type application struct {
	engine      *dataset.Engine
	resolver    *dataset.Resolver
	coordinator *dataset.Coordinator
	taste       *recommend.Engine
	music       *spotify.Client
	users       *users.Store
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newApp(cfg *config.Config, logger zerolog.Logger) (*application, error) {
	a := &application{}
	if err := a.init(cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (a *application) init(cfg *config.Config, logger zerolog.Logger) error {
	var err error

	paths := dataset.PathsFromConfig(&cfg.Dataset)
	// A missing source is fatal even when a bundle exists: staleness checks
	// need it.
	if _, err := paths.SourceModTime(); err != nil {
		return err
	}

	a.engine, err = dataset.OpenEngine(dataset.EngineConfig{
		Threads:   cfg.Dataset.Threads,
		MaxMemory: cfg.Dataset.MaxMemory,
	})
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	a.resolver = dataset.NewResolver(paths, a.engine, nil, logger)
	a.coordinator = dataset.NewCoordinator(a.resolver, dataset.CoordinatorConfig{
		ReadyTimeout: cfg.Dataset.ReadyTimeout,
		BuildTimeout: cfg.Dataset.BuildTimeout,
	}, logger)

	if plan, perr := a.resolver.Plan(); perr == nil {
		logging.Info().Str("tier", plan.TierName).Strs("reasons", plan.Reasons).Msg("Dataset load plan")
	}

	a.taste, err = recommend.NewEngine(&recommend.Config{
		BatchSize:          cfg.Recommend.BatchSize,
		MaxRecommendations: cfg.Recommend.MaxRecommendations,
		NeighborsPerQuery:  cfg.Recommend.NeighborsPerQuery,
		QueryWorkers:       cfg.Recommend.QueryWorkers,
		ReadyTimeout:       cfg.Dataset.ReadyTimeout,
	}, a.coordinator, logger)
	if err != nil {
		return fmt.Errorf("taste engine: %w", err)
	}

	if cfg.Spotify.Enabled {
		a.music, err = spotify.NewClient(&cfg.Spotify, logger)
		if err != nil {
			return fmt.Errorf("spotify client: %w", err)
		}
	}

	if cfg.Users.Enabled {
		a.users, err = users.Open(&cfg.Users, logger)
		if err != nil {
			return fmt.Errorf("user store: %w", err)
		}
	}
	return nil
}

// httpHandler builds the router. Optional components are passed only when
// configured so the handler sees nil interfaces rather than nil pointers.
func (a *application) httpHandler(cfg *config.Config) (http.Handler, error) {
	deps := api.Deps{
		Engine:  a.taste,
		Dataset: a.coordinator,
		Config:  cfg,
		Version: version,
	}
	if a.music != nil {
		deps.Music = a.music
	}
	if a.users != nil {
		deps.Users = a.users
	}
	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security))
	return api.NewRouter(api.NewHandler(deps), mw).Setup()
}

// Close stops any running build and releases stores.
func (a *application) Close() {
	if a.coordinator != nil {
		a.coordinator.Close()
	}
	if a.users != nil {
		if err := a.users.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing user store")
		}
	}
	if a.engine != nil {
		if err := a.engine.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing DuckDB")
		}
	}
}
