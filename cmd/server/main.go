// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/config"
	"github.com/tomtom215/soundprint/internal/logging"
	"github.com/tomtom215/soundprint/internal/metrics"
	"github.com/tomtom215/soundprint/internal/supervisor"
	"github.com/tomtom215/soundprint/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("source", cfg.Dataset.SourcePath).
		Str("bundle_dir", cfg.Dataset.BundleDir).
		Bool("spotify_enabled", cfg.Spotify.Enabled).
		Bool("users_enabled", cfg.Users.Enabled).
		Msg("Starting Soundprint")
	logSecurityWarnings(cfg)

	app, err := newApp(cfg, logging.Logger())
	if err != nil {
		if errors.Is(err, catalog.ErrSourceMissing) {
			logging.Fatal().Err(err).Msg("Dataset source file not found")
		}
		logging.Fatal().Err(err).Msg("Failed to initialize components")
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handler, err := app.httpHandler(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build HTTP router")
	}
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Taste requests may wait for the first dataset build.
		WriteTimeout: cfg.Server.Timeout + cfg.Dataset.ReadyTimeout,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddDataService(services.NewDatasetService(app.coordinator, app.resolver, services.DatasetServiceConfig{
		LoadOnStartup:   cfg.Dataset.LoadOnStartup,
		ReadyTimeout:    cfg.Dataset.ReadyTimeout,
		RefreshInterval: cfg.Dataset.RefreshInterval,
	}, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := awaitTree(ctx, tree.ServeBackground(ctx)); err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	logging.Info().Msg("Soundprint stopped")
}

// awaitTree blocks until the supervisor tree returns. suture sends exactly
// one value on errCh and never closes it, so it is received once on either
// path. context.Canceled is a normal shutdown and reported as nil.
func awaitTree(ctx context.Context, errCh <-chan error) error {
	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		err = <-errCh
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func logSecurityWarnings(cfg *config.Config) {
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*) in production; set explicit origins")
	}
	if cfg.Security.AllowRemoteRebuild {
		logging.Info().Msg("Remote dataset rebuilds enabled (POST /api/v1/dataset/rebuild)")
	}
}
