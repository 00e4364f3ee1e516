// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/soundprint/internal/config"
	"github.com/tomtom215/soundprint/internal/dataset"
	"github.com/tomtom215/soundprint/internal/logging"
)

// options are the persistent flags. Empty values keep the configured ones.
type options struct {
	source    string
	bundleDir string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "precompute",
		Short: "Build and inspect the Soundprint dataset caches",
		Long: `precompute drives the same loader the server uses.

Paths come from config.yaml and the DATASET_* environment variables;
--source and --bundle-dir override them for one run.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.source, "source", "", "raw track CSV (overrides DATASET_SOURCE_PATH)")
	root.PersistentFlags().StringVar(&opts.bundleDir, "bundle-dir", "", "bundle directory (overrides DATASET_BUNDLE_DIR)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		newBuildCmd(opts),
		newStatusCmd(opts),
		newNormalizeCmd(opts),
	)
	return root
}

func newBuildCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the dataset and write the precomputed bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			start := time.Now()
			b, err := dataset.Precompute(cmd.Context(), dataset.NewResolver(dataset.PathsFromConfig(&cfg.Dataset), engine, nil, logger))
			if err != nil {
				return fmt.Errorf("precompute: %w", err)
			}
			logger.Info().Dur("elapsed", time.Since(start)).Msg("Bundle written")
			return writeJSON(cmd.OutOrStdout(), b.Summary())
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report which cache tier a load would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			// Planning only stats files.
			plan, err := dataset.NewResolver(dataset.PathsFromConfig(&cfg.Dataset), nil, nil, logger).Plan()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}
}

func newNormalizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Re-ingest the raw source and refresh the flat-table caches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			stats, err := dataset.NewResolver(dataset.PathsFromConfig(&cfg.Dataset), engine, nil, logger).Normalize(cmd.Context())
			if err != nil {
				return fmt.Errorf("normalize: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
}

// load reads configuration, applies flag overrides and builds a console
// logger on w.
func (o *options) load(w io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if o.source != "" {
		cfg.Dataset.SourcePath = o.source
	}
	if o.bundleDir != "" {
		cfg.Dataset.BundleDir = o.bundleDir
	}
	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logging.SetLevelString(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Str("component", "precompute").Logger()
	return cfg, logger, nil
}

func openEngine(cfg *config.Config) (*dataset.Engine, error) {
	engine, err := dataset.OpenEngine(dataset.EngineConfig{
		Threads:   cfg.Dataset.Threads,
		MaxMemory: cfg.Dataset.MaxMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return engine, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
