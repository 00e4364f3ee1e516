// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package api

import (
	"context"
	"time"

	"github.com/tomtom215/soundprint/internal/config"
	"github.com/tomtom215/soundprint/internal/dataset"
	"github.com/tomtom215/soundprint/internal/recommend"
	"github.com/tomtom215/soundprint/internal/spotify"
	"github.com/tomtom215/soundprint/internal/users"
)

// TasteEngine runs the taste pipeline. Satisfied by *recommend.Engine.
type TasteEngine interface {
	Analyze(ctx context.Context, operation string, queries []recommend.Query) (*recommend.Report, error)
	AnalyzeTopTracks(ctx context.Context, operation string, src recommend.TopTracksSource, token string) (*recommend.Report, error)
}

// DatasetController exposes the dataset lifecycle. Satisfied by
// *dataset.Coordinator.
type DatasetController interface {
	State() dataset.State
	Current() *dataset.Bundle
	TriggerRebuild() bool
	LastError() error
	Builds() int64
}

// MusicService fetches the caller's profile and top tracks. Satisfied by
// *spotify.Client.
type MusicService interface {
	recommend.TopTracksSource
	Profile(ctx context.Context, token string) (spotify.Profile, error)
	BreakerState() string
}

// UserRecorder persists listener profiles. Satisfied by *users.Store.
type UserRecorder interface {
	Record(ctx context.Context, u users.User) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Handler holds the dependencies of every endpoint. Handler methods are
// split across files:
//   - handlers_health.go: liveness, readiness, overall health
//   - handlers_dataset.go: dataset status and rebuild
//   - handlers_taste.go: taste endpoints for a posted track list
//   - handlers_me.go: taste endpoints for the caller's top tracks
type Handler struct {
	engine    TasteEngine
	dataset   DatasetController
	music     MusicService // nil when the music-service integration is disabled
	users     UserRecorder // nil when profile recording is disabled
	config    *config.Config
	version   string
	startTime time.Time
}

// Deps are the collaborators passed to NewHandler. Music and Users are
// optional.
type Deps struct {
	Engine  TasteEngine
	Dataset DatasetController
	Music   MusicService
	Users   UserRecorder
	Config  *config.Config
	Version string
}

// NewHandler creates the API handler.
func NewHandler(d Deps) *Handler {
	version := d.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		engine:    d.Engine,
		dataset:   d.Dataset,
		music:     d.Music,
		users:     d.Users,
		config:    d.Config,
		version:   version,
		startTime: time.Now(),
	}
}
