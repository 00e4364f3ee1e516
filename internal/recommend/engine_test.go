// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/soundprint/internal/catalog"
)

func newTestEngine(t *testing.T, src BundleSource) *Engine {
	t.Helper()
	e, err := NewEngine(nil, src, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, nil, testLogger()); err == nil {
		t.Error("expected error for nil source")
	}
	bad := DefaultConfig()
	bad.MaxRecommendations = 0
	if _, err := NewEngine(bad, &staticSource{}, testLogger()); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestEngine_Analyze(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &staticSource{bundle: buildBundle(t, ladder(100))})

	queries := make([]Query, 0, 10)
	for i := 0; i < 10; i++ {
		queries = append(queries, Query{TrackID: "spotify:track:" + id22(fmt.Sprintf("t%03d", 40+i))})
	}
	queries = append(queries, Query{TrackID: id22("nothing"), TrackName: "Ghost"})

	report, err := e.Analyze(context.Background(), "stats", queries)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(report.Matches) != 11 || report.Matches[10].MatchType != MatchNone {
		t.Errorf("matches = %+v", report.Matches)
	}
	if report.Stats.MatchedCount != 10 || report.Stats.TotalCount != 50 {
		t.Errorf("stats counts = %d/%d", report.Stats.MatchedCount, report.Stats.TotalCount)
	}
	if report.Stats.TempoRange != [2]int{140, 158} {
		t.Errorf("tempo range = %v", report.Stats.TempoRange)
	}
	if len(report.Recommendations) == 0 || len(report.Recommendations) > 25 {
		t.Errorf("recommendations = %d", len(report.Recommendations))
	}
	if report.Insight == nil || report.Insight.Headline == "" {
		t.Errorf("insight = %+v", report.Insight)
	}
}

func TestEngine_AnalyzeNoMatches(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &staticSource{bundle: buildBundle(t, ladder(5))})

	report, err := e.Analyze(context.Background(), "recommendations", []Query{{TrackID: "x", TrackName: "Nope"}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Stats.MatchedCount != 0 || len(report.Stats.Tracks) != 0 {
		t.Errorf("stats = %+v", report.Stats)
	}
	if report.Recommendations == nil || len(report.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want empty slice", report.Recommendations)
	}
	if report.Insight != nil {
		t.Errorf("insight = %+v, want nil", report.Insight)
	}
}

func TestEngine_AnalyzeNotReady(t *testing.T) {
	t.Parallel()

	notReady := fmt.Errorf("%w: timed out", catalog.ErrDatasetNotReady)
	e := newTestEngine(t, &staticSource{err: notReady})

	if _, err := e.Analyze(context.Background(), "stats", nil); !errors.Is(err, catalog.ErrDatasetNotReady) {
		t.Errorf("err = %v, want ErrDatasetNotReady", err)
	}
	if e.Ready(context.Background(), time.Millisecond) {
		t.Error("Ready = true for failing source")
	}
}

type fakeTopTracks struct {
	tracks []TopTrack
	err    error
	calls  atomic.Int32
	token  atomic.Value
}

func (f *fakeTopTracks) TopTracks(_ context.Context, token string) ([]TopTrack, error) {
	f.calls.Add(1)
	f.token.Store(token)
	return f.tracks, f.err
}

func TestEngine_AnalyzeTopTracks(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &staticSource{bundle: buildBundle(t, ladder(80))})

	tracks := make([]TopTrack, 60)
	for i := range tracks {
		tracks[i] = TopTrack{TrackID: id22(fmt.Sprintf("t%03d", i))}
	}
	src := &fakeTopTracks{tracks: tracks}

	report, err := e.AnalyzeTopTracks(context.Background(), "me_stats", src, "tok")
	if err != nil {
		t.Fatalf("AnalyzeTopTracks: %v", err)
	}
	if len(report.Matches) != 50 {
		t.Errorf("matches = %d, want batch of 50", len(report.Matches))
	}
	if got := src.token.Load(); got != "tok" {
		t.Errorf("token = %v", got)
	}

	upstream := errors.New("boom")
	failing := &fakeTopTracks{err: upstream}
	if _, err := e.AnalyzeTopTracks(context.Background(), "me_stats", failing, "tok"); !errors.Is(err, upstream) {
		t.Errorf("err = %v, want wrapped upstream error", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, true},
		{"zero cap", func(c *Config) { c.MaxRecommendations = 0 }, true},
		{"zero k", func(c *Config) { c.NeighborsPerQuery = 0 }, true},
		{"negative workers", func(c *Config) { c.QueryWorkers = -1 }, true},
		{"zero workers means GOMAXPROCS", func(c *Config) { c.QueryWorkers = 0 }, false},
		{"zero ready timeout", func(c *Config) { c.ReadyTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
