// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/soundprint/internal/cache"
	"github.com/tomtom215/soundprint/internal/config"
	"github.com/tomtom215/soundprint/internal/logging"
	"github.com/tomtom215/soundprint/internal/recommend"
)

const (
	defaultMaxRetries = 5
	defaultRetryBase  = time.Second
)

// Client calls the music-service Web API on behalf of a caller-supplied token.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitBreaker
	limit      int
	timeRange  string

	profiles  *cache.Cache[Profile]
	topTracks *cache.Cache[[]recommend.TopTrack]

	maxRetries int
	retryBase  time.Duration
	logger     zerolog.Logger
}

var _ recommend.TopTracksSource = (*Client)(nil)

// NewClient builds a client from cfg. A zero CacheTTL disables response caching.
func NewClient(cfg *config.SpotifyConfig, logger zerolog.Logger) (*Client, error) { //nolint:gocritic // zerolog.Logger is designed to be passed by value
	if cfg == nil {
		return nil, errors.New("spotify config is required")
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil || cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.APIBaseURL)
	}

	logger = logger.With().Str("component", "spotify").Logger()
	c := &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker:    newCircuitBreaker(breakerName, logger),
		limit:      cfg.TopTracksLimit,
		timeRange:  cfg.TimeRange,
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
		logger:     logger,
	}
	if cfg.CacheTTL > 0 {
		c.profiles = cache.New[Profile]("spotify_profile", cfg.CacheCapacity, cfg.CacheTTL)
		c.topTracks = cache.New[[]recommend.TopTrack]("spotify_top_tracks", cfg.CacheCapacity, cfg.CacheTTL)
	}
	return c, nil
}

// Profile returns the caller's profile.
func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	if token == "" {
		return Profile{}, ErrMissingToken
	}
	key := cache.SecretKey("profile", token)
	if c.profiles != nil {
		if p, ok := c.profiles.Get(key); ok {
			return p, nil
		}
	}

	p, err := castResult[Profile](c.breaker.execute(func() (interface{}, error) {
		var out Profile
		if err := c.doJSONRequest(ctx, requestConfig{endpoint: "me", path: "/me", token: token}, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}))
	if err != nil {
		c.logFailure(ctx, "me", token, err)
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.ID == "" {
		return Profile{}, fmt.Errorf("get profile: %w", &APIError{StatusCode: http.StatusOK, Message: "profile has no id"})
	}

	if c.profiles != nil {
		c.profiles.Set(key, *p)
	}
	return *p, nil
}

// TopTracks returns the caller's top tracks in service rank order, mapped to
// queries keyed by the track id and the first credited artist.
func (c *Client) TopTracks(ctx context.Context, token string) ([]recommend.TopTrack, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	key := cache.SecretKey("top_tracks:"+c.timeRange+":"+strconv.Itoa(c.limit), token)
	if c.topTracks != nil {
		if tracks, ok := c.topTracks.Get(key); ok {
			return tracks, nil
		}
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.limit))
	if c.timeRange != "" {
		query.Set("time_range", c.timeRange)
	}

	resp, err := castResult[topTracksResponse](c.breaker.execute(func() (interface{}, error) {
		var out topTracksResponse
		cfg := requestConfig{endpoint: "top_tracks", path: "/me/top/tracks", query: query, token: token}
		if err := c.doJSONRequest(ctx, cfg, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}))
	if err != nil {
		c.logFailure(ctx, "top_tracks", token, err)
		return nil, fmt.Errorf("get top tracks: %w", err)
	}

	tracks := toTopTracks(resp.Items)
	if c.topTracks != nil {
		c.topTracks.Set(key, tracks)
	}
	return tracks, nil
}

// BreakerState reports the circuit breaker state (closed, half-open, open).
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

func toTopTracks(items []trackObject) []recommend.TopTrack {
	tracks := make([]recommend.TopTrack, 0, len(items))
	for _, item := range items {
		t := recommend.TopTrack{TrackID: item.ID, TrackName: item.Name}
		if t.TrackID == "" {
			t.TrackID = item.URI
		}
		if len(item.Artists) > 0 {
			t.ArtistID = item.Artists[0].ID
			t.ArtistName = item.Artists[0].Name
		}
		tracks = append(tracks, t)
	}
	return tracks
}

func (c *Client) logFailure(ctx context.Context, endpoint, token string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	event := c.logger.Warn()
	if errors.Is(err, ErrUnauthorized) {
		event = c.logger.Debug()
	}
	event.Err(err).
		Str("endpoint", endpoint).
		Str("token", logging.SanitizeToken(token)).
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Msg("Music service request failed")
}
