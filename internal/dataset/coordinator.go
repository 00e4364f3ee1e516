// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/metrics"
)

// Loader produces a complete bundle. Resolver is the production Loader.
type Loader interface {
	Load(ctx context.Context) (*Bundle, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*Bundle, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (*Bundle, error) { return f(ctx) }

// State is the coordinator's lifecycle state.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unloaded"
	}
}

// Default timeouts.
const (
	DefaultReadyTimeout = 120 * time.Second
	DefaultBuildTimeout = 30 * time.Minute
)

// ErrClosed is returned by operations on a closed coordinator.
var ErrClosed = errors.New("dataset coordinator closed")

// CoordinatorConfig configures a Coordinator.
type CoordinatorConfig struct {
	// ReadyTimeout bounds EnsureReady when the caller passes no timeout.
	ReadyTimeout time.Duration
	// BuildTimeout bounds a single build attempt.
	BuildTimeout time.Duration
}

// attempt is one build. done is closed after err and bundle are set.
type attempt struct {
	done   chan struct{}
	bundle *Bundle
	err    error
}

// Coordinator owns the published bundle. It guarantees at most one build runs
// at a time, runs builds detached from the requests that trigger them, and
// publishes finished bundles with a single atomic pointer swap.
type Coordinator struct {
	loader Loader
	cfg    CoordinatorConfig
	logger zerolog.Logger

	mu       sync.Mutex
	state    State
	inflight *attempt
	lastErr  error
	closed   bool

	bundle     atomic.Pointer[Bundle]
	builds     atomic.Int64
	generation atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCoordinator creates a coordinator in the Unloaded state.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCoordinator(loader Loader, cfg CoordinatorConfig, logger zerolog.Logger) *Coordinator {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = DefaultBuildTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		loader: loader,
		cfg:    cfg,
		logger: logger.With().Str("component", "dataset_coordinator").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// EnsureReady returns the published bundle, starting the initial build if
// none is running and waiting up to timeout for it. A non-positive timeout
// uses the configured ReadyTimeout. Errors wrap catalog.ErrDatasetNotReady.
func (c *Coordinator) EnsureReady(ctx context.Context, timeout time.Duration) (*Bundle, error) {
	if b := c.bundle.Load(); b != nil {
		return b, nil
	}

	a, b, err := c.start(false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrDatasetNotReady, err)
	}
	if b != nil {
		return b, nil
	}

	if timeout <= 0 {
		timeout = c.cfg.ReadyTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-a.done:
		// A rebuild may have failed while an earlier bundle is still served.
		if b := c.bundle.Load(); b != nil {
			return b, nil
		}
		return nil, fmt.Errorf("%w: %w", catalog.ErrDatasetNotReady, a.err)
	case <-timer.C:
		return nil, catalog.ErrDatasetNotReady
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", catalog.ErrDatasetNotReady, ctx.Err())
	}
}

// Ready reports whether a bundle is available within timeout.
func (c *Coordinator) Ready(ctx context.Context, timeout time.Duration) bool {
	_, err := c.EnsureReady(ctx, timeout)
	return err == nil
}

// Current returns the published bundle without blocking, or nil.
func (c *Coordinator) Current() *Bundle {
	return c.bundle.Load()
}

// Rebuild forces a new build and waits for it. If a build is already running
// the caller joins it instead of starting another. On failure the previously
// published bundle stays in service.
func (c *Coordinator) Rebuild(ctx context.Context) error {
	a, _, err := c.start(true)
	if err != nil {
		return err
	}
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerRebuild starts a rebuild in the background. It reports false when a
// build was already running or the coordinator is closed.
func (c *Coordinator) TriggerRebuild() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.inflight != nil {
		return false
	}
	c.startLocked()
	return true
}

// State returns the lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error of the most recent build, or nil.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Builds returns how many builds have been started.
func (c *Coordinator) Builds() int64 {
	return c.builds.Load()
}

// Close cancels any running build and waits for it to exit. The published
// bundle stays readable.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

// start returns the running attempt, or the published bundle when force is
// false and one exists, or a newly started attempt.
func (c *Coordinator) start(force bool) (*attempt, *Bundle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, nil, ErrClosed
	}
	if !force {
		if b := c.bundle.Load(); b != nil {
			return nil, b, nil
		}
	}
	if c.inflight != nil {
		return c.inflight, nil, nil
	}
	return c.startLocked(), nil, nil
}

// startLocked launches a build. c.mu must be held and no build running.
func (c *Coordinator) startLocked() *attempt {
	a := &attempt{done: make(chan struct{})}
	c.inflight = a
	c.state = StateLoading
	metrics.DatasetState.Set(float64(StateLoading))
	c.builds.Add(1)

	c.wg.Add(1)
	go c.run(a)
	return a
}

func (c *Coordinator) run(a *attempt) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.BuildTimeout)
	defer cancel()

	start := time.Now()
	c.logger.Info().Int64("build", c.builds.Load()).Msg("Dataset build started")

	b, err := c.load(ctx)
	elapsed := time.Since(start)

	c.mu.Lock()
	if err == nil {
		// Stamp a shallow copy: the loader may hand back a bundle that is
		// already published and being read.
		published := *b
		published.generation = c.generation.Add(1)
		b = &published
		c.bundle.Store(b)
		c.state = StateReady
	} else if c.bundle.Load() != nil {
		c.state = StateReady
	} else {
		c.state = StateUnloaded
	}
	c.lastErr = err
	c.inflight = nil
	a.bundle, a.err = b, err
	state := c.state
	c.mu.Unlock()
	close(a.done)

	metrics.DatasetState.Set(float64(state))
	metrics.DatasetBuildDuration.Observe(elapsed.Seconds())
	if err != nil {
		metrics.DatasetBuilds.WithLabelValues("failure").Inc()
		c.logger.Error().Err(err).Dur("duration", elapsed).Str("state", state.String()).Msg("Dataset build failed")
		return
	}
	metrics.DatasetBuilds.WithLabelValues("success").Inc()
	metrics.DatasetGeneration.Set(float64(b.generation))
	metrics.DatasetCatalogSize.Set(float64(len(b.entries)))
	c.logger.Info().
		Uint64("generation", b.generation).
		Str("tier", b.tier.String()).
		Dur("duration", elapsed).
		Msg("Dataset published")
}

// load calls the loader and turns a panic into an error so a bad dataset
// cannot leave the coordinator stuck in Loading.
func (c *Coordinator) load(ctx context.Context) (b *Bundle, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("dataset build panicked: %v", r)
		}
	}()
	b, err = c.loader.Load(ctx)
	if err == nil && b == nil {
		err = errors.New("loader returned no bundle")
	}
	return b, err
}
