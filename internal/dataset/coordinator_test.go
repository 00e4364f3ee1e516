// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/soundprint/internal/catalog"
)

// gatedLoader blocks every Load until release is closed and counts calls.
type gatedLoader struct {
	release chan struct{}
	calls   atomic.Int32
	err     atomic.Pointer[error]
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{release: make(chan struct{})}
}

func (l *gatedLoader) Load(ctx context.Context) (*Bundle, error) {
	l.calls.Add(1)
	select {
	case <-l.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if p := l.err.Load(); p != nil {
		return nil, *p
	}
	rows := []catalog.Row{row("t1", "a1", "One", "A", 100, catalog.Float(0.1), catalog.Float(0.1))}
	return Build(ctx, rows, nil, BundleMeta{Tier: TierSource})
}

func (l *gatedLoader) fail(err error) { l.err.Store(&err) }

func (l *gatedLoader) succeed() { l.err.Store(nil) }

func TestCoordinator_SingleBuildForConcurrentCallers(t *testing.T) {
	t.Parallel()

	loader := newGatedLoader()
	c := NewCoordinator(loader, CoordinatorConfig{}, zerolog.Nop())
	defer c.Close()

	const callers = 32
	var wg sync.WaitGroup
	results := make([]*Bundle, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.EnsureReady(context.Background(), 5*time.Second)
		}(i)
	}

	// Let every caller reach the wait before the build completes.
	deadline := time.Now().Add(2 * time.Second)
	for c.State() != StateLoading && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	if got := c.Builds(); got != 1 {
		t.Errorf("Builds() = %d, want 1", got)
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("loader calls = %d, want 1", got)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("caller %d saw a different bundle", i)
		}
	}
	if c.State() != StateReady {
		t.Errorf("State() = %v, want ready", c.State())
	}
	if results[0].Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", results[0].Generation())
	}
}

func TestCoordinator_TimeoutReturnsNotReady(t *testing.T) {
	t.Parallel()

	loader := newGatedLoader()
	c := NewCoordinator(loader, CoordinatorConfig{}, zerolog.Nop())
	defer c.Close()

	_, err := c.EnsureReady(context.Background(), 10*time.Millisecond)
	if !errors.Is(err, catalog.ErrDatasetNotReady) {
		t.Fatalf("err = %v, want ErrDatasetNotReady", err)
	}
	if c.State() != StateLoading {
		t.Errorf("State() = %v, want loading", c.State())
	}

	// The build keeps running after the caller gave up.
	close(loader.release)
	if _, err := c.EnsureReady(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("second EnsureReady: %v", err)
	}
	if got := c.Builds(); got != 1 {
		t.Errorf("Builds() = %d, want 1", got)
	}
}

func TestCoordinator_RequestContextDoesNotCancelBuild(t *testing.T) {
	t.Parallel()

	loader := newGatedLoader()
	c := NewCoordinator(loader, CoordinatorConfig{}, zerolog.Nop())
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.EnsureReady(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want wrapped context.Canceled", err)
	}

	close(loader.release)
	if _, err := c.EnsureReady(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("EnsureReady after cancelled caller: %v", err)
	}
}

func TestCoordinator_FailedInitialBuildAllowsRetry(t *testing.T) {
	t.Parallel()

	loader := newGatedLoader()
	close(loader.release)
	boom := errors.New("boom")
	loader.fail(boom)

	c := NewCoordinator(loader, CoordinatorConfig{}, zerolog.Nop())
	defer c.Close()

	_, err := c.EnsureReady(context.Background(), 5*time.Second)
	if !errors.Is(err, catalog.ErrDatasetNotReady) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrDatasetNotReady wrapping boom", err)
	}
	if c.State() != StateUnloaded {
		t.Errorf("State() = %v, want unloaded", c.State())
	}
	if !errors.Is(c.LastError(), boom) {
		t.Errorf("LastError() = %v", c.LastError())
	}

	loader.succeed()
	if _, err := c.EnsureReady(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := c.Builds(); got != 2 {
		t.Errorf("Builds() = %d, want 2", got)
	}
}

func TestCoordinator_RebuildSwapsAndFailureKeepsOld(t *testing.T) {
	t.Parallel()

	loader := newGatedLoader()
	close(loader.release)
	c := NewCoordinator(loader, CoordinatorConfig{}, zerolog.Nop())
	defer c.Close()

	first, err := c.EnsureReady(context.Background(), 5*time.Second)
	if err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}

	if err := c.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	second := c.Current()
	if second == first {
		t.Fatal("Rebuild did not publish a new bundle")
	}
	if second.Generation() != 2 {
		t.Errorf("Generation() = %d, want 2", second.Generation())
	}
	// A reader holding the first bundle still sees consistent data.
	if _, ok := first.Track(id22("t1")); !ok {
		t.Error("old bundle lost its data")
	}

	loader.fail(errors.New("broken source"))
	if err := c.Rebuild(context.Background()); err == nil {
		t.Fatal("expected rebuild error")
	}
	if c.Current() != second {
		t.Error("failed rebuild replaced the published bundle")
	}
	if c.State() != StateReady {
		t.Errorf("State() = %v, want ready", c.State())
	}
}

func TestCoordinator_ReloadingSameBundleKeepsPublishedGeneration(t *testing.T) {
	t.Parallel()

	rows := []catalog.Row{row("t1", "a1", "One", "A", 100, catalog.Float(0.1), catalog.Float(0.1))}
	shared, err := Build(context.Background(), rows, nil, BundleMeta{Tier: TierBundle})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := NewCoordinator(LoaderFunc(func(context.Context) (*Bundle, error) {
		return shared, nil
	}), CoordinatorConfig{}, zerolog.Nop())
	defer c.Close()

	first, err := c.EnsureReady(context.Background(), 5*time.Second)
	if err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if err := c.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if first.Generation() != 1 {
		t.Errorf("published bundle generation changed to %d", first.Generation())
	}
	if got := c.Current().Generation(); got != 2 {
		t.Errorf("Current().Generation() = %d, want 2", got)
	}
	if shared.Generation() != 0 {
		t.Errorf("loader's bundle was stamped: generation %d", shared.Generation())
	}
}

func TestCoordinator_TriggerRebuildSingleFlight(t *testing.T) {
	t.Parallel()

	loader := newGatedLoader()
	c := NewCoordinator(loader, CoordinatorConfig{}, zerolog.Nop())
	defer c.Close()

	if !c.TriggerRebuild() {
		t.Fatal("first TriggerRebuild returned false")
	}
	if c.TriggerRebuild() {
		t.Error("second TriggerRebuild started another build")
	}
	close(loader.release)
	if _, err := c.EnsureReady(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if got := c.Builds(); got != 1 {
		t.Errorf("Builds() = %d, want 1", got)
	}
}

func TestCoordinator_PanicBecomesError(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(LoaderFunc(func(context.Context) (*Bundle, error) {
		panic("bad data")
	}), CoordinatorConfig{}, zerolog.Nop())
	defer c.Close()

	if _, err := c.EnsureReady(context.Background(), 5*time.Second); err == nil {
		t.Fatal("expected error")
	}
	if c.State() != StateUnloaded {
		t.Errorf("State() = %v, want unloaded", c.State())
	}
}

func TestCoordinator_Close(t *testing.T) {
	t.Parallel()

	loader := newGatedLoader()
	c := NewCoordinator(loader, CoordinatorConfig{}, zerolog.Nop())
	c.TriggerRebuild()
	c.Close()

	if _, err := c.EnsureReady(context.Background(), time.Second); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}
