// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/neighbors"
)

// unixSeconds renders t the way the manifest stores it. Both sides of the
// freshness comparison go through this so float rounding cannot make a bundle
// look older than its own source.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// ReadManifest returns the source modification time recorded in dir, in Unix
// seconds.
func ReadManifest(dir string) (float64, error) {
	data, err := os.ReadFile(ManifestPath(dir))
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid manifest: %w", err)
	}
	return v, nil
}

// ManifestPath returns the manifest location for a bundle directory.
func ManifestPath(dir string) string {
	return Paths{BundleDir: dir}.Artifact(ManifestFile)
}

// bundleValid reports whether every artifact is present and the manifest
// records a source time no earlier than sourceMod.
func bundleValid(p Paths, sourceMod time.Time) (bool, string) {
	for _, name := range []string{ArtistsFile, TracksFile, CatalogFile, IndexFile, ManifestFile} {
		if _, err := os.Stat(p.Artifact(name)); err != nil {
			return false, "missing " + name
		}
	}
	recorded, err := ReadManifest(p.BundleDir)
	if err != nil {
		return false, "unreadable manifest"
	}
	if recorded < unixSeconds(sourceMod) {
		return false, "source newer than bundle"
	}
	return true, ""
}

// SaveBundle writes every artifact of b into p.BundleDir. The manifest is
// removed first and written last, so an interrupted save leaves a bundle
// that fails validation rather than a mixed one that passes.
func SaveBundle(ctx context.Context, engine *Engine, p Paths, b *Bundle) error {
	idx, ok := b.index.(neighbors.Persistent)
	if !ok {
		return fmt.Errorf("%w: neighbor index %T cannot be persisted", catalog.ErrCacheWrite, b.index)
	}
	if err := os.MkdirAll(p.BundleDir, 0o750); err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrCacheWrite, err)
	}
	if err := os.Remove(p.Artifact(ManifestFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", catalog.ErrCacheWrite, err)
	}

	if err := writeJSONZstd(p.Artifact(ArtistsFile), b.artists); err != nil {
		return err
	}
	if err := writeJSONZstd(p.Artifact(TracksFile), b.tracks); err != nil {
		return err
	}
	if err := engine.WriteNeighborCatalog(ctx, p.Artifact(CatalogFile), b.entries); err != nil {
		return err
	}
	if err := neighbors.SaveFile(p.Artifact(IndexFile), idx); err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrCacheWrite, err)
	}

	return writeAtomic(p.Artifact(ManifestFile), func(w io.Writer) error {
		_, err := io.WriteString(w, strconv.FormatFloat(unixSeconds(b.sourceMod), 'f', -1, 64)+"\n")
		return err
	})
}

// LoadBundle reads the four artifacts concurrently.
func LoadBundle(ctx context.Context, engine *Engine, p Paths, sourceMod time.Time) (*Bundle, error) {
	var (
		artists map[string]catalog.ArtistAggregate
		tracks  map[string]catalog.TrackRecord
		entries []catalog.NeighborEntry
		index   *neighbors.BruteForce
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readJSONZstd(p.Artifact(ArtistsFile), &artists)
	})
	g.Go(func() error {
		return readJSONZstd(p.Artifact(TracksFile), &tracks)
	})
	g.Go(func() error {
		var err error
		entries, err = engine.ReadNeighborCatalog(gctx, p.Artifact(CatalogFile))
		return err
	})
	g.Go(func() error {
		var err error
		index, err = neighbors.LoadFile(p.Artifact(IndexFile))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load bundle from %s: %w", p.BundleDir, err)
	}

	return NewBundle(tracks, artists, entries, index, BundleMeta{
		SourceModTime: sourceMod,
		Tier:          TierBundle,
	})
}

func writeJSONZstd(path string, v any) error {
	return writeAtomic(path, func(w io.Writer) error {
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if err := json.NewEncoder(zw).Encode(v); err != nil {
			zw.Close() //nolint:errcheck // already failing
			return err
		}
		return zw.Close()
	})
}

func readJSONZstd(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		return err
	}
	defer zr.Close()

	if err := json.NewDecoder(zr).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
