// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/soundprint/internal/catalog"
	"github.com/tomtom215/soundprint/internal/config"
)

// Artifact file names inside the bundle directory.
const (
	ArtistsFile  = "artist_features_by_id.json.zst"
	TracksFile   = "track_by_id.json.zst"
	CatalogFile  = "neighbor_catalog.parquet"
	IndexFile    = "neighbor_index.lz4"
	ManifestFile = "source_mtime.txt"
)

// Paths locates the source file and every cache tier derived from it.
type Paths struct {
	Source        string
	BundleDir     string
	ColumnarCache string
	RowCache      string
}

// NewPaths derives the flat-table cache locations from the source file name:
// "data/tracks.csv" caches as "data/tracks.normalized.parquet" and
// "data/tracks.normalized.jsonl.zst".
func NewPaths(source, bundleDir string) Paths {
	stem := strings.TrimSuffix(source, filepath.Ext(source))
	return Paths{
		Source:        source,
		BundleDir:     bundleDir,
		ColumnarCache: stem + ".normalized.parquet",
		RowCache:      stem + ".normalized.jsonl.zst",
	}
}

// PathsFromConfig is NewPaths with the flat-table cache overrides applied.
func PathsFromConfig(cfg *config.DatasetConfig) Paths {
	p := NewPaths(cfg.SourcePath, cfg.BundleDir)
	if cfg.ColumnarCachePath != "" {
		p.ColumnarCache = cfg.ColumnarCachePath
	}
	if cfg.RowCachePath != "" {
		p.RowCache = cfg.RowCachePath
	}
	return p
}

// Artifact returns the path of a bundle artifact.
func (p Paths) Artifact(name string) string {
	return filepath.Join(p.BundleDir, name)
}

// SourceModTime returns the raw source file's modification time.
func (p Paths) SourceModTime() (time.Time, error) {
	info, err := os.Stat(p.Source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, fmt.Errorf("%w: %s", catalog.ErrSourceMissing, p.Source)
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// freshFile reports whether path exists and was modified no earlier than
// sourceMod.
func freshFile(path string, sourceMod time.Time) (exists, fresh bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return true, !info.ModTime().Before(sourceMod)
}
