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
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/tomtom215/soundprint/internal/catalog"
)

// WriteRowCache writes rows as zstd-compressed JSON lines. It is the fallback
// flat-table cache used when the columnar export fails.
func WriteRowCache(path string, rows []catalog.Row) error {
	return writeAtomic(path, func(w io.Writer) error {
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(zw)
		for i := range rows {
			if err := enc.Encode(&rows[i]); err != nil {
				zw.Close() //nolint:errcheck // already failing
				return err
			}
		}
		return zw.Close()
	})
}

// ReadRowCache reads a file written by WriteRowCache. ctx is checked every
// cancelCheckEvery rows.
func ReadRowCache(ctx context.Context, path string) ([]catalog.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to open row cache: %w", err)
	}
	defer zr.Close()

	var rows []catalog.Row
	dec := json.NewDecoder(zr)
	for n := 0; ; n++ {
		if n%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var r catalog.Row
		if err := dec.Decode(&r); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode row cache: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// writeAtomic streams into a temporary sibling of path, syncs it and renames
// it into place. Failures are wrapped in catalog.ErrCacheWrite.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrCacheWrite, err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrCacheWrite, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // no-op after a successful rename

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close() //nolint:errcheck // already failing
		return fmt.Errorf("%w: %s: %w", catalog.ErrCacheWrite, path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close() //nolint:errcheck // already failing
		return fmt.Errorf("%w: %s: %w", catalog.ErrCacheWrite, path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close() //nolint:errcheck // already failing
		return fmt.Errorf("%w: %s: %w", catalog.ErrCacheWrite, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", catalog.ErrCacheWrite, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %s: %w", catalog.ErrCacheWrite, path, err)
	}
	return nil
}
