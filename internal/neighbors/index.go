// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

// Package neighbors provides exact Euclidean nearest-neighbor search over
// dense feature vectors, with an LZ4-compressed on-disk form.
package neighbors

import (
	"context"
	"errors"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFitted is returned by Query before Fit has succeeded.
	ErrNotFitted = errors.New("neighbors: index not fitted")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the index dimensionality.
	ErrDimensionMismatch = errors.New("neighbors: dimension mismatch")

	// ErrNonFinite is returned when Fit receives NaN or Inf values.
	ErrNonFinite = errors.New("neighbors: non-finite value")
)

// Neighbor is one search hit: the position of the vector in the fitted set and
// its distance from the query.
type Neighbor struct {
	Index    int
	Distance float64
}

// Index is a fitted nearest-neighbor structure.
//
// Query results are sorted by ascending distance; equal distances are ordered
// by ascending Index. Implementations must be safe for concurrent queries once
// fitted.
type Index interface {
	Fit(vectors [][]float64) error
	Query(vector []float64, k int) ([]Neighbor, error)
	Len() int
	Dim() int
}

// Persistent is an Index with a binary encoding.
type Persistent interface {
	Index
	io.WriterTo
}

// QueryBatch runs Query for each vector using up to workers goroutines.
// Results are aligned with queries. A non-positive workers uses GOMAXPROCS.
func QueryBatch(ctx context.Context, idx Index, queries [][]float64, k, workers int) ([][]Neighbor, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([][]Neighbor, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := idx.Query(queries[i], k)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
