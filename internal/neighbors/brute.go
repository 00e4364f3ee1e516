// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package neighbors

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// BruteForce is an exact index that scans every fitted vector per query.
// Vectors are stored row-major in a single backing slice.
type BruteForce struct {
	dim    int
	n      int
	data   []float64
	fitted bool
}

// NewBruteForce returns an unfitted index.
func NewBruteForce() *BruteForce {
	return &BruteForce{}
}

// Fit copies vectors into the index, replacing any previous contents.
func (b *BruteForce) Fit(vectors [][]float64) error {
	if len(vectors) == 0 {
		b.dim, b.n, b.data, b.fitted = 0, 0, nil, true
		return nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("%w: zero-length vector", ErrDimensionMismatch)
	}

	data := make([]float64, 0, dim*len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d values, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for _, f := range v {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%w at vector %d", ErrNonFinite, i)
			}
		}
		data = append(data, v...)
	}

	b.dim, b.n, b.data, b.fitted = dim, len(vectors), data, true
	return nil
}

// Len returns the number of fitted vectors.
func (b *BruteForce) Len() int { return b.n }

// Dim returns the vector dimensionality, or 0 when empty.
func (b *BruteForce) Dim() int { return b.dim }

// Vector returns the i-th fitted vector. The slice aliases index storage.
func (b *BruteForce) Vector(i int) []float64 {
	return b.data[i*b.dim : (i+1)*b.dim : (i+1)*b.dim]
}

// Query returns the k nearest fitted vectors to q.
func (b *BruteForce) Query(q []float64, k int) ([]Neighbor, error) {
	if !b.fitted {
		return nil, ErrNotFitted
	}
	if b.n == 0 {
		return []Neighbor{}, nil
	}
	if len(q) != b.dim {
		return nil, fmt.Errorf("%w: query has %d values, want %d", ErrDimensionMismatch, len(q), b.dim)
	}
	if k > b.n {
		k = b.n
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}

	h := make(worstFirst, 0, k)
	for i := 0; i < b.n; i++ {
		d := floats.Distance(q, b.Vector(i), 2)
		if len(h) < k {
			heap.Push(&h, Neighbor{Index: i, Distance: d})
			continue
		}
		// Rows are visited in index order, so an equal distance never
		// displaces the current worst.
		if d < h[0].Distance {
			h[0] = Neighbor{Index: i, Distance: d}
			heap.Fix(&h, 0)
		}
	}

	out := []Neighbor(h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}

// worstFirst is a max-heap on (Distance, Index).
type worstFirst []Neighbor

func (h worstFirst) Len() int { return len(h) }

func (h worstFirst) Less(i, j int) bool {
	if h[i].Distance != h[j].Distance {
		return h[i].Distance > h[j].Distance
	}
	return h[i].Index > h[j].Index
}

func (h worstFirst) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(Neighbor)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

var _ Persistent = (*BruteForce)(nil)
