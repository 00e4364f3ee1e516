// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package neighbors

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func fitted(t *testing.T, vectors [][]float64) *BruteForce {
	t.Helper()
	idx := NewBruteForce()
	if err := idx.Fit(vectors); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return idx
}

func TestBruteForce_QueryOrder(t *testing.T) {
	t.Parallel()

	idx := fitted(t, [][]float64{
		{0, 0},
		{3, 4},
		{1, 0},
		{0, 1}, // ties with index 2
		{10, 10},
	})

	got, err := idx.Query([]float64{0, 0}, 4)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	wantIdx := []int{0, 2, 3, 1}
	wantDist := []float64{0, 1, 1, 5}
	if len(got) != len(wantIdx) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIdx))
	}
	for i := range got {
		if got[i].Index != wantIdx[i] || math.Abs(got[i].Distance-wantDist[i]) > 1e-12 {
			t.Errorf("result[%d] = %+v, want index %d distance %v", i, got[i], wantIdx[i], wantDist[i])
		}
	}
}

func TestBruteForce_TieBreakKeepsLowerIndex(t *testing.T) {
	t.Parallel()

	idx := fitted(t, [][]float64{{1}, {-1}, {1}, {-1}})
	got, err := idx.Query([]float64{0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got[0].Index != 0 || got[1].Index != 1 {
		t.Errorf("got %+v, want indexes 0 and 1", got)
	}
}

func TestBruteForce_KLargerThanSet(t *testing.T) {
	t.Parallel()

	idx := fitted(t, [][]float64{{0}, {1}})
	got, err := idx.Query([]float64{0}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestBruteForce_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewBruteForce().Query([]float64{1}, 1); !errors.Is(err, ErrNotFitted) {
		t.Errorf("unfitted Query err = %v, want ErrNotFitted", err)
	}

	idx := NewBruteForce()
	if err := idx.Fit([][]float64{{1, 2}, {3}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("ragged Fit err = %v, want ErrDimensionMismatch", err)
	}
	if err := idx.Fit([][]float64{{math.NaN()}}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("NaN Fit err = %v, want ErrNonFinite", err)
	}

	idx = fitted(t, [][]float64{{1, 2}})
	if _, err := idx.Query([]float64{1}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("short query err = %v, want ErrDimensionMismatch", err)
	}
}

func TestBruteForce_Empty(t *testing.T) {
	t.Parallel()

	idx := fitted(t, nil)
	got, err := idx.Query([]float64{1, 2, 3}, 3)
	if err != nil || len(got) != 0 {
		t.Errorf("empty index Query = %v, %v", got, err)
	}
}

func TestQueryBatch(t *testing.T) {
	t.Parallel()

	idx := fitted(t, [][]float64{{0}, {10}, {20}})
	queries := [][]float64{{19}, {1}, {11}}

	got, err := QueryBatch(context.Background(), idx, queries, 1, 2)
	if err != nil {
		t.Fatalf("QueryBatch: %v", err)
	}
	want := []int{2, 0, 1}
	for i := range want {
		if got[i][0].Index != want[i] {
			t.Errorf("query %d nearest = %d, want %d", i, got[i][0].Index, want[i])
		}
	}
}

func TestQueryBatch_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idx := fitted(t, [][]float64{{0}})
	if _, err := QueryBatch(ctx, idx, [][]float64{{1}}, 1, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	vectors := make([][]float64, 5000)
	for i := range vectors {
		vectors[i] = []float64{float64(i), float64(i) / 7, -float64(i)}
	}
	idx := fitted(t, vectors)

	var buf bytes.Buffer
	if _, err := idx.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := ReadBruteForce(&buf)
	if err != nil {
		t.Fatalf("ReadBruteForce: %v", err)
	}
	if got.Len() != idx.Len() || got.Dim() != idx.Dim() {
		t.Fatalf("decoded %dx%d, want %dx%d", got.Len(), got.Dim(), idx.Len(), idx.Dim())
	}

	q := []float64{2500.2, 357, -2500}
	a, _ := idx.Query(q, 3)
	b, _ := got.Query(q, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("result %d: original %+v, decoded %+v", i, a[i], b[i])
		}
	}
}

func TestSaveLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.lz4")
	idx := fitted(t, [][]float64{{1, 2}, {3, 4}})
	if err := SaveFile(path, idx); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Len() != 2 || got.Vector(1)[1] != 4 {
		t.Errorf("loaded index = %+v", got)
	}
}

func TestReadBruteForce_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := ReadBruteForce(bytes.NewReader([]byte("not an index"))); err == nil {
		t.Error("expected error decoding garbage")
	}
}
