// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package neighbors

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
)

// File layout, LZ4 frame compressed:
//
//	magic   [4]byte "SPNN"
//	version uint16
//	dim     uint32
//	count   uint64
//	data    count*dim float64, little endian, row-major
const (
	codecMagic   = "SPNN"
	codecVersion = 1
	chunkFloats  = 4096
)

// ErrBadFormat is returned when decoding data that is not a BruteForce index.
var ErrBadFormat = errors.New("neighbors: unrecognized index encoding")

// WriteTo encodes the fitted index into w.
func (b *BruteForce) WriteTo(w io.Writer) (int64, error) {
	if !b.fitted {
		return 0, ErrNotFitted
	}

	cw := &countingWriter{w: w}
	zw := lz4.NewWriter(cw)

	var hdr [4 + 2 + 4 + 8]byte
	copy(hdr[:4], codecMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], codecVersion)
	binary.LittleEndian.PutUint32(hdr[6:10], uint32(b.dim))
	binary.LittleEndian.PutUint64(hdr[10:18], uint64(b.n))
	if _, err := zw.Write(hdr[:]); err != nil {
		return cw.n, err
	}

	buf := make([]byte, 8*chunkFloats)
	for start := 0; start < len(b.data); start += chunkFloats {
		end := min(start+chunkFloats, len(b.data))
		p := buf[:8*(end-start)]
		for i, f := range b.data[start:end] {
			binary.LittleEndian.PutUint64(p[8*i:], math.Float64bits(f))
		}
		if _, err := zw.Write(p); err != nil {
			return cw.n, err
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadBruteForce decodes an index written by BruteForce.WriteTo.
func ReadBruteForce(r io.Reader) (*BruteForce, error) {
	zr := lz4.NewReader(r)

	var hdr [18]byte
	if _, err := io.ReadFull(zr, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFormat, err)
	}
	if string(hdr[:4]) != codecMagic {
		return nil, ErrBadFormat
	}
	if v := binary.LittleEndian.Uint16(hdr[4:6]); v != codecVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadFormat, v)
	}
	dim := int(binary.LittleEndian.Uint32(hdr[6:10]))
	n := int(binary.LittleEndian.Uint64(hdr[10:18]))
	if n < 0 || (n > 0 && dim <= 0) {
		return nil, fmt.Errorf("%w: dim=%d count=%d", ErrBadFormat, dim, n)
	}

	data := make([]float64, n*dim)
	buf := make([]byte, 8*chunkFloats)
	for start := 0; start < len(data); start += chunkFloats {
		end := min(start+chunkFloats, len(data))
		p := buf[:8*(end-start)]
		if _, err := io.ReadFull(zr, p); err != nil {
			return nil, fmt.Errorf("%w: truncated data: %w", ErrBadFormat, err)
		}
		for i := range data[start:end] {
			data[start+i] = math.Float64frombits(binary.LittleEndian.Uint64(p[8*i:]))
		}
	}

	if n == 0 {
		data, dim = nil, 0
	}
	return &BruteForce{dim: dim, n: n, data: data, fitted: true}, nil
}

// SaveFile writes idx to path atomically: the data goes to a temporary file in
// the same directory which is synced and renamed over path.
func SaveFile(path string, idx Persistent) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // no-op after a successful rename

	bw := bufio.NewWriter(f)
	if _, err := idx.WriteTo(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFile reads an index written by SaveFile.
func LoadFile(path string) (*BruteForce, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBruteForce(bufio.NewReader(f))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
