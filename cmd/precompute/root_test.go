// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/soundprint/internal/catalog"
)

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestStatusPlansSourceTier(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "tracks.csv")
	if err := os.WriteFile(source, []byte("id,artists\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCmd(t, "status", "--source", source, "--bundle-dir", filepath.Join(dir, "bundle"))
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	var plan struct {
		Tier    string   `json:"tier"`
		Reasons []string `json:"reasons"`
	}
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if plan.Tier != "source" {
		t.Errorf("tier = %q, want source", plan.Tier)
	}
	if len(plan.Reasons) != 3 {
		t.Fatalf("reasons = %v, want one per rejected tier", plan.Reasons)
	}
	if !strings.HasPrefix(plan.Reasons[0], "bundle: missing") {
		t.Errorf("reasons[0] = %q", plan.Reasons[0])
	}
}

func TestStatusMissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, _, err := runCmd(t, "status", "--source", filepath.Join(dir, "absent.csv"), "--bundle-dir", dir)
	if !errors.Is(err, catalog.ErrSourceMissing) {
		t.Fatalf("err = %v, want ErrSourceMissing", err)
	}
}

func TestRejectsPositionalArgs(t *testing.T) {
	t.Parallel()

	for _, sub := range []string{"build", "status", "normalize"} {
		t.Run(sub, func(t *testing.T) {
			t.Parallel()
			if _, _, err := runCmd(t, sub, "extra"); err == nil {
				t.Errorf("%s accepted a positional argument", sub)
			}
		})
	}
}
