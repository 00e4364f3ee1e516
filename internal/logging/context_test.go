// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" {
		t.Error("expected empty request id")
	}

	id := GenerateRequestID()
	if len(id) != 36 || id == GenerateRequestID() {
		t.Errorf("GenerateRequestID() = %q", id)
	}
	if got := RequestIDFromContext(ContextWithRequestID(ctx, id)); got != id {
		t.Errorf("RequestIDFromContext = %q, want %q", got, id)
	}
}

func TestCtxAddsFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithUserID(ctx, "listener-0123456789")

	Ctx(ctx).Info().Msg("hello")
	out := buf.String()

	for _, want := range []string{`"request_id":"req-1"`, `"user_id":"list...6789"`, `"message":"hello"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, "listener-0123456789") {
		t.Error("full user id leaked into log")
	}
}

func TestCtxWithoutFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))

	l := CtxWith(ctx).Str("extra", "1").Logger()
	l.Info().Msg("plain")

	out := buf.String()
	if strings.Contains(out, "request_id") || strings.Contains(out, "user_id") {
		t.Errorf("unexpected context fields: %s", out)
	}
	if !strings.Contains(out, `"extra":"1"`) {
		t.Errorf("missing extra field: %s", out)
	}
}
