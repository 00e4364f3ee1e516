// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

// Package logging is the zerolog-based structured logging layer for Soundprint.
//
// A process-wide logger is configured once from main with Init and is usable
// before that with JSON output at info level. Components take a child logger
// via WithComponent, or receive a zerolog.Logger by value through their
// constructors so tests can pass zerolog.Nop().
//
// # Overview
//
// The package provides:
//   - A global zerolog logger with package-level helpers (Info, Warn, Error...)
//   - JSON output for production and console output for development
//   - Request and listener ids carried in context.Context
//   - A log/slog handler for sutureslog
//   - Redaction helpers for access tokens, Authorization headers and emails
//
// # Quick Start
//
//	import "github.com/tomtom215/soundprint/internal/logging"
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("source", path).Int("tracks", n).Msg("Dataset loaded")
//	logging.Error().Err(err).Str("tier", "columnar").Msg("Cache unreadable")
//
// # Configuration
//
// Environment variables, read by internal/config:
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
//
// Programmatic configuration:
//
//	logging.Init(logging.Config{
//	    Level:  "debug",
//	    Format: "console",
//	    Caller: true,
//	    Output: os.Stderr,
//	})
//
// # Component Loggers
//
// Long-lived components log under a component field:
//
//	logger := logging.WithComponent("dataset")
//	logger.Info().Str("tier", "bundle").Msg("Dataset published")
//
// Constructors in internal/dataset, internal/recommend and internal/spotify
// take the logger as a parameter and add the field themselves.
//
// # Request Context
//
// The HTTP request-ID middleware stores an id with ContextWithRequestID. The
// /me handlers add the listener id with ContextWithUserID once the profile is
// known. Ctx and CtxWith attach both fields to every line:
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("Top tracks fetch failed")
//
// produces
//
//	{"level":"warn","request_id":"5b0c...","user_id":"smit...7f2a","error":"...","message":"Top tracks fetch failed"}
//
// # Redaction
//
// Access tokens never appear in logs verbatim: use SanitizeToken, or
// SanitizeAuthorization for a raw header value. Emails go through
// SanitizeEmail and listener ids through SanitizeUserID. SanitizeValue picks
// the right helper from a field name.
//
// # slog Adapter
//
// NewSlogLogger bridges zerolog to log/slog for sutureslog, which reports
// supervisor events (service restarts, backoff) through slog. Groups become
// dotted keys; see SlogHandler.
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger is
// guarded by a sync.RWMutex so Init may run while other goroutines log.
//
// # Testing
//
// NewTestLogger writes JSON to a buffer for assertions:
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logger.Info().Msg("test message")
//	if !strings.Contains(buf.String(), `"message":"test message"`) { ... }
//
// # See Also
//
//   - github.com/rs/zerolog: underlying logger
//   - internal/middleware: request-ID middleware
//   - internal/supervisor: sutureslog wiring
package logging
