// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// IDLength is the length, in characters, of a canonical catalog identifier.
const IDLength = 22

// ServiceDomain marks an identifier field as a URL rather than a URI.
const ServiceDomain = "spotify.com"

const uriScheme = "spotify"

// Kind is the entity type embedded in a compact URI.
type Kind string

const (
	KindTrack  Kind = "track"
	KindArtist Kind = "artist"
)

// Prefix returns the compact URI prefix for the kind, e.g. "spotify:track:".
func (k Kind) Prefix() string {
	return uriScheme + ":" + string(k) + ":"
}

// ExtractID returns the canonical identifier encoded in raw.
//
// URLs (anything containing ServiceDomain) yield their last path segment after
// trailing slashes are removed. Everything else has the kind's URI prefix
// removed. The result is accepted only when it is exactly IDLength characters.
func ExtractID(raw string, kind Kind) (string, bool) {
	return extract(raw, kind.Prefix())
}

// ExtractIDs normalizes a batch of raw values. Rejected values are returned as
// the empty string so the output stays aligned with the input.
func ExtractIDs(raws []string, kind Kind) []string {
	prefix := kind.Prefix()
	out := make([]string, len(raws))
	for i, raw := range raws {
		out[i], _ = extract(raw, prefix)
	}
	return out
}

func extract(raw, prefix string) (string, bool) {
	s := strings.TrimSpace(raw)

	var id string
	if strings.Contains(s, ServiceDomain) {
		s = strings.TrimRight(s, "/")
		id = s[strings.LastIndexByte(s, '/')+1:]
	} else {
		id = strings.ReplaceAll(s, prefix, "")
	}

	if utf8.RuneCountInString(id) != IDLength {
		return "", false
	}
	return id, true
}

// IDExpr returns a DuckDB SQL expression applying the ExtractID rule to a
// column, yielding NULL for rejected values. It lets ingestion normalize a
// whole column inside the query engine instead of row by row in Go.
func IDExpr(column string, kind Kind) string {
	s := fmt.Sprintf("trim(CAST(%s AS VARCHAR))", column)
	candidate := fmt.Sprintf(
		"(CASE WHEN contains(%[1]s, '%[2]s') THEN string_split(rtrim(%[1]s, '/'), '/')[-1] ELSE replace(%[1]s, '%[3]s', '') END)",
		s, ServiceDomain, kind.Prefix(),
	)
	return fmt.Sprintf("(CASE WHEN length(%[1]s) = %[2]d THEN %[1]s END)", candidate, IDLength)
}
