// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

/*
Package models defines the HTTP wire types shared by handlers and tests.

Every endpoint answers with an APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 4, "generation": 2}
	}

Errors use the same envelope with status "error" and a stable machine code
(see the Err* constants), so clients branch on error.code rather than on
message text.

Request bodies carry validate tags for go-playground/validator; handlers
run them through the validation package before touching the engine.
*/
package models
