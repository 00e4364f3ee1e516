// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

// Command precompute builds the dataset bundle offline so the server can
// start from the cheapest cache tier.
//
//	precompute status                 # which tier the server would load
//	precompute normalize              # refresh the columnar and row caches
//	precompute build --source x.csv   # write the precomputed bundle
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
