// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

/*
Package services adapts Soundprint components to suture.Service.

Each wrapper implements

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer, which suture uses to name the service in its events.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server, or anything with ListenAndServe and Shutdown
  - Converts the blocking ListenAndServe into a context-driven Serve
  - Gives in-flight requests a bounded shutdown timeout to drain

Dataset (DatasetService):
  - Optionally starts the first bundle load and waits up to ReadyTimeout
  - Compares the source table's modification time against the served bundle
    every RefreshInterval
  - Triggers a background rebuild when the source is newer, or when no
    bundle is loaded yet
  - Counts each check in dataset_stale_checks_total by result (fresh, stale,
    error, unloaded)

Requests keep using the old bundle until a rebuild publishes the new one, so
a refresh never makes the API unavailable.

# Usage Example

	server := &http.Server{Addr: ":8080", Handler: router}

	tree.AddDataService(services.NewDatasetService(coord, resolver, services.DatasetServiceConfig{
	    LoadOnStartup:   true,
	    ReadyTimeout:    2 * time.Minute,
	    RefreshInterval: 10 * time.Minute,
	}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 30*time.Second))

# Error Handling

Both services return ctx.Err() on cancellation so the supervisor treats the
stop as clean. HTTPServerService returns a listen error (port in use) as a
failure, and suture restarts it with backoff. DatasetService never fails on a
bad build: the coordinator keeps the last good bundle and records the error,
which /api/v1/dataset/status reports.

# Testing

The services depend on small interfaces (HTTPServer, DatasetCoordinator,
StalenessChecker) so tests drive them with in-package fakes and no network
listener or DuckDB engine.
*/
package services
