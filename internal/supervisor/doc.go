// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

/*
Package supervisor runs the server's long-lived services under suture.

The tree has two layers. The data layer owns the dataset lifecycle: the
initial load and the periodic check that rebuilds the bundle when the source
table changes. The api layer owns the HTTP server. Each layer restarts its
own failed services with backoff, and supervisor events are logged through
sutureslog into the process zerolog logger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewDatasetService(coord, resolver, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 30*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

# Shutdown

Canceling the context stops the layers; each service gets ShutdownTimeout to
return. UnstoppedServiceReport names any that did not.

See package services for the service wrappers.
*/
package supervisor
