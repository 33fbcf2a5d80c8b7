// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

/*
Package supervisor runs the long-lived parts of the server under a suture
supervisor tree.

	streamscope (root)
	├── data-layer       retention janitor
	├── messaging-layer  websocket hub, event processor
	└── api-layer        HTTP server

A service that panics or returns an error is restarted with backoff by its
layer supervisor. Repeated failures in one layer do not stop the others, so
the dashboard keeps serving charts even if event delivery is failing.

Supervisor events are logged through sutureslog using the zerolog-backed
slog handler from the logging package.
*/
package supervisor
