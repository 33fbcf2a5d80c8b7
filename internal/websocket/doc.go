// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

/*
Package websocket pushes dataset lifecycle updates to open dashboards.

A Hub owns the set of connected clients. The event processor calls
Hub.Broadcast for every dataset event; each client has its own buffered
send queue and a client whose queue is full is dropped instead of slowing
the hub down.

Message format:

	{"type": "dataset_ingested", "data": {"dataset_id": "...", ...}}

Clients may send {"type": "ping"} and receive {"type": "pong"}.

The hub implements suture.Service through Serve and String so it can run
under the application supervisor.
*/
package websocket
