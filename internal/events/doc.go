// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

/*
Package events carries dataset lifecycle notifications between components.

Uploads and deletions publish a models.DatasetEvent on an in-process
Watermill GoChannel. A Processor subscribes to those topics and fans each
event out to handlers that invalidate cached views and push updates to
connected dashboards.

Publishing is guarded by a circuit breaker so a wedged subscriber cannot
stall uploads. The router recovers handler panics and retries failures with
backoff.

Topics:

  - dataset.ingested: a new dataset was stored
  - dataset.deleted: a dataset was removed by a user or the janitor
*/
package events
