// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

// Package database stores cleaned datasets in DuckDB and answers the
// dashboard view queries.
//
// # Organization
//
//   - database.go: connection lifecycle (open, pool, checkpoint, close)
//   - database_schema.go: table and index creation
//   - datasets.go: dataset insert, listing and deletion
//   - analytics_views.go: the six dashboard views and the overview
//   - histogram.go: equal-width binning for the duration view
//
// # Schema
//
// Every uploaded CSV becomes one row in datasets plus one row per cleaned
// title in titles. The multi-valued Type and Country columns are exploded
// at ingest into title_genres and title_countries, keyed by
// (dataset_id, row_num), so the genre and country views are plain GROUP BY
// queries.
//
// # Timeouts
//
// Methods accept a context. When the context has no deadline a 30 second
// timeout is applied so a stuck query cannot hang a request.
package database
