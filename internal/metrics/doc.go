// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

/*
Package metrics provides Prometheus metrics for Streamscope.

Collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8501/metrics

# Available Metrics

Database:
  - duckdb_query_duration_seconds{operation, table}
  - duckdb_query_errors_total{operation, table, error_type}

API:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests

Ingest:
  - datasets_ingested_total
  - dataset_rows_total{kind}: raw, titles, duplicates, invalid_dates
  - datasets_deleted_total{reason}: user, retention

Charts:
  - chart_renders_total{view, format}
  - chart_empty_views_total{view}
  - chart_render_duration_seconds{view}

Cache, WebSocket and events:
  - cache_hits_total, cache_misses_total, cache_entries{cache_type}
  - websocket_connections_active, websocket_messages_sent_total
  - events_published_total{topic, status}
  - circuit_breaker_state{name}, circuit_breaker_transitions_total{name, from, to}

Helpers such as RecordDBQuery and RecordIngest keep label handling in one
place so call sites stay short.
*/
package metrics
