// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

/*
Package main is the entry point for the Streamscope server.

Streamscope turns a Netflix titles CSV export into an analytics dashboard:
upload a file, and the server cleans it, stores it in DuckDB and renders
six charts plus three headline metrics.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("streamscope")
	├── DataSupervisor ("data-layer")
	│   └── Retention janitor (optional, RETENTION_ENABLED=true)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub (dashboard refresh)
	│   └── Event processor (cache invalidation, broadcasts)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml, .env and environment
 2. Database: DuckDB, schema created on first start
 3. Cache and chart renderer
 4. Event bus: Watermill GoChannel behind a circuit breaker
 5. HTTP router: dashboard pages, JSON API, /metrics and /ws
 6. Supervisor tree

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the event bus and cache close, and DuckDB is
checkpointed and closed last.

# Example Usage

	export DATABASE_PATH=/data/streamscope.duckdb
	export SERVER_PORT=8501
	./streamscope

Upload a file from the command line:

	curl -F file=@netflix_titles.csv http://localhost:8501/api/v1/datasets
*/
package main
