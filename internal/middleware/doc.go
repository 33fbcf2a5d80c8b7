// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

/*
Package middleware provides chi-compatible HTTP middleware.

  - RequestID: reuses X-Request-ID from a proxy or generates a UUID, echoes
    it in the response and stores it in the context for logging.Ctx
  - PrometheusMetrics: request counts, latency and in-flight gauge, labeled
    by chi route pattern so path parameters do not explode cardinality
  - RequestLogger: one structured log line per request, raised to warn
    level when a request is slower than the threshold

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(2 * time.Second))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
