// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/streamscope/internal/middleware"
)

// slowRequestThreshold raises request logs to warn level.
const slowRequestThreshold = 2 * time.Second

// NewRouter wires every route. ws serves /ws and may be nil.
func NewRouter(h *Handler, mw *ChiMiddleware, ws http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(slowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(mw.CORS())

	// Dashboard
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Compress(5, "text/html", "image/svg+xml"))
		r.Get("/", h.Dashboard)
		r.Get("/datasets/{id}", h.DatasetDashboard)
		r.With(mw.RateLimit()).Get("/datasets/{id}/charts/{view}.{format}", h.ChartImage)
		r.With(mw.RateLimit()).Post("/upload", h.UploadForm)
		r.With(mw.RateLimit()).Post("/datasets/{id}/delete", h.DeleteForm)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/datasets", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/", h.ListDatasets)
		r.Post("/", h.UploadDataset)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetDataset)
			r.Delete("/", h.DeleteDataset)
			r.Get("/overview", h.DatasetOverview)
			r.Get("/views/{view}", h.DatasetView)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	if ws != nil {
		r.Handle("/ws", ws)
	}

	return r
}
