// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package api

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/tomtom215/streamscope/internal/cache"
	"github.com/tomtom215/streamscope/internal/charts"
	"github.com/tomtom215/streamscope/internal/config"
	"github.com/tomtom215/streamscope/internal/database"
	"github.com/tomtom215/streamscope/internal/models"
)

// Version is reported by the health endpoint. Set at build time with
// -ldflags "-X github.com/tomtom215/streamscope/internal/api.Version=...".
var Version = "dev"

// EventPublisher announces dataset lifecycle changes.
type EventPublisher interface {
	PublishQuietly(ctx context.Context, evt models.DatasetEvent)
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_datasets.go: JSON dataset endpoints
//   - handlers_charts.go: chart images
//   - handlers_dashboard.go: HTML pages and the upload form
//   - handlers_health.go: health probes
type Handler struct {
	db        *database.DB
	cache     *cache.Cache
	renderer  *charts.Renderer
	events    EventPublisher
	config    *config.Config
	pages     *template.Template
	startTime time.Time
}

// NewHandler creates a handler. events may be nil.
func NewHandler(db *database.DB, c *cache.Cache, renderer *charts.Renderer, events EventPublisher, cfg *config.Config) (*Handler, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse dashboard templates: %w", err)
	}
	return &Handler{
		db:        db,
		cache:     c,
		renderer:  renderer,
		events:    events,
		config:    cfg,
		pages:     pages,
		startTime: time.Now(),
	}, nil
}

// viewOptions fills unset query options from the analytics config.
func (h *Handler) viewOptions(view models.ViewName, limit, bins int) models.ViewOptions {
	a := h.config.Analytics
	opts := models.ViewOptions{Limit: limit, Bins: bins}
	if opts.Limit == 0 {
		switch view {
		case models.ViewGenreTrends:
			opts.Limit = a.TopGenres
		case models.ViewTopCountries:
			opts.Limit = a.TopCountries
		case models.ViewTopDirectors:
			opts.Limit = a.TopDirectors
		case models.ViewTVSeasons:
			opts.Limit = a.TopSeasons
		}
	}
	if opts.Bins == 0 && view == models.ViewMovieDurations {
		opts.Bins = a.DurationBins
	}
	// Options a view ignores must not split its cache entries.
	switch view {
	case models.ViewCategoryByYear:
		opts = models.ViewOptions{}
	case models.ViewMovieDurations:
		opts.Limit = 0
	default:
		opts.Bins = 0
	}
	return opts
}

type viewKey struct {
	View models.ViewName
	Opts models.ViewOptions
}

// loadView returns a view result, from the cache when possible.
func (h *Handler) loadView(ctx context.Context, id string, view models.ViewName, opts models.ViewOptions) (*models.ViewResult, bool, error) {
	key := cache.DatasetKey(id, "view", viewKey{View: view, Opts: opts})
	if cached, ok := h.cache.Get(key); ok {
		if res, ok := cached.(*models.ViewResult); ok {
			return res, true, nil
		}
	}

	res, err := h.db.GetView(ctx, id, view, opts)
	if err != nil {
		return nil, false, err
	}
	h.cache.Set(key, res)
	return res, false, nil
}
