// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/streamscope/internal/cache"
	"github.com/tomtom215/streamscope/internal/charts"
	"github.com/tomtom215/streamscope/internal/database"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/models"
	"github.com/tomtom215/streamscope/internal/validation"
)

type chartKey struct {
	View   models.ViewName
	Opts   models.ViewOptions
	Format charts.Format
}

// ChartImage renders one dashboard panel as SVG or PNG. Views with nothing
// to plot answer 404 with the panel's warning as plain text.
func (h *Handler) ChartImage(w http.ResponseWriter, r *http.Request) {
	id, verr := datasetID(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}
	vq, verr := viewQuery(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}
	q := validation.ChartQuery{ViewQuery: vq, Format: chi.URLParam(r, "format")}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidationError(w, verr)
		return
	}

	view, _ := models.ParseViewName(q.View)
	format, _ := charts.ParseFormat(q.Format)
	opts := h.viewOptions(view, q.Limit, q.Bins)

	key := cache.DatasetKey(id, "chart", chartKey{View: view, Opts: opts, Format: format})
	if cached, ok := h.cache.Get(key); ok {
		if img, ok := cached.([]byte); ok {
			writeImage(w, format, img)
			return
		}
	}

	res, _, err := h.loadView(r.Context(), id, view, opts)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "Dataset not found", http.StatusNotFound)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("view", string(view)).Msg("Failed to load chart data")
		http.Error(w, "Failed to load chart data", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, res, format); err != nil {
		if errors.Is(err, charts.ErrEmptyView) {
			http.Error(w, res.Warning, http.StatusNotFound)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("view", string(view)).Msg("Failed to render chart")
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	img := buf.Bytes()
	h.cache.Set(key, img)
	writeImage(w, format, img)
}

func writeImage(w http.ResponseWriter, format charts.Format, img []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(img); err != nil {
		logging.Debug().Err(err).Msg("Failed to write chart image")
	}
}
