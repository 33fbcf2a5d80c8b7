// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/streamscope/internal/events"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/metrics"
	"github.com/tomtom215/streamscope/internal/models"
)

// reasonUser marks deletions requested through the API or dashboard.
const reasonUser = "user"

// UploadDataset stores a CSV sent as multipart field "file" and returns the
// new dataset.
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ds, err := h.ingestUpload(w, r)
	if err != nil {
		status, code, message := uploadErrorStatus(err)
		var logged error
		if status >= http.StatusInternalServerError {
			logged = err
		}
		respondError(w, r, status, code, message, logged)
		return
	}

	w.Header().Set("Location", "/api/v1/datasets/"+ds.ID)
	respondSuccess(w, http.StatusCreated, ds, models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// ListDatasets returns every stored dataset, newest first.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	list, err := h.db.ListDatasets(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Dataset{}
	}
	respondSuccess(w, http.StatusOK, list, models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// GetDataset returns one dataset's summary.
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id, verr := datasetID(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	ds, err := h.db.GetDataset(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, ds, models.Metadata{})
}

// DeleteDataset removes a dataset and everything cached for it.
func (h *Handler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, verr := datasetID(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	if err := h.db.DeleteDataset(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}
	h.afterDelete(r, id)

	respondSuccess(w, http.StatusOK, map[string]string{"deleted": id}, models.Metadata{})
}

// DatasetOverview returns the headline metrics of a dataset.
func (h *Handler) DatasetOverview(w http.ResponseWriter, r *http.Request) {
	id, verr := datasetID(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	start := time.Now()
	o, err := h.db.GetOverview(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, struct {
		*models.Overview
		YearRange string `json:"year_range"`
	}{o, o.YearRange()}, models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// DatasetView returns the aggregated data behind one dashboard panel.
// An empty view is a successful response with empty=true and a warning.
func (h *Handler) DatasetView(w http.ResponseWriter, r *http.Request) {
	id, verr := datasetID(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}
	q, verr := viewQuery(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}
	view, _ := models.ParseViewName(q.View)

	start := time.Now()
	res, cached, err := h.loadView(r.Context(), id, view, h.viewOptions(view, q.Limit, q.Bins))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	meta := models.Metadata{Cached: cached}
	if !cached {
		meta.QueryTimeMS = time.Since(start).Milliseconds()
	}
	respondSuccess(w, http.StatusOK, res, meta)
}

// afterDelete evicts cached views and announces a user deletion.
func (h *Handler) afterDelete(r *http.Request, id string) {
	ctx := logging.ContextWithDatasetID(r.Context(), id)
	h.cache.InvalidateDataset(id)
	metrics.DatasetsDeleted.WithLabelValues(reasonUser).Inc()
	h.publish(ctx, events.Deleted(id, reasonUser))
	logging.Ctx(ctx).Info().Msg("Dataset deleted")
}
