// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/tomtom215/streamscope/internal/catalog"
	"github.com/tomtom215/streamscope/internal/events"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/metrics"
	"github.com/tomtom215/streamscope/internal/models"
)

// uploadField is the multipart form field holding the CSV.
const uploadField = "file"

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temporary file.
const multipartMemory = 8 << 20

var (
	errNoFile = errors.New("no file in upload")
	errStore  = errors.New("store dataset")
)

// ingestUpload reads the CSV from a multipart request, cleans it and
// stores it as a new dataset.
func (h *Handler) ingestUpload(w http.ResponseWriter, r *http.Request) (*models.Dataset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Upload.MaxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.UploadsRejected.WithLabelValues("too_large").Inc()
			return nil, err
		}
		metrics.UploadsRejected.WithLabelValues("no_file").Inc()
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		metrics.UploadsRejected.WithLabelValues("no_file").Inc()
		return nil, errNoFile
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	ctx := r.Context()

	ds, err := catalog.Load(file)
	if err != nil {
		metrics.UploadsRejected.WithLabelValues("invalid_csv").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("filename", sanitizeLogValue(filename)).Msg("Rejected upload")
		return nil, err
	}

	stored, err := h.db.InsertDataset(ctx, filename, ds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errStore, err)
	}
	metrics.RecordIngest(ds.RawRows, len(ds.Titles), ds.DuplicateRows, ds.InvalidDates)
	h.publish(ctx, events.Ingested(stored))
	return stored, nil
}

func (h *Handler) publish(ctx context.Context, evt models.DatasetEvent) {
	if h.events != nil {
		h.events.PublishQuietly(ctx, evt)
	}
}
