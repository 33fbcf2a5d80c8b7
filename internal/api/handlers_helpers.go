// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package api

import (
	"errors"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/streamscope/internal/catalog"
	"github.com/tomtom215/streamscope/internal/database"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/models"
	"github.com/tomtom215/streamscope/internal/validation"
)

// Error codes.
const (
	codeValidation      = "VALIDATION_ERROR"
	codeNotFound        = "NOT_FOUND"
	codePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	codeInvalidCSV      = "INVALID_CSV"
	codeDatabase        = "DATABASE_ERROR"
	codeInternal        = "INTERNAL_ERROR"
)

// respondJSON writes a JSON response with an ETag.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, status int, data interface{}, meta models.Metadata) {
	meta.Timestamp = time.Now().UTC()
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// respondError writes an error envelope. err, when non-nil, is logged but
// never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}

func respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}

// respondStoreError maps database errors to responses.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, codeNotFound, "Dataset not found", nil)
		return
	}
	respondError(w, r, http.StatusInternalServerError, codeDatabase, "Database query failed", err)
}

// uploadErrorStatus classifies an upload failure into a status, code and
// message that is safe to show the user.
func uploadErrorStatus(err error) (int, string, string) {
	var (
		tooLarge *http.MaxBytesError
		missing  *catalog.MissingColumnsError
		parseErr *catalog.ParseError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, codePayloadTooLarge,
			"File is larger than " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes"
	case errors.Is(err, errNoFile):
		return http.StatusBadRequest, codeValidation, "Choose a CSV file to upload"
	case errors.As(err, &missing):
		return http.StatusBadRequest, codeInvalidCSV, missing.Error()
	case errors.Is(err, catalog.ErrEmptyDataset):
		return http.StatusBadRequest, codeInvalidCSV, "The CSV file has no rows"
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, codeInvalidCSV, "The file could not be read as CSV"
	case errors.Is(err, errStore):
		return http.StatusInternalServerError, codeDatabase, "Failed to store dataset"
	default:
		return http.StatusInternalServerError, codeInternal, "Upload failed"
	}
}

// datasetID reads and validates the {id} route parameter.
func datasetID(r *http.Request) (string, *validation.RequestValidationError) {
	p := validation.DatasetParam{ID: chi.URLParam(r, "id")}
	if verr := validation.ValidateStruct(&p); verr != nil {
		return "", verr
	}
	return p.ID, nil
}

// viewQuery reads the {view} route parameter plus limit and bins.
func viewQuery(r *http.Request) (validation.ViewQuery, *validation.RequestValidationError) {
	q := validation.ViewQuery{
		View:  chi.URLParam(r, "view"),
		Limit: intParam(r, "limit"),
		Bins:  intParam(r, "bins"),
	}
	return q, validation.ValidateStruct(&q)
}

// intParam returns 0 for an absent parameter and -1 for a non-numeric one,
// which the range validators then reject.
func intParam(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}

// generateETag hashes a response body with FNV-1a.
func generateETag(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return `"` + strconv.FormatUint(uint64(h.Sum32()), 16) + `"`
}

// sanitizeLogValue strips line breaks so client-controlled text cannot
// forge log lines.
func sanitizeLogValue(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
