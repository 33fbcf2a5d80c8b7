// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	datasetIDKey contextKey = "dataset_id"
)

// GenerateRequestID returns a new random request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID stores an HTTP request ID in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithDatasetID tags ctx with the dataset an operation works on.
func ContextWithDatasetID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, datasetIDKey, id)
}

// DatasetIDFromContext returns the dataset ID stored in ctx, or "".
func DatasetIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(datasetIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger carrying the request and dataset IDs found in ctx.
//
//	logging.Ctx(r.Context()).Info().Str("view", name).Msg("view rendered")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if id := DatasetIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("dataset_id", id)
	}
	l := logCtx.Logger()
	return &l
}
