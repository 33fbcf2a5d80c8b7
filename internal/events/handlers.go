// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package events

import (
	"context"

	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/models"
)

// Invalidator drops cached results for a dataset.
type Invalidator interface {
	InvalidateDataset(datasetID string) int
}

// Broadcaster pushes a typed message to every connected client.
type Broadcaster interface {
	Broadcast(msgType string, data interface{})
}

// CacheInvalidation evicts cached views when a dataset goes away. New
// datasets have nothing cached, but ingest events also evict in case an
// id was reused.
func CacheInvalidation(c Invalidator) Handler {
	return Handler{
		Name:   "cache_invalidation",
		Topics: []string{TopicDatasetIngested, TopicDatasetDeleted},
		Handle: func(ctx context.Context, evt models.DatasetEvent) error {
			if n := c.InvalidateDataset(evt.DatasetID); n > 0 {
				logging.Ctx(ctx).Debug().Int("entries", n).Msg("Invalidated cached views")
			}
			return nil
		},
	}
}

// DashboardBroadcast forwards every dataset event to websocket clients
// so open dashboards can refresh their dataset list.
func DashboardBroadcast(b Broadcaster) Handler {
	return Handler{
		Name:   "dashboard_broadcast",
		Topics: []string{TopicDatasetIngested, TopicDatasetDeleted},
		Handle: func(_ context.Context, evt models.DatasetEvent) error {
			b.Broadcast(evt.Type, evt)
			return nil
		},
	}
}
