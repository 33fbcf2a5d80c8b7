// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/streamscope/internal/models"
)

// Topics.
const (
	TopicDatasetIngested = "dataset.ingested"
	TopicDatasetDeleted  = "dataset.deleted"
)

// ErrUnknownEventType is returned for events whose type has no topic.
var ErrUnknownEventType = errors.New("unknown dataset event type")

// TopicFor maps an event type to its topic.
func TopicFor(eventType string) (string, error) {
	switch eventType {
	case models.DatasetEventIngested:
		return TopicDatasetIngested, nil
	case models.DatasetEventDeleted:
		return TopicDatasetDeleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
}

// Ingested builds the event for a newly stored dataset.
func Ingested(ds *models.Dataset) models.DatasetEvent {
	return models.DatasetEvent{
		Type:       models.DatasetEventIngested,
		DatasetID:  ds.ID,
		Filename:   ds.Filename,
		TitleCount: ds.TitleCount,
		OccurredAt: time.Now().UTC(),
	}
}

// Deleted builds the event for a removed dataset. reason is "user" or
// "retention".
func Deleted(id, reason string) models.DatasetEvent {
	return models.DatasetEvent{
		Type:       models.DatasetEventDeleted,
		DatasetID:  id,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}

func encode(evt models.DatasetEvent) (*message.Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode dataset event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("dataset_id", evt.DatasetID)
	return msg, nil
}

func decode(msg *message.Message) (models.DatasetEvent, error) {
	var evt models.DatasetEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return evt, fmt.Errorf("decode dataset event: %w", err)
	}
	return evt, nil
}
