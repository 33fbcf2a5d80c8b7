// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/streamscope/internal/config"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/metrics"
	"github.com/tomtom215/streamscope/internal/models"
)

// breakerName labels the publish circuit breaker in metrics and logs.
const breakerName = "event_publisher"

// ErrBusClosed is returned when publishing after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Bus is an in-process pub/sub for dataset events.
type Bus struct {
	pubsub  *gochannel.GoChannel
	breaker *gobreaker.CircuitBreaker[interface{}]
	logger  watermill.LoggerAdapter
	cfg     config.EventsConfig

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus. Publishing never blocks on subscribers; messages
// are buffered up to cfg.BufferSize per subscription.
func NewBus(cfg config.EventsConfig) *Bus {
	logger := NewLoggerAdapter()
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.BufferSize,
		}, logger),
		breaker: newCircuitBreaker(breakerName, cfg),
		logger:  logger,
		cfg:     cfg,
	}
}

func newCircuitBreaker(name string, cfg config.EventsConfig) *gobreaker.CircuitBreaker[interface{}] {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

// Publish sends evt to its topic.
func (b *Bus) Publish(ctx context.Context, evt models.DatasetEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	topic, err := TopicFor(evt.Type)
	if err != nil {
		return err
	}
	msg, err := encode(evt)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	if reqID := logging.RequestIDFromContext(ctx); reqID != "" {
		msg.Metadata.Set("request_id", reqID)
	}

	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.pubsub.Publish(topic, msg)
	})
	metrics.RecordEventPublished(topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishQuietly publishes evt and logs instead of returning a failure.
// Event delivery is best effort; the write that produced evt has already
// committed.
func (b *Bus) PublishQuietly(ctx context.Context, evt models.DatasetEvent) {
	if err := b.Publish(ctx, evt); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("dataset_id", evt.DatasetID).
			Str("event_type", evt.Type).
			Msg("Failed to publish dataset event")
	}
}

// Subscriber exposes the bus to routers.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// BreakerState reports the publish circuit breaker state.
func (b *Bus) BreakerState() string {
	return b.breaker.State().String()
}

// Close stops delivery to all subscribers. Safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
