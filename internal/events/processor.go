// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/streamscope/internal/config"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/metrics"
	"github.com/tomtom215/streamscope/internal/models"
)

// HandlerFunc reacts to one dataset event. A returned error triggers retry.
type HandlerFunc func(ctx context.Context, evt models.DatasetEvent) error

// Handler binds a HandlerFunc to the topics it consumes.
type Handler struct {
	Name   string
	Topics []string
	Handle HandlerFunc
}

// Processor routes bus messages to handlers. It implements suture.Service;
// every Serve call builds a fresh Watermill router since a router cannot
// be restarted once closed.
type Processor struct {
	bus      *Bus
	cfg      config.EventsConfig
	handlers []Handler
	running  chan struct{}
}

// NewProcessor creates a processor for the given handlers.
func NewProcessor(bus *Bus, cfg config.EventsConfig, handlers ...Handler) *Processor {
	return &Processor{
		bus:      bus,
		cfg:      cfg,
		handlers: handlers,
		running:  make(chan struct{}),
	}
}

// Serve runs the router until ctx is canceled.
func (p *Processor) Serve(ctx context.Context) error {
	router, err := p.newRouter()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-router.Running():
			p.markRunning()
		case <-ctx.Done():
		}
	}()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// Running is closed once the first router has subscribed to every topic.
func (p *Processor) Running() <-chan struct{} {
	return p.running
}

func (p *Processor) markRunning() {
	select {
	case <-p.running:
	default:
		close(p.running)
	}
}

// String names the service for supervisor logs.
func (p *Processor) String() string {
	return "event-processor"
}

func (p *Processor) newRouter() (*message.Router, error) {
	closeTimeout := p.cfg.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = 10 * time.Second
	}
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: closeTimeout}, p.bus.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Outermost first: drop after retries, retry, then turn panics into errors.
	router.AddMiddleware(ackExhausted)
	if p.cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      p.cfg.RetryMaxRetries,
			InitialInterval: p.cfg.RetryInitialInterval,
			MaxInterval:     5 * time.Second,
			Multiplier:      2.0,
			Logger:          p.bus.logger,
		}
		router.AddMiddleware(retry.Middleware)
	}
	router.AddMiddleware(middleware.Recoverer)

	for _, h := range p.handlers {
		for _, topic := range h.Topics {
			router.AddConsumerHandler(h.Name+"."+topic, topic, p.bus.Subscriber(), consume(h))
		}
	}
	return router, nil
}

// ackExhausted acks a message whose handler still fails after retries.
// The GoChannel pub/sub redelivers nacked messages forever.
func ackExhausted(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := h(msg)
		if err != nil {
			logging.Error().Err(err).
				Str("message_uuid", msg.UUID).
				Str("topic", message.SubscribeTopicFromCtx(msg.Context())).
				Msg("Dropping dataset event after retries")
		}
		return msgs, nil
	}
}

// consume adapts a Handler to Watermill. Undecodable payloads are logged
// and acked; retrying them cannot succeed.
func consume(h Handler) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		evt, err := decode(msg)
		if err != nil {
			logging.Error().Err(err).Str("handler", h.Name).Str("message_uuid", msg.UUID).Msg("Dropping malformed dataset event")
			metrics.RecordEventHandled(h.Name, err)
			return nil
		}

		ctx := msg.Context()
		if reqID := msg.Metadata.Get("request_id"); reqID != "" {
			ctx = logging.ContextWithRequestID(ctx, reqID)
		}
		ctx = logging.ContextWithDatasetID(ctx, evt.DatasetID)

		err = h.Handle(ctx, evt)
		metrics.RecordEventHandled(h.Name, err)
		return err
	}
}
