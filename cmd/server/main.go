// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/streamscope/internal/api"
	"github.com/tomtom215/streamscope/internal/cache"
	"github.com/tomtom215/streamscope/internal/charts"
	"github.com/tomtom215/streamscope/internal/config"
	"github.com/tomtom215/streamscope/internal/database"
	"github.com/tomtom215/streamscope/internal/events"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/retention"
	"github.com/tomtom215/streamscope/internal/supervisor"
	"github.com/tomtom215/streamscope/internal/supervisor/services"
	ws "github.com/tomtom215/streamscope/internal/websocket"
)

const (
	httpIdleTimeout     = 60 * time.Second
	httpShutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Streamscope exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Streamscope")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	viewCache := cache.New(cfg.Analytics.CacheTTL)
	defer viewCache.Close()

	renderer := charts.NewRenderer(cfg.Analytics.ChartWidth, cfg.Analytics.ChartHeight)

	bus := events.NewBus(cfg.Events)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	hub := ws.NewHub()
	processor := events.NewProcessor(bus, cfg.Events,
		events.CacheInvalidation(viewCache),
		events.DashboardBroadcast(hub),
	)

	handler, err := api.NewHandler(db, viewCache, renderer, bus, cfg)
	if err != nil {
		return err
	}
	router := api.NewRouter(handler,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)),
		ws.NewHandler(hub, cfg.Security.CORSOrigins),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       httpIdleTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	if cfg.Retention.Enabled {
		janitor, err := retention.New(cfg.Retention, db, bus)
		if err != nil {
			return fmt.Errorf("configure retention: %w", err)
		}
		tree.AddDataService(janitor)
		logging.Info().
			Str("schedule", cfg.Retention.Schedule).
			Dur("max_age", cfg.Retention.MaxAge).
			Msg("Retention janitor added to supervisor tree")
	}

	tree.AddMessagingService(hub)
	tree.AddMessagingService(processor)
	tree.AddAPIService(services.NewHTTPServerService(server, httpShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The supervisor sends exactly one result and never closes the channel.
	errCh := tree.ServeBackground(ctx)
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	stop()
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Streamscope stopped")
	return nil
}
