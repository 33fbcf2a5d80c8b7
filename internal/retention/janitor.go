// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

// Package retention removes datasets older than a configured age.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/streamscope/internal/config"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/metrics"
	"github.com/tomtom215/streamscope/internal/models"
)

// ReasonRetention marks deletions made by the janitor.
const ReasonRetention = "retention"

// Store deletes expired datasets and reports their ids.
type Store interface {
	DeleteDatasetsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// Notifier is told about each deleted dataset.
type Notifier interface {
	PublishQuietly(ctx context.Context, evt models.DatasetEvent)
}

// Janitor runs the retention sweep on a cron schedule.
type Janitor struct {
	store    Store
	notifier Notifier
	schedule cron.Schedule
	maxAge   time.Duration
	now      func() time.Time
}

// New parses the schedule from cfg. notifier may be nil.
func New(cfg config.RetentionConfig, store Store, notifier Notifier) (*Janitor, error) {
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parse retention schedule %q: %w", cfg.Schedule, err)
	}
	if cfg.MaxAge <= 0 {
		return nil, fmt.Errorf("retention max age must be positive, got %s", cfg.MaxAge)
	}
	return &Janitor{
		store:    store,
		notifier: notifier,
		schedule: schedule,
		maxAge:   cfg.MaxAge,
		now:      time.Now,
	}, nil
}

// Serve runs sweeps until ctx is canceled. A sweep still in progress at
// shutdown is allowed to finish.
func (j *Janitor) Serve(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(j.schedule, cron.FuncJob(func() {
		if _, err := j.RunOnce(ctx); err != nil {
			logging.Error().Err(err).Msg("Retention sweep failed")
		}
	}))

	c.Start()
	logging.Info().
		Dur("max_age", j.maxAge).
		Time("next_run", j.schedule.Next(j.now())).
		Msg("Retention janitor started")

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// String names the service for supervisor logs.
func (j *Janitor) String() string {
	return "retention-janitor"
}

// RunOnce deletes every dataset uploaded before now minus the max age and
// returns the deleted ids.
func (j *Janitor) RunOnce(ctx context.Context) ([]string, error) {
	cutoff := j.now().UTC().Add(-j.maxAge)

	ids, err := j.store.DeleteDatasetsOlderThan(ctx, cutoff)
	if err != nil {
		metrics.RetentionRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("delete datasets older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	metrics.RetentionRuns.WithLabelValues("success").Inc()

	for _, id := range ids {
		metrics.DatasetsDeleted.WithLabelValues(ReasonRetention).Inc()
		if j.notifier != nil {
			j.notifier.PublishQuietly(ctx, models.DatasetEvent{
				Type:       models.DatasetEventDeleted,
				DatasetID:  id,
				Reason:     ReasonRetention,
				OccurredAt: j.now().UTC(),
			})
		}
	}

	if len(ids) > 0 {
		logging.Info().Int("deleted", len(ids)).Time("cutoff", cutoff).Msg("Retention sweep removed datasets")
	}
	return ids, nil
}
