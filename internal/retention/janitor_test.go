// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/streamscope/internal/config"
	"github.com/tomtom215/streamscope/internal/models"
)

type fakeStore struct {
	cutoff time.Time
	ids    []string
	err    error
}

func (f *fakeStore) DeleteDatasetsOlderThan(_ context.Context, cutoff time.Time) ([]string, error) {
	f.cutoff = cutoff
	return f.ids, f.err
}

type fakeNotifier struct {
	events []models.DatasetEvent
}

func (f *fakeNotifier) PublishQuietly(_ context.Context, evt models.DatasetEvent) {
	f.events = append(f.events, evt)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.RetentionConfig
		wantErr bool
	}{
		{"descriptor", config.RetentionConfig{Schedule: "@every 1h", MaxAge: time.Hour}, false},
		{"cron spec", config.RetentionConfig{Schedule: "0 3 * * *", MaxAge: time.Hour}, false},
		{"bad schedule", config.RetentionConfig{Schedule: "whenever", MaxAge: time.Hour}, true},
		{"zero age", config.RetentionConfig{Schedule: "@daily"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.cfg, &fakeStore{}, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunOnce(t *testing.T) {
	t.Parallel()

	store := &fakeStore{ids: []string{"a", "b"}}
	notifier := &fakeNotifier{}
	j, err := New(config.RetentionConfig{Schedule: "@hourly", MaxAge: 48 * time.Hour}, store, notifier)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return now }

	ids, err := j.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v", ids)
	}
	if want := now.Add(-48 * time.Hour); !store.cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.cutoff, want)
	}
	if len(notifier.events) != 2 {
		t.Fatalf("published %d events, want 2", len(notifier.events))
	}
	for _, evt := range notifier.events {
		if evt.Type != models.DatasetEventDeleted || evt.Reason != ReasonRetention {
			t.Errorf("event = %+v", evt)
		}
	}
}

func TestRunOnce_StoreError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: errors.New("disk full")}
	notifier := &fakeNotifier{}
	j, err := New(config.RetentionConfig{Schedule: "@hourly", MaxAge: time.Hour}, store, notifier)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := j.RunOnce(context.Background()); err == nil {
		t.Error("expected error")
	}
	if len(notifier.events) != 0 {
		t.Errorf("published %d events on failure", len(notifier.events))
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	j, err := New(config.RetentionConfig{Schedule: "@every 1h", MaxAge: time.Hour}, &fakeStore{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- j.Serve(ctx) }()

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
