// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/streamscope/internal/config"
	"github.com/tomtom215/streamscope/internal/models"
)

func testConfig() config.EventsConfig {
	return config.EventsConfig{
		BufferSize:           16,
		RetryMaxRetries:      2,
		RetryInitialInterval: time.Millisecond,
		CloseTimeout:         time.Second,
		BreakerFailures:      3,
		BreakerTimeout:       time.Second,
	}
}

// startProcessor runs p until the test ends and waits for subscriptions.
func startProcessor(t *testing.T, p *Processor) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-p.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("processor did not start")
	}
}

type recorder struct {
	mu     sync.Mutex
	events []models.DatasetEvent
	got    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{got: make(chan struct{}, 16)}
}

func (r *recorder) handle(_ context.Context, evt models.DatasetEvent) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	r.got <- struct{}{}
	return nil
}

func (r *recorder) wait(t *testing.T, n int) []models.DatasetEvent {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.got:
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d of %d events", i, n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.DatasetEvent(nil), r.events...)
}

func TestTopicFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		eventType string
		want      string
		wantErr   bool
	}{
		{models.DatasetEventIngested, TopicDatasetIngested, false},
		{models.DatasetEventDeleted, TopicDatasetDeleted, false},
		{"dataset_renamed", "", true},
	}
	for _, tt := range tests {
		got, err := TopicFor(tt.eventType)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("TopicFor(%q) = %q, %v", tt.eventType, got, err)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownEventType) {
			t.Errorf("err = %v, want ErrUnknownEventType", err)
		}
	}
}

func TestBus_DeliversToHandlers(t *testing.T) {
	bus := NewBus(testConfig())
	defer bus.Close()

	rec := newRecorder()
	p := NewProcessor(bus, testConfig(), Handler{
		Name:   "recorder",
		Topics: []string{TopicDatasetIngested, TopicDatasetDeleted},
		Handle: rec.handle,
	})
	startProcessor(t, p)

	ctx := context.Background()
	ds := &models.Dataset{ID: "d1", Filename: "netflix.csv", TitleCount: 42}
	if err := bus.Publish(ctx, Ingested(ds)); err != nil {
		t.Fatalf("Publish(ingested) error = %v", err)
	}
	if err := bus.Publish(ctx, Deleted("d1", "user")); err != nil {
		t.Fatalf("Publish(deleted) error = %v", err)
	}

	events := rec.wait(t, 2)
	types := map[string]models.DatasetEvent{}
	for _, e := range events {
		types[e.Type] = e
	}
	if got := types[models.DatasetEventIngested]; got.TitleCount != 42 || got.Filename != "netflix.csv" {
		t.Errorf("ingested event = %+v", got)
	}
	if got := types[models.DatasetEventDeleted]; got.Reason != "user" || got.DatasetID != "d1" {
		t.Errorf("deleted event = %+v", got)
	}
}

func TestProcessor_RetriesFailedHandler(t *testing.T) {
	bus := NewBus(testConfig())
	defer bus.Close()

	var calls atomic.Int32
	done := make(chan struct{})
	p := NewProcessor(bus, testConfig(), Handler{
		Name:   "flaky",
		Topics: []string{TopicDatasetDeleted},
		Handle: func(context.Context, models.DatasetEvent) error {
			if calls.Add(1) == 1 {
				return errors.New("transient")
			}
			close(done)
			return nil
		},
	})
	startProcessor(t, p)

	if err := bus.Publish(context.Background(), Deleted("d2", "retention")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not retried")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestProcessor_DropsAfterRetries(t *testing.T) {
	bus := NewBus(testConfig())
	defer bus.Close()

	var calls atomic.Int32
	p := NewProcessor(bus, testConfig(), Handler{
		Name:   "broken",
		Topics: []string{TopicDatasetDeleted},
		Handle: func(context.Context, models.DatasetEvent) error {
			calls.Add(1)
			return errors.New("permanent")
		},
	})
	startProcessor(t, p)

	if err := bus.Publish(context.Background(), Deleted("d4", "user")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	want := int32(testConfig().RetryMaxRetries + 1)
	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() < want && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// Give a redelivery time to show up.
	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != want {
		t.Errorf("calls = %d, want %d", got, want)
	}
}

func TestProcessor_RecoversPanics(t *testing.T) {
	bus := NewBus(testConfig())
	defer bus.Close()

	var calls atomic.Int32
	done := make(chan struct{})
	p := NewProcessor(bus, testConfig(), Handler{
		Name:   "panicky",
		Topics: []string{TopicDatasetIngested},
		Handle: func(context.Context, models.DatasetEvent) error {
			if calls.Add(1) == 1 {
				panic("boom")
			}
			close(done)
			return nil
		},
	})
	startProcessor(t, p)

	if err := bus.Publish(context.Background(), Ingested(&models.Dataset{ID: "d3"})); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not recover from panic")
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	t.Parallel()

	bus := NewBus(testConfig())
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if err := bus.Publish(context.Background(), Deleted("x", "user")); !errors.Is(err, ErrBusClosed) {
		t.Errorf("err = %v, want ErrBusClosed", err)
	}
}

func TestBus_RejectsUnknownType(t *testing.T) {
	t.Parallel()

	bus := NewBus(testConfig())
	defer bus.Close()

	err := bus.Publish(context.Background(), models.DatasetEvent{Type: "bogus", DatasetID: "x"})
	if !errors.Is(err, ErrUnknownEventType) {
		t.Errorf("err = %v, want ErrUnknownEventType", err)
	}
	if bus.BreakerState() != "closed" {
		t.Errorf("breaker = %s, want closed", bus.BreakerState())
	}
}

type fakeInvalidator struct{ ids []string }

func (f *fakeInvalidator) InvalidateDataset(id string) int {
	f.ids = append(f.ids, id)
	return 1
}

type fakeBroadcaster struct {
	types []string
}

func (f *fakeBroadcaster) Broadcast(msgType string, _ interface{}) {
	f.types = append(f.types, msgType)
}

func TestBuiltinHandlers(t *testing.T) {
	t.Parallel()

	inv := &fakeInvalidator{}
	bc := &fakeBroadcaster{}
	evt := Deleted("d9", "user")

	if err := CacheInvalidation(inv).Handle(context.Background(), evt); err != nil {
		t.Fatal(err)
	}
	if err := DashboardBroadcast(bc).Handle(context.Background(), evt); err != nil {
		t.Fatal(err)
	}
	if len(inv.ids) != 1 || inv.ids[0] != "d9" {
		t.Errorf("invalidated = %v", inv.ids)
	}
	if len(bc.types) != 1 || bc.types[0] != models.DatasetEventDeleted {
		t.Errorf("broadcast = %v", bc.types)
	}
}
