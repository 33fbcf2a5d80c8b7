// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- hub.Serve(ctx) }()
	t.Cleanup(cancel)
	return hub, cancel, errc
}

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(url, header)
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	hub, _, _ := startHub(t)
	srv := httptest.NewServer(NewHandler(hub, []string{"http://dash.example"}))
	defer srv.Close()

	var conns []*websocket.Conn
	for i := 0; i < 2; i++ {
		conn, _, err := dial(t, srv, "http://dash.example")
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
		conns = append(conns, conn)
	}
	waitForClients(t, hub, 2)

	hub.Broadcast("dataset_ingested", map[string]string{"dataset_id": "abc"})

	for i, conn := range conns {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("client %d read: %v", i, err)
		}
		if msg.Type != "dataset_ingested" || msg.Data["dataset_id"] != "abc" {
			t.Errorf("client %d got %+v", i, msg)
		}
	}
}

func TestHub_PingPong(t *testing.T) {
	hub, _, _ := startHub(t)
	srv := httptest.NewServer(NewHandler(hub, []string{"*"}))
	defer srv.Close()

	conn, _, err := dial(t, srv, "http://anywhere.example")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != MessageTypePong {
		t.Errorf("type = %q, want pong", msg.Type)
	}
}

func TestHandler_RejectsOrigins(t *testing.T) {
	hub, _, _ := startHub(t)
	srv := httptest.NewServer(NewHandler(hub, []string{"http://dash.example"}))
	defer srv.Close()

	for _, origin := range []string{"", "http://evil.example"} {
		_, resp, err := dial(t, srv, origin)
		if err == nil {
			t.Errorf("origin %q: expected handshake failure", origin)
			continue
		}
		if resp == nil || resp.StatusCode != http.StatusForbidden {
			t.Errorf("origin %q: response = %v", origin, resp)
		}
	}
}

func TestHub_ServeStopsOnCancel(t *testing.T) {
	hub, cancel, errc := startHub(t)
	srv := httptest.NewServer(NewHandler(hub, []string{"*"}))
	defer srv.Close()

	conn, _, err := dial(t, srv, "http://x.example")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after shutdown", hub.ClientCount())
	}

	// The server closes the socket once the hub is gone.
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to be closed")
	}
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	t.Parallel()

	hub := NewHub() // not running
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.Broadcast("dataset_deleted", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Broadcast blocked with no hub loop")
	}
}

func TestMarshalMessage(t *testing.T) {
	t.Parallel()

	b, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"type":"pong"}` {
		t.Errorf("MarshalMessage = %s", b)
	}
}
