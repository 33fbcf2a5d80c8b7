// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/streamscope/internal/cache"
	"github.com/tomtom215/streamscope/internal/charts"
	"github.com/tomtom215/streamscope/internal/config"
	"github.com/tomtom215/streamscope/internal/database"
	"github.com/tomtom215/streamscope/internal/models"
)

// testDBSemaphore serializes DuckDB usage across tests.
var testDBSemaphore = make(chan struct{}, 1)

// moviesCSV holds three movies and no TV shows, so tv_seasons is empty.
const moviesCSV = `Show_Id,Category,Title,Director,Cast,Country,Release_Date,Rating,Duration,Type,Description
s1,Movie,Alpha,Ana Lee,,United States,"January 5, 2019",PG,90 min,"Dramas, Comedies",a
s2,Movie,Beta,Ana Lee,,"United States, India","March 1, 2020",PG,120 min,Dramas,b
s3,Movie,Gamma,Bo Chen,,India,"May 9, 2018",PG,100 min,Thrillers,c
`

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.DatasetEvent
}

func (p *recordingPublisher) PublishQuietly(_ context.Context, evt models.DatasetEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{MaxBytes: 1 << 20},
		Analytics: config.AnalyticsConfig{
			TopGenres:    8,
			TopCountries: 10,
			TopDirectors: 10,
			TopSeasons:   10,
			DurationBins: 30,
			CacheTTL:     time.Minute,
			ChartWidth:   800,
			ChartHeight:  400,
		},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
	}
}

type testServer struct {
	handler   *Handler
	router    http.Handler
	publisher *recordingPublisher
}

func setupTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB"})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	c := cache.New(cfg.Analytics.CacheTTL)
	t.Cleanup(func() {
		c.Close()
		_ = db.Close()
	})

	pub := &recordingPublisher{}
	h, err := NewHandler(db, c, charts.NewRenderer(cfg.Analytics.ChartWidth, cfg.Analytics.ChartHeight), pub, cfg)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	mw := NewChiMiddleware(ChiMiddlewareConfigFrom(cfg.Security))
	return &testServer{handler: h, router: NewRouter(h, mw, nil), publisher: pub}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	} else if err := mw.WriteField("note", "no file here"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart Close() error = %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, path, field, content string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, field, "netflix_titles.csv", content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return req
}

// uploadDataset stores csv through the JSON API and returns the dataset.
func (s *testServer) uploadDataset(t *testing.T, csv string) models.Dataset {
	t.Helper()
	rec := s.do(t, uploadRequest(t, "/api/v1/datasets", uploadField, csv))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var ds models.Dataset
	decodeData(t, rec, &ds)
	return ds
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) models.Metadata {
	t.Helper()
	var resp struct {
		Data     json.RawMessage `json:"data"`
		Metadata models.Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(resp.Data, into); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, resp.Data)
	}
	return resp.Metadata
}
