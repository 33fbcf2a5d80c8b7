// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/streamscope/internal/catalog"
)

func TestInsertDataset(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	got, err := db.InsertDataset(ctx, "netflix_titles.csv", loadTestDataset(t, testCSV))
	if err != nil {
		t.Fatalf("InsertDataset() error = %v", err)
	}
	if got.ID == "" {
		t.Error("InsertDataset() returned an empty id")
	}
	if got.RawRows != 6 || got.TitleCount != 5 || got.DuplicateRows != 1 || got.InvalidDates != 1 {
		t.Errorf("stats = %+v", got)
	}

	stored, err := db.GetDataset(ctx, got.ID)
	if err != nil {
		t.Fatalf("GetDataset() error = %v", err)
	}
	if stored.Filename != "netflix_titles.csv" || stored.TitleCount != 5 {
		t.Errorf("stored = %+v", stored)
	}
	if !stored.UploadedAt.Equal(got.UploadedAt) {
		t.Errorf("UploadedAt = %v, want %v", stored.UploadedAt, got.UploadedAt)
	}

	var genres, countries int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM title_genres WHERE dataset_id = ?`, got.ID).Scan(&genres); err != nil {
		t.Fatal(err)
	}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM title_countries WHERE dataset_id = ?`, got.ID).Scan(&countries); err != nil {
		t.Fatal(err)
	}
	// s1 2 genres, s2 1, s3 1, s4 2, s5 1; countries s2 has two.
	if genres != 7 {
		t.Errorf("title_genres rows = %d, want 7", genres)
	}
	if countries != 6 {
		t.Errorf("title_countries rows = %d, want 6", countries)
	}
}

// A duration number wider than the stored column is treated as missing
// rather than failing the whole upload.
func TestInsertDataset_OversizedDuration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const csv = `Show_Id,Category,Title,Director,Cast,Country,Release_Date,Rating,Duration,Type,Description
s1,Movie,Alpha,Ana Lee,,United States,"January 5, 2019",PG,90 min,Dramas,a
s2,Movie,Beta,Ana Lee,,India,"March 1, 2020",PG,3000000000 min,Dramas,b
`
	got, err := db.InsertDataset(ctx, "huge.csv", loadTestDataset(t, csv))
	if err != nil {
		t.Fatalf("InsertDataset() error = %v", err)
	}
	if got.TitleCount != 2 {
		t.Errorf("TitleCount = %d, want 2", got.TitleCount)
	}

	h, err := db.GetMovieDurations(ctx, got.ID, 0)
	if err != nil {
		t.Fatalf("GetMovieDurations() error = %v", err)
	}
	if h.Total != 1 || h.Max != 90 {
		t.Errorf("histogram total = %d max = %v, want 1 and 90", h.Total, h.Max)
	}
}

func TestInsertDataset_Empty(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.InsertDataset(context.Background(), "empty.csv", &catalog.Dataset{})
	if !errors.Is(err, catalog.ErrEmptyDataset) {
		t.Errorf("err = %v, want ErrEmptyDataset", err)
	}
}

func TestListDatasets(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	list, err := db.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("ListDatasets() error = %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("fresh database has %d datasets", len(list))
	}

	first, err := db.InsertDataset(ctx, "first.csv", loadTestDataset(t, testCSV))
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := db.InsertDataset(ctx, "second.csv", loadTestDataset(t, testCSV))
	if err != nil {
		t.Fatal(err)
	}

	list, err = db.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("ListDatasets() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("order = %s, %s; want newest first", list[0].Filename, list[1].Filename)
	}

	n, err := db.CountDatasets(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountDatasets() = %d, %v; want 2", n, err)
	}
}

func TestGetDataset_NotFound(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetDataset(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDataset(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	keep, err := db.InsertDataset(ctx, "keep.csv", loadTestDataset(t, testCSV))
	if err != nil {
		t.Fatal(err)
	}
	drop, err := db.InsertDataset(ctx, "drop.csv", loadTestDataset(t, testCSV))
	if err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteDataset(ctx, drop.ID); err != nil {
		t.Fatalf("DeleteDataset() error = %v", err)
	}
	if _, err := db.GetDataset(ctx, drop.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted dataset still readable: %v", err)
	}

	for _, table := range []string{"titles", "title_genres", "title_countries"} {
		var n int
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE dataset_id = ?", drop.ID).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%s still has %d rows for deleted dataset", table, n)
		}
	}

	if _, err := db.GetDataset(ctx, keep.ID); err != nil {
		t.Errorf("other dataset affected: %v", err)
	}

	if err := db.DeleteDataset(ctx, drop.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDatasetsOlderThan(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ds, err := db.InsertDataset(ctx, "old.csv", loadTestDataset(t, testCSV))
	if err != nil {
		t.Fatal(err)
	}

	ids, err := db.DeleteDatasetsOlderThan(ctx, ds.UploadedAt.Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteDatasetsOlderThan(past) error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("deleted %v with a cutoff before upload", ids)
	}

	ids, err = db.DeleteDatasetsOlderThan(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteDatasetsOlderThan(future) error = %v", err)
	}
	if len(ids) != 1 || ids[0] != ds.ID {
		t.Errorf("deleted = %v, want [%s]", ids, ds.ID)
	}
}
