// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package database

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/streamscope/internal/models"
)

func setupTestDBWithData(t *testing.T) (*DB, string) {
	t.Helper()
	db := setupTestDB(t)
	ds, err := db.InsertDataset(context.Background(), "netflix_titles.csv", loadTestDataset(t, testCSV))
	if err != nil {
		t.Fatalf("InsertDataset() error = %v", err)
	}
	return db, ds.ID
}

func TestGetOverview(t *testing.T) {
	db, id := setupTestDBWithData(t)

	o, err := db.GetOverview(context.Background(), id)
	if err != nil {
		t.Fatalf("GetOverview() error = %v", err)
	}
	if o.TotalTitles != 5 {
		t.Errorf("TotalTitles = %d, want 5", o.TotalTitles)
	}
	if got := o.YearRange(); got != "2019 - 2020" {
		t.Errorf("YearRange() = %q, want 2019 - 2020", got)
	}
	if o.TopCountry != "India" || o.TopCountryCount != 2 {
		t.Errorf("top country = %q (%d), want India (2)", o.TopCountry, o.TopCountryCount)
	}

	if _, err := db.GetOverview(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing dataset err = %v, want ErrNotFound", err)
	}
}

func TestGetOverview_NoDatedRows(t *testing.T) {
	db := setupTestDB(t)
	csv := "Release_Date,Type,Category,Country,Director,Duration\n" +
		"unknown,Dramas,Movie,India,,90 min\n"
	ds, err := db.InsertDataset(context.Background(), "undated.csv", loadTestDataset(t, csv))
	if err != nil {
		t.Fatal(err)
	}

	o, err := db.GetOverview(context.Background(), ds.ID)
	if err != nil {
		t.Fatalf("GetOverview() error = %v", err)
	}
	if o.YearMin != nil || o.YearMax != nil || o.YearRange() != "n/a" {
		t.Errorf("year range = %q, want n/a", o.YearRange())
	}
}

func TestGetCategoryByYear(t *testing.T) {
	db, id := setupTestDBWithData(t)

	got, err := db.GetCategoryByYear(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCategoryByYear() error = %v", err)
	}
	want := []models.YearGroupCount{
		{Year: 2019, Group: "Movie", Count: 1},
		{Year: 2019, Group: "TV Show", Count: 1},
		{Year: 2020, Group: "Movie", Count: 1},
		{Year: 2020, Group: "TV Show", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetCategoryByYear() = %+v, want %+v", got, want)
	}
}

func TestGetGenreTrends(t *testing.T) {
	db, id := setupTestDBWithData(t)

	// Dated genres: Dramas 3, then Anime Series, Comedies and TV Dramas at 1.
	got, err := db.GetGenreTrends(context.Background(), id, 2)
	if err != nil {
		t.Fatalf("GetGenreTrends() error = %v", err)
	}
	want := []models.YearGroupCount{
		{Year: 2019, Group: "Anime Series", Count: 1},
		{Year: 2019, Group: "Dramas", Count: 1},
		{Year: 2020, Group: "Dramas", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetGenreTrends(2) = %+v, want %+v", got, want)
	}

	// Thrillers only appears on the undated title.
	all, err := db.GetGenreTrends(context.Background(), id, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range all {
		if c.Group == "Thrillers" {
			t.Error("genre of an undated title should not be counted")
		}
	}
}

func TestGetTopCountries(t *testing.T) {
	db, id := setupTestDBWithData(t)

	got, err := db.GetTopCountries(context.Background(), id, 10)
	if err != nil {
		t.Fatalf("GetTopCountries() error = %v", err)
	}
	want := []models.ValueCount{
		{Value: "India", Count: 3},
		{Value: "United States", Count: 2},
		{Value: "Unknown", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetTopCountries() = %+v, want %+v", got, want)
	}

	top1, err := db.GetTopCountries(context.Background(), id, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top1) != 1 || top1[0].Value != "India" {
		t.Errorf("GetTopCountries(1) = %+v", top1)
	}
}

func TestGetTopDirectors(t *testing.T) {
	db, id := setupTestDBWithData(t)

	got, err := db.GetTopDirectors(context.Background(), id, 10)
	if err != nil {
		t.Fatalf("GetTopDirectors() error = %v", err)
	}
	want := []models.ValueCount{
		{Value: "Ana Lee", Count: 2},
		{Value: "Bo Chen", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetTopDirectors() = %+v, want %+v", got, want)
	}
}

func TestGetMovieDurations(t *testing.T) {
	db, id := setupTestDBWithData(t)

	h, err := db.GetMovieDurations(context.Background(), id, 3)
	if err != nil {
		t.Fatalf("GetMovieDurations() error = %v", err)
	}
	if h.Total != 3 || h.Min != 90 || h.Max != 120 {
		t.Errorf("histogram = %+v, want 3 movies over [90, 120]", h)
	}
	for i, b := range h.Bins {
		if b.Count != 1 {
			t.Errorf("bin %d count = %d, want 1", i, b.Count)
		}
	}
}

func TestGetSeasonCounts(t *testing.T) {
	db, id := setupTestDBWithData(t)

	got, err := db.GetSeasonCounts(context.Background(), id, 10)
	if err != nil {
		t.Fatalf("GetSeasonCounts() error = %v", err)
	}
	want := []models.ValueCount{
		{Value: "1", Count: 1},
		{Value: "2", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetSeasonCounts() = %+v, want %+v", got, want)
	}
}

func TestGetView(t *testing.T) {
	db, id := setupTestDBWithData(t)
	ctx := context.Background()

	for _, view := range models.AllViews() {
		res, err := db.GetView(ctx, id, view, models.ViewOptions{})
		if err != nil {
			t.Errorf("GetView(%s) error = %v", view, err)
			continue
		}
		if res.Empty || res.Warning != "" {
			t.Errorf("GetView(%s) unexpectedly empty: %q", view, res.Warning)
		}
		if res.Title != view.Title() || res.DatasetID != id {
			t.Errorf("GetView(%s) = %+v", view, res)
		}
	}

	if _, err := db.GetView(ctx, "missing", models.ViewTopCountries, models.ViewOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing dataset err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetView(ctx, id, models.ViewName("ratings"), models.ViewOptions{}); err == nil {
		t.Error("unknown view should fail")
	}
}

func TestGetView_EmptyWarnings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// One TV show with no season digits and no movies.
	csv := "Release_Date,Type,Category,Country,Director,Duration\n" +
		"n/a,Docuseries,TV Show,Brazil,,Limited Series\n"
	ds, err := db.InsertDataset(ctx, "tv.csv", loadTestDataset(t, csv))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		view models.ViewName
		want string
	}{
		{models.ViewMovieDurations, models.WarningNoMovieDurations},
		{models.ViewTVSeasons, models.WarningNoSeasonCounts},
		{models.ViewCategoryByYear, models.WarningNoData},
		{models.ViewGenreTrends, models.WarningNoData},
		{models.ViewTopDirectors, models.WarningNoData},
	}
	for _, tt := range tests {
		res, err := db.GetView(ctx, ds.ID, tt.view, models.ViewOptions{})
		if err != nil {
			t.Fatalf("GetView(%s) error = %v", tt.view, err)
		}
		if !res.Empty || res.Warning != tt.want {
			t.Errorf("GetView(%s) = empty %v, warning %q; want %q", tt.view, res.Empty, res.Warning, tt.want)
		}
	}

	res, err := db.GetView(ctx, ds.ID, models.ViewTopCountries, models.ViewOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Empty {
		t.Error("top countries has Brazil and should not be empty")
	}
}
