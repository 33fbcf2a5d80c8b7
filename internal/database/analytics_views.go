// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/streamscope/internal/catalog"
	"github.com/tomtom215/streamscope/internal/metrics"
	"github.com/tomtom215/streamscope/internal/models"
)

// Sizes used when a caller passes a non-positive limit or bin count.
const (
	DefaultTopGenres    = 8
	DefaultTopN         = 10
	DefaultDurationBins = 30
)

// GetOverview returns the headline metrics computed at ingest.
func (db *DB) GetOverview(ctx context.Context, id string) (*models.Overview, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		o                = models.Overview{DatasetID: id}
		yearMin, yearMax sql.NullInt64
		topCountry       sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT title_count, year_min, year_max, top_country, top_country_count
		 FROM datasets WHERE id = ?`, id,
	).Scan(&o.TotalTitles, &yearMin, &yearMax, &topCountry, &o.TopCountryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get overview: %w", err)
	}

	if yearMin.Valid && yearMax.Valid {
		lo, hi := int(yearMin.Int64), int(yearMax.Int64)
		o.YearMin, o.YearMax = &lo, &hi
	}
	o.TopCountry = topCountry.String
	return &o, nil
}

// GetView builds the data behind one dashboard panel. Non-positive option
// values fall back to the package defaults.
func (db *DB) GetView(ctx context.Context, id string, view models.ViewName, opts models.ViewOptions) (*models.ViewResult, error) {
	if _, err := db.GetDataset(ctx, id); err != nil {
		return nil, err
	}

	result := &models.ViewResult{
		DatasetID: id,
		View:      view,
		Title:     view.Title(),
	}

	var err error
	switch view {
	case models.ViewCategoryByYear:
		result.YearCounts, err = db.GetCategoryByYear(ctx, id)
		result.Empty = len(result.YearCounts) == 0
	case models.ViewGenreTrends:
		result.YearCounts, err = db.GetGenreTrends(ctx, id, opts.Limit)
		result.Empty = len(result.YearCounts) == 0
	case models.ViewTopCountries:
		result.Counts, err = db.GetTopCountries(ctx, id, opts.Limit)
		result.Empty = len(result.Counts) == 0
	case models.ViewTopDirectors:
		result.Counts, err = db.GetTopDirectors(ctx, id, opts.Limit)
		result.Empty = len(result.Counts) == 0
	case models.ViewMovieDurations:
		result.Histogram, err = db.GetMovieDurations(ctx, id, opts.Bins)
		result.Empty = result.Histogram == nil || result.Histogram.Total == 0
	case models.ViewTVSeasons:
		result.Counts, err = db.GetSeasonCounts(ctx, id, opts.Limit)
		result.Empty = len(result.Counts) == 0
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}
	if err != nil {
		return nil, err
	}

	if result.Empty {
		result.Warning = view.EmptyWarning()
	}
	return result, nil
}

// GetCategoryByYear counts titles per (year, category) for titles with a
// release year.
func (db *DB) GetCategoryByYear(ctx context.Context, id string) ([]models.YearGroupCount, error) {
	return db.queryYearGroups(ctx, "category_by_year", `
		SELECT year, category, COUNT(*) AS n
		FROM titles
		WHERE dataset_id = ? AND year IS NOT NULL
		GROUP BY year, category
		ORDER BY year, category`, id)
}

// GetGenreTrends picks the topN most frequent genres among titles with a
// release year and counts them per year.
func (db *DB) GetGenreTrends(ctx context.Context, id string, topN int) ([]models.YearGroupCount, error) {
	if topN <= 0 {
		topN = DefaultTopGenres
	}
	return db.queryYearGroups(ctx, "genre_trends", `
		WITH dated AS (
			SELECT t.year, g.genre
			FROM titles t
			JOIN title_genres g ON g.dataset_id = t.dataset_id AND g.row_num = t.row_num
			WHERE t.dataset_id = ? AND t.year IS NOT NULL
		),
		top_genres AS (
			SELECT genre
			FROM dated
			GROUP BY genre
			ORDER BY COUNT(*) DESC, genre ASC
			LIMIT ?
		)
		SELECT d.year, d.genre, COUNT(*) AS n
		FROM dated d
		JOIN top_genres tg ON tg.genre = d.genre
		GROUP BY d.year, d.genre
		ORDER BY d.year, d.genre`, id, topN)
}

// GetTopCountries counts exploded country values.
func (db *DB) GetTopCountries(ctx context.Context, id string, n int) ([]models.ValueCount, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	return db.queryValueCounts(ctx, "top_countries", `
		SELECT country, COUNT(*) AS n
		FROM title_countries
		WHERE dataset_id = ?
		GROUP BY country
		ORDER BY n DESC, country ASC
		LIMIT ?`, id, n)
}

// GetTopDirectors counts titles per director. Titles without a director
// are not counted.
func (db *DB) GetTopDirectors(ctx context.Context, id string, n int) ([]models.ValueCount, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	return db.queryValueCounts(ctx, "top_directors", `
		SELECT director, COUNT(*) AS n
		FROM titles
		WHERE dataset_id = ? AND director IS NOT NULL
		GROUP BY director
		ORDER BY n DESC, director ASC
		LIMIT ?`, id, n)
}

// GetSeasonCounts counts TV shows per season count. Values are the season
// numbers as text, ordered by frequency and then numerically.
func (db *DB) GetSeasonCounts(ctx context.Context, id string, n int) ([]models.ValueCount, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT duration_value, COUNT(*) AS n
		FROM titles
		WHERE dataset_id = ? AND category = ? AND duration_value IS NOT NULL
		GROUP BY duration_value
		ORDER BY n DESC, duration_value ASC
		LIMIT ?`, id, catalog.CategoryTVShow, n)
	metrics.RecordDBQuery("SELECT", "tv_seasons", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query season counts: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := []models.ValueCount{}
	for rows.Next() {
		var seasons, count int
		if err := rows.Scan(&seasons, &count); err != nil {
			return nil, fmt.Errorf("failed to scan season count: %w", err)
		}
		out = append(out, models.ValueCount{Value: strconv.Itoa(seasons), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating season counts: %w", err)
	}
	return out, nil
}

// GetMovieDurations bins the parsed minute counts of movies.
func (db *DB) GetMovieDurations(ctx context.Context, id string, bins int) (*models.Histogram, error) {
	if bins <= 0 {
		bins = DefaultDurationBins
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT duration_value
		FROM titles
		WHERE dataset_id = ? AND category = ? AND duration_value IS NOT NULL`,
		id, catalog.CategoryMovie)
	metrics.RecordDBQuery("SELECT", "movie_durations", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie durations: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var values []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan duration: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating durations: %w", err)
	}
	return buildHistogram(values, bins), nil
}

func (db *DB) queryYearGroups(ctx context.Context, name, query string, args ...any) ([]models.YearGroupCount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("SELECT", name, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer closeWithLog(rows, "rows")

	out := []models.YearGroupCount{}
	for rows.Next() {
		var c models.YearGroupCount
		if err := rows.Scan(&c.Year, &c.Group, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", name, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", name, err)
	}
	return out, nil
}

func (db *DB) queryValueCounts(ctx context.Context, name, query string, args ...any) ([]models.ValueCount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("SELECT", name, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer closeWithLog(rows, "rows")

	out := []models.ValueCount{}
	for rows.Next() {
		var c models.ValueCount
		if err := rows.Scan(&c.Value, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", name, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", name, err)
	}
	return out, nil
}
