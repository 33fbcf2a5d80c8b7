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
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/streamscope/internal/catalog"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/metrics"
	"github.com/tomtom215/streamscope/internal/models"
)

const datasetColumns = `id, filename, uploaded_at, raw_rows, title_count, duplicate_rows, invalid_dates`

// InsertDataset stores a cleaned dataset with its exploded genre and
// country rows in a single transaction.
//
//nolint:gocyclo // one prepared statement per table keeps the insert in a single pass
func (db *DB) InsertDataset(ctx context.Context, filename string, ds *catalog.Dataset) (result *models.Dataset, err error) {
	if ds == nil || len(ds.Titles) == 0 {
		return nil, catalog.ErrEmptyDataset
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("INSERT", "datasets", time.Since(start), err)
	}()

	summary := catalog.Summarize(ds.Titles)
	result = &models.Dataset{
		ID:            uuid.New().String(),
		Filename:      filename,
		UploadedAt:    time.Now().UTC().Truncate(time.Microsecond),
		RawRows:       ds.RawRows,
		TitleCount:    len(ds.Titles),
		DuplicateRows: ds.DuplicateRows,
		InvalidDates:  ds.InvalidDates,
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollback(tx, err)
		}
	}()

	var topCountry *string
	if summary.TopCountry != "" {
		topCountry = &summary.TopCountry
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (`+datasetColumns+`, year_min, year_max, top_country, top_country_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.Filename, result.UploadedAt, result.RawRows, result.TitleCount,
		result.DuplicateRows, result.InvalidDates,
		summary.YearMin, summary.YearMax, topCountry, summary.TopCountryCount,
	); err != nil {
		return nil, fmt.Errorf("failed to insert dataset: %w", err)
	}

	if err = insertTitles(ctx, tx, result.ID, ds.Titles); err != nil {
		return nil, err
	}
	if err = insertExploded(ctx, tx, "title_genres", "genre", result.ID, catalog.Explode(ds.Titles, catalog.GenreField)); err != nil {
		return nil, err
	}
	if err = insertExploded(ctx, tx, "title_countries", "country", result.ID, catalog.Explode(ds.Titles, catalog.CountryField)); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Info().
		Str("dataset_id", result.ID).
		Str("filename", filename).
		Int("titles", result.TitleCount).
		Int("duplicates", result.DuplicateRows).
		Int("invalid_dates", result.InvalidDates).
		Dur("duration", time.Since(start)).
		Msg("Dataset stored")

	return result, nil
}

func insertTitles(ctx context.Context, tx *sql.Tx, datasetID string, titles []catalog.Title) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO titles (
		dataset_id, row_num, show_id, category, title, director, country,
		release_date, year, duration, duration_value, type
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare title insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i := range titles {
		t := &titles[i]
		if _, err := stmt.ExecContext(ctx,
			datasetID, i, t.ShowID, t.Category, t.Title, t.Director, t.Country,
			t.ReleaseDate, t.Year, t.Duration, t.DurationValue, t.Type,
		); err != nil {
			return fmt.Errorf("failed to insert title %d: %w", i, err)
		}
	}
	return nil
}

// insertExploded writes one child row per exploded value. table and column
// are package constants, never user input.
func insertExploded(ctx context.Context, tx *sql.Tx, table, column, datasetID string, rows []catalog.Exploded) error {
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %s (dataset_id, row_num, %s) VALUES (?, ?, ?)", table, column))
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, datasetID, r.Row, r.Value); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// ListDatasets returns all datasets, newest first.
func (db *DB) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+datasetColumns+` FROM datasets ORDER BY uploaded_at DESC, id`)
	metrics.RecordDBQuery("SELECT", "datasets", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer closeWithLog(rows, "rows")

	datasets := []models.Dataset{}
	for rows.Next() {
		var d models.Dataset
		if err := scanDataset(rows, &d); err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datasets: %w", err)
	}
	return datasets, nil
}

// GetDataset returns one dataset or ErrNotFound.
func (db *DB) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var d models.Dataset
	row := db.conn.QueryRowContext(ctx, `SELECT `+datasetColumns+` FROM datasets WHERE id = ?`, id)
	if err := scanDataset(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CountDatasets returns the number of stored datasets.
func (db *DB) CountDatasets(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count datasets: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDataset(s scanner, d *models.Dataset) error {
	err := s.Scan(&d.ID, &d.Filename, &d.UploadedAt, &d.RawRows, &d.TitleCount, &d.DuplicateRows, &d.InvalidDates)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to scan dataset: %w", err)
	}
	return nil
}

// DeleteDataset removes a dataset and all of its rows.
func (db *DB) DeleteDataset(ctx context.Context, id string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("DELETE", "datasets", time.Since(start), err)
	}()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(tx, err)
		}
	}()

	for _, table := range []string{"title_genres", "title_countries", "titles"} {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE dataset_id = ?", table), id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteDatasetsOlderThan removes every dataset uploaded before cutoff and
// returns the ids it removed.
func (db *DB) DeleteDatasetsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM datasets WHERE uploaded_at < ? ORDER BY uploaded_at`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to find expired datasets: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("failed to scan dataset id: %w", err)
		}
		ids = append(ids, id)
	}
	iterErr := rows.Err()
	closeWithLog(rows, "rows")
	if iterErr != nil {
		return nil, fmt.Errorf("error iterating expired datasets: %w", iterErr)
	}

	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := db.DeleteDataset(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return deleted, err
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

func rollback(tx *sql.Tx, cause error) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logging.Error().
			Err(rbErr).
			AnErr("original_error", cause).
			Msg("Transaction rollback failed")
	}
}
