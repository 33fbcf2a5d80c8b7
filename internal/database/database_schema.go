// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package database

import (
	"context"
	"fmt"
)

func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the schema in dependency order.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			uploaded_at TIMESTAMP NOT NULL,
			raw_rows INTEGER NOT NULL,
			title_count INTEGER NOT NULL,
			duplicate_rows INTEGER NOT NULL,
			invalid_dates INTEGER NOT NULL,
			year_min INTEGER,
			year_max INTEGER,
			top_country TEXT,
			top_country_count INTEGER NOT NULL DEFAULT 0
		)`,

		// row_num is the position of the title after de-duplication.
		`CREATE TABLE IF NOT EXISTS titles (
			dataset_id TEXT NOT NULL,
			row_num INTEGER NOT NULL,
			show_id TEXT,
			category TEXT NOT NULL,
			title TEXT,
			director TEXT,
			country TEXT NOT NULL,
			release_date DATE,
			year INTEGER,
			duration TEXT,
			duration_value INTEGER,
			type TEXT NOT NULL,
			PRIMARY KEY (dataset_id, row_num)
		)`,

		`CREATE TABLE IF NOT EXISTS title_genres (
			dataset_id TEXT NOT NULL,
			row_num INTEGER NOT NULL,
			genre TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS title_countries (
			dataset_id TEXT NOT NULL,
			row_num INTEGER NOT NULL,
			country TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_titles_dataset_year ON titles(dataset_id, year)`,
		`CREATE INDEX IF NOT EXISTS idx_title_genres_dataset ON title_genres(dataset_id)`,
		`CREATE INDEX IF NOT EXISTS idx_title_countries_dataset ON title_countries(dataset_id)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_uploaded_at ON datasets(uploaded_at)`,
	}
}
