// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package models

import (
	"fmt"
	"time"
)

// Dataset is one uploaded CSV after cleaning.
type Dataset struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	UploadedAt    time.Time `json:"uploaded_at"`
	RawRows       int       `json:"raw_rows"`
	TitleCount    int       `json:"title_count"`
	DuplicateRows int       `json:"duplicate_rows"`
	InvalidDates  int       `json:"invalid_dates"`
}

// Overview holds the three headline metrics of a dataset.
type Overview struct {
	DatasetID       string `json:"dataset_id"`
	TotalTitles     int    `json:"total_titles"`
	YearMin         *int   `json:"year_min,omitempty"`
	YearMax         *int   `json:"year_max,omitempty"`
	TopCountry      string `json:"top_country,omitempty"`
	TopCountryCount int    `json:"top_country_count,omitempty"`
}

// YearRange formats the year span as "min - max", or "n/a" when no title
// has a usable release date.
func (o *Overview) YearRange() string {
	if o.YearMin == nil || o.YearMax == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d - %d", *o.YearMin, *o.YearMax)
}

// DatasetEvent is published when a dataset is created or removed.
type DatasetEvent struct {
	Type       string    `json:"type"`
	DatasetID  string    `json:"dataset_id"`
	Filename   string    `json:"filename,omitempty"`
	TitleCount int       `json:"title_count,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Dataset event types.
const (
	DatasetEventIngested = "dataset_ingested"
	DatasetEventDeleted  = "dataset_deleted"
)
