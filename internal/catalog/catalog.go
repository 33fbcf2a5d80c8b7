// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

// Package catalog turns an uploaded titles CSV into clean, typed rows.
//
// Loading happens in three steps:
//
//  1. Parse the CSV into a dataframe with every column kept as text.
//  2. Clean: drop exact duplicate rows, parse Release_Date into a date and
//     year, and replace missing Country, Type and Category values with
//     the Unknown sentinel.
//  3. Reshape: split the multi-valued Type (genres) and Country columns
//     into one value per row.
//
// Parsing failures are not errors. A date that cannot be read leaves the
// title without a year, and a duration without digits leaves it without a
// numeric duration; views that need those fields skip the row.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Unknown replaces missing categorical values.
const Unknown = "Unknown"

// Category values used by the duration views.
const (
	CategoryMovie  = "Movie"
	CategoryTVShow = "TV Show"
)

// Column names as they appear in the CSV header.
const (
	ColumnShowID      = "Show_Id"
	ColumnCategory    = "Category"
	ColumnTitle       = "Title"
	ColumnDirector    = "Director"
	ColumnCast        = "Cast"
	ColumnCountry     = "Country"
	ColumnReleaseDate = "Release_Date"
	ColumnRating      = "Rating"
	ColumnDuration    = "Duration"
	ColumnType        = "Type"
	ColumnDescription = "Description"
)

// RequiredColumns must be present in every upload.
var RequiredColumns = []string{
	ColumnReleaseDate,
	ColumnType,
	ColumnCategory,
	ColumnCountry,
	ColumnDirector,
	ColumnDuration,
}

// ErrEmptyDataset is returned when the CSV has no data rows.
var ErrEmptyDataset = errors.New("dataset has no rows")

// MissingColumnsError lists required columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ParseError wraps a malformed CSV.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid csv: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Title is one cleaned row. Pointer fields are nil when the value is
// missing or could not be parsed.
type Title struct {
	ShowID        string
	Category      string
	Title         string
	Director      *string
	Cast          string
	Country       string
	ReleaseDate   *time.Time
	Year          *int
	Rating        string
	Duration      string
	DurationValue *int
	Type          string
	Description   string
}

// Dataset is the result of Load.
type Dataset struct {
	Titles        []Title
	RawRows       int
	DuplicateRows int
	InvalidDates  int
}
