// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package catalog

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// nanValues are read as missing.
var nanValues = []string{"", "NA", "NaN", "N/A", "<nil>"}

// Load parses and cleans a titles CSV.
func Load(r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, &ParseError{Err: err}
	}

	df := dataframe.ReadCSV(br,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		if strings.Contains(df.Err.Error(), "empty DataFrame") {
			return nil, ErrEmptyDataset
		}
		return nil, &ParseError{Err: df.Err}
	}

	cols, err := resolveColumns(df.Names())
	if err != nil {
		return nil, err
	}
	if df.Nrow() == 0 {
		return nil, ErrEmptyDataset
	}

	return clean(readRows(df), cols), nil
}

// columnIndex maps canonical column names to positions in a raw row.
// Optional columns that are absent map to -1.
type columnIndex map[string]int

func (c columnIndex) get(row []cell, name string) cell {
	i, ok := c[name]
	if !ok || i < 0 {
		return cell{missing: true}
	}
	return row[i]
}

// resolveColumns matches header names case-insensitively, ignoring
// surrounding whitespace, and reports every missing required column.
func resolveColumns(names []string) (columnIndex, error) {
	byKey := make(map[string]int, len(names))
	for i, n := range names {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(n, "\ufeff")))
		if _, dup := byKey[key]; !dup {
			byKey[key] = i
		}
	}

	idx := columnIndex{}
	all := []string{
		ColumnShowID, ColumnCategory, ColumnTitle, ColumnDirector, ColumnCast, ColumnCountry,
		ColumnReleaseDate, ColumnRating, ColumnDuration, ColumnType, ColumnDescription,
	}
	for _, name := range all {
		if i, ok := byKey[strings.ToLower(name)]; ok {
			idx[name] = i
		} else {
			idx[name] = -1
		}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if idx[name] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return idx, nil
}

// cell is one raw value; missing is set for NA values and blank strings.
type cell struct {
	value   string
	missing bool
}

func readRows(df dataframe.DataFrame) [][]cell {
	nrow, ncol := df.Dims()
	rows := make([][]cell, nrow)
	for i := range rows {
		rows[i] = make([]cell, ncol)
	}
	for j := 0; j < ncol; j++ {
		col := df.Col(df.Names()[j])
		for i := 0; i < nrow; i++ {
			e := col.Elem(i)
			if e.IsNA() {
				rows[i][j] = cell{missing: true}
				continue
			}
			v := e.String()
			rows[i][j] = cell{value: v, missing: strings.TrimSpace(v) == ""}
		}
	}
	return rows
}
