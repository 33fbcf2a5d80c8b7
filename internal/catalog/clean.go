// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package catalog

import (
	"strings"
)

// clean drops exact duplicate rows, keeping the first occurrence, and
// converts the remaining rows into Titles.
func clean(rows [][]cell, cols columnIndex) *Dataset {
	ds := &Dataset{
		RawRows: len(rows),
		Titles:  make([]Title, 0, len(rows)),
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			ds.DuplicateRows++
			continue
		}
		seen[key] = struct{}{}

		t := buildTitle(row, cols)
		if t.ReleaseDate == nil && !cols.get(row, ColumnReleaseDate).missing {
			ds.InvalidDates++
		}
		ds.Titles = append(ds.Titles, t)
	}
	return ds
}

// rowKey identifies a row by all of its values. Missing values compare
// equal to each other and unequal to any text.
func rowKey(row []cell) string {
	var b strings.Builder
	for i, c := range row {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		if c.missing {
			b.WriteByte(0x00)
			continue
		}
		b.WriteString(c.value)
	}
	return b.String()
}

func buildTitle(row []cell, cols columnIndex) Title {
	text := func(name string) string {
		c := cols.get(row, name)
		if c.missing {
			return ""
		}
		return strings.TrimSpace(c.value)
	}
	orUnknown := func(name string) string {
		if v := text(name); v != "" {
			return v
		}
		return Unknown
	}

	t := Title{
		ShowID:      text(ColumnShowID),
		Category:    orUnknown(ColumnCategory),
		Title:       text(ColumnTitle),
		Cast:        text(ColumnCast),
		Country:     orUnknown(ColumnCountry),
		Rating:      text(ColumnRating),
		Duration:    text(ColumnDuration),
		Type:        orUnknown(ColumnType),
		Description: text(ColumnDescription),
	}

	if d := text(ColumnDirector); d != "" {
		t.Director = &d
	}

	if date, ok := ParseReleaseDate(text(ColumnReleaseDate)); ok {
		year := date.Year()
		t.ReleaseDate = &date
		t.Year = &year
	}

	if n, ok := ParseDuration(t.Duration); ok {
		t.DurationValue = &n
	}
	return t
}
