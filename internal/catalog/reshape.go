// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package catalog

import (
	"sort"
	"strings"

	"github.com/tomtom215/streamscope/internal/models"
)

// MultiValueSeparator joins values in the Type and Country columns.
const MultiValueSeparator = ", "

// SplitMulti splits a multi-valued field. Each part is trimmed and an
// empty part becomes Unknown, so the result always has at least one
// element.
func SplitMulti(s string) []string {
	parts := strings.Split(s, MultiValueSeparator)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			p = Unknown
		}
		parts[i] = p
	}
	return parts
}

// Exploded is one value of a multi-valued field. Row is the index of the
// title in the slice passed to Explode.
type Exploded struct {
	Row   int
	Value string
}

// Explode returns one row per value of field for every title. The result
// is never shorter than titles.
func Explode(titles []Title, field func(*Title) string) []Exploded {
	out := make([]Exploded, 0, len(titles))
	for i := range titles {
		for _, v := range SplitMulti(field(&titles[i])) {
			out = append(out, Exploded{Row: i, Value: v})
		}
	}
	return out
}

// GenreField selects the genre list of a title.
func GenreField(t *Title) string { return t.Type }

// CountryField selects the country list of a title.
func CountryField(t *Title) string { return t.Country }

// TopN counts occurrences of each value and returns the n most frequent,
// ordered by count descending and then value ascending. n <= 0 returns
// every value.
func TopN(values []string, n int) []models.ValueCount {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	out := make([]models.ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, models.ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary holds dataset-level metrics computed once at ingest.
type Summary struct {
	YearMin         *int
	YearMax         *int
	TopCountry      string
	TopCountryCount int
}

// Summarize computes the year span of dated titles and the most frequent
// raw Country value. Country is counted before splitting, so a
// "United States, Canada" title does not count toward "United States".
func Summarize(titles []Title) Summary {
	var s Summary
	countries := make([]string, 0, len(titles))
	for i := range titles {
		t := &titles[i]
		countries = append(countries, t.Country)
		if t.Year == nil {
			continue
		}
		y := *t.Year
		if s.YearMin == nil || y < *s.YearMin {
			s.YearMin = &y
		}
		if s.YearMax == nil || y > *s.YearMax {
			yy := y
			s.YearMax = &yy
		}
	}
	if top := TopN(countries, 1); len(top) == 1 {
		s.TopCountry = top[0].Value
		s.TopCountryCount = top[0].Count
	}
	return s
}
