// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package models

// ViewName identifies one of the six dashboard views.
type ViewName string

// Dashboard views in display order.
const (
	ViewCategoryByYear ViewName = "category_by_year"
	ViewGenreTrends    ViewName = "genre_trends"
	ViewTopCountries   ViewName = "top_countries"
	ViewTopDirectors   ViewName = "top_directors"
	ViewMovieDurations ViewName = "movie_durations"
	ViewTVSeasons      ViewName = "tv_seasons"
)

// AllViews lists the views in the order the dashboard shows them.
func AllViews() []ViewName {
	return []ViewName{
		ViewCategoryByYear,
		ViewGenreTrends,
		ViewTopCountries,
		ViewTopDirectors,
		ViewMovieDurations,
		ViewTVSeasons,
	}
}

// ParseViewName returns the view for s, or false if s names no view.
func ParseViewName(s string) (ViewName, bool) {
	for _, v := range AllViews() {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Empty-state messages shown instead of a chart.
const (
	WarningNoData           = "No data available for this view."
	WarningNoMovieDurations = "No valid movie durations found to plot."
	WarningNoSeasonCounts   = "No valid season count data found to plot."
)

// Title is the panel heading of the view.
func (v ViewName) Title() string {
	switch v {
	case ViewCategoryByYear:
		return "Movies vs TV Shows by Release Year"
	case ViewGenreTrends:
		return "Top Genre Trends Over the Years"
	case ViewTopCountries:
		return "Top Countries by Number of Titles"
	case ViewTopDirectors:
		return "Top Directors by Number of Titles"
	case ViewMovieDurations:
		return "Distribution of Movie Durations (minutes)"
	case ViewTVSeasons:
		return "Number of Seasons in TV Shows"
	default:
		return string(v)
	}
}

// EmptyWarning is shown when the view has nothing to plot.
func (v ViewName) EmptyWarning() string {
	switch v {
	case ViewMovieDurations:
		return WarningNoMovieDurations
	case ViewTVSeasons:
		return WarningNoSeasonCounts
	default:
		return WarningNoData
	}
}

// YearGroupCount is one (year, group) cell of a year-based view.
type YearGroupCount struct {
	Year  int    `json:"year"`
	Group string `json:"group"`
	Count int    `json:"count"`
}

// ValueCount is one entry of a frequency table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// HistogramBin counts values in [Lower, Upper). The last bin of a
// histogram is closed on both ends.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is an equal-width histogram of a numeric column.
type Histogram struct {
	Bins  []HistogramBin `json:"bins"`
	Total int            `json:"total"`
	Min   float64        `json:"min"`
	Max   float64        `json:"max"`
}

// ViewOptions tunes a single view query. Zero values select the
// configured defaults.
type ViewOptions struct {
	Limit int `json:"limit,omitempty"`
	Bins  int `json:"bins,omitempty"`
}

// ViewResult is the data behind one dashboard panel. Exactly one of
// YearCounts, Counts or Histogram is populated unless Empty is true, in
// which case Warning explains why nothing can be plotted.
type ViewResult struct {
	DatasetID  string           `json:"dataset_id"`
	View       ViewName         `json:"view"`
	Title      string           `json:"title"`
	Empty      bool             `json:"empty"`
	Warning    string           `json:"warning,omitempty"`
	YearCounts []YearGroupCount `json:"year_counts,omitempty"`
	Counts     []ValueCount     `json:"counts,omitempty"`
	Histogram  *Histogram       `json:"histogram,omitempty"`
}
