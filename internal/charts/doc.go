// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

/*
Package charts renders dashboard views as SVG or PNG images with go-chart.

Each view maps to one chart type:

  - category_by_year, genre_trends: line chart, one series per group, with
    missing years filled with zero and a legend
  - top_countries, tv_seasons: vertical bar chart
  - top_directors: horizontal bar chart
  - movie_durations: histogram drawn as a bar chart, one bar per bin

A view with no data is never drawn. Render returns ErrEmptyView and the
caller shows the view's warning text instead.
*/
package charts
