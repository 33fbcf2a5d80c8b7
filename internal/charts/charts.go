// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package charts

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/metrics"
	"github.com/tomtom215/streamscope/internal/models"
)

// ErrEmptyView is returned when a view has nothing to plot.
var ErrEmptyView = errors.New("view has no data to plot")

// Format is an image encoding.
type Format string

// Supported image formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatSVG, FormatPNG:
		return Format(s), true
	}
	return "", false
}

// ContentType is the HTTP media type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// drawable is implemented by chart.Chart, chart.BarChart and
// chart.StackedBarChart.
type drawable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// Default image size.
const (
	DefaultWidth  = 1000
	DefaultHeight = 400
)

// Renderer draws view results.
type Renderer struct {
	width  int
	height int

	// draw performs the library call; tests replace it to observe calls.
	draw func(d drawable, rp chart.RendererProvider, w io.Writer) error
}

// NewRenderer creates a renderer producing images of the given size.
// Non-positive sizes fall back to the defaults.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{
		width:  width,
		height: height,
		draw: func(d drawable, rp chart.RendererProvider, w io.Writer) error {
			return d.Render(rp, w)
		},
	}
}

// Render writes the chart for res to w. It returns ErrEmptyView without
// drawing anything when res holds no data.
func (r *Renderer) Render(w io.Writer, res *models.ViewResult, format Format) error {
	if res == nil || res.Empty {
		if res != nil {
			metrics.ChartEmptyViews.WithLabelValues(string(res.View)).Inc()
		}
		return ErrEmptyView
	}

	d, err := r.build(res)
	if err != nil {
		if errors.Is(err, ErrEmptyView) {
			metrics.ChartEmptyViews.WithLabelValues(string(res.View)).Inc()
		}
		return err
	}

	start := time.Now()
	if err := r.draw(d, format.provider(), w); err != nil {
		logging.Error().Err(err).Str("view", string(res.View)).Msg("Chart rendering failed")
		return fmt.Errorf("render %s: %w", res.View, err)
	}
	metrics.RecordChartRender(string(res.View), string(format), time.Since(start))
	return nil
}

func (r *Renderer) build(res *models.ViewResult) (drawable, error) {
	switch res.View {
	case models.ViewCategoryByYear:
		return r.yearLines(res.Title, "Number of Titles", res.YearCounts)
	case models.ViewGenreTrends:
		return r.yearLines(res.Title, "Number of Titles", res.YearCounts)
	case models.ViewTopCountries:
		return r.bars(res.Title, res.Counts, nil)
	case models.ViewTopDirectors:
		return r.horizontalBars(res.Title, res.Counts)
	case models.ViewMovieDurations:
		return r.histogram(res.Title, res.Histogram)
	case models.ViewTVSeasons:
		return r.bars(res.Title, res.Counts, seasonLabel)
	default:
		return nil, fmt.Errorf("no chart for view %q", res.View)
	}
}
