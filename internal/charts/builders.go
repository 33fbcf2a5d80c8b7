// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tomtom215/streamscope/internal/models"
)

const (
	maxYearTicks      = 12
	maxHistogramLabel = 10
	// maxBarLabel bounds horizontal bar names so the wrapped axis labels
	// stay inside the left padding.
	maxBarLabel = 24
	// minBarSlot is the smallest vertical space per horizontal bar; charts
	// with more bars than fit the configured height grow taller instead.
	minBarSlot = 14
	// headroom leaves space above the tallest bar or line.
	headroom = 1.1
)

var titlePadding = chart.Style{
	Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
}

func (r *Renderer) yearLines(title, yName string, counts []models.YearGroupCount) (drawable, error) {
	if len(counts) == 0 {
		return nil, ErrEmptyView
	}

	minYear, maxYear := counts[0].Year, counts[0].Year
	maxCount := 0
	byGroup := make(map[string]map[int]int)
	for _, c := range counts {
		minYear = min(minYear, c.Year)
		maxYear = max(maxYear, c.Year)
		if byGroup[c.Group] == nil {
			byGroup[c.Group] = make(map[int]int)
		}
		byGroup[c.Group][c.Year] += c.Count
		maxCount = max(maxCount, byGroup[c.Group][c.Year])
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	series := make([]chart.Series, 0, len(groups))
	for i, g := range groups {
		xs := make([]float64, 0, maxYear-minYear+1)
		ys := make([]float64, 0, maxYear-minYear+1)
		for y := minYear; y <= maxYear; y++ {
			xs = append(xs, float64(y))
			ys = append(ys, float64(byGroup[g][y]))
		}
		color := chart.GetDefaultColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    g,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		})
	}

	// A single year still needs a non-zero x range.
	lo, hi := minYear, maxYear
	if lo == hi {
		lo--
		hi++
	}

	graph := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: titlePadding,
		XAxis: chart.XAxis{
			Name:  "Release Year",
			Ticks: yearTicks(lo, hi),
		},
		YAxis: chart.YAxis{
			Name:           yName,
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * headroom},
			ValueFormatter: integerFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph, nil
}

// yearTicks returns at most maxYearTicks ticks covering [lo, hi], always
// including both ends.
func yearTicks(lo, hi int) []chart.Tick {
	step := int(math.Ceil(float64(hi-lo) / float64(maxYearTicks-1)))
	if step < 1 {
		step = 1
	}
	var ticks []chart.Tick
	for y := lo; y < hi; y += step {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return append(ticks, chart.Tick{Value: float64(hi), Label: strconv.Itoa(hi)})
}

func (r *Renderer) bars(title string, counts []models.ValueCount, label func(string) string) (drawable, error) {
	if len(counts) == 0 {
		return nil, ErrEmptyView
	}

	values := make([]chart.Value, 0, len(counts))
	maxCount := 0
	for _, c := range counts {
		l := c.Value
		if label != nil {
			l = label(l)
		}
		values = append(values, chart.Value{Label: l, Value: float64(c.Count)})
		maxCount = max(maxCount, c.Count)
	}

	return chart.BarChart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: titlePadding,
		BarWidth:   barWidth(r.width, len(values)),
		Bars:       values,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * headroom},
			ValueFormatter: integerFormatter,
		},
	}, nil
}

// horizontalBars draws one bar per value, longest first from the top.
// go-chart only offers horizontal bars as stacked bars normalized to their
// own total, so every bar is padded with a transparent segment up to the
// largest count.
func (r *Renderer) horizontalBars(title string, counts []models.ValueCount) (drawable, error) {
	if len(counts) == 0 {
		return nil, ErrEmptyView
	}

	maxCount := 0
	for _, c := range counts {
		maxCount = max(maxCount, c.Count)
	}

	height := max(r.height, 100+len(counts)*minBarSlot)
	slot := (height - 100) / len(counts)
	width := max(slot*2/3, 1)
	spacing := max(slot-width, 1)

	fill := chart.GetDefaultColor(0)
	bars := make([]chart.StackedBar, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, chart.StackedBar{
			Name:  truncateLabel(c.Value, maxBarLabel),
			Width: width,
			Values: []chart.Value{
				{
					Value: float64(maxCount - c.Count),
					Style: chart.Style{FillColor: drawing.ColorTransparent, StrokeColor: drawing.ColorTransparent},
				},
				{
					Value: float64(c.Count),
					Label: strconv.Itoa(c.Count),
					Style: chart.Style{FillColor: fill, StrokeColor: fill},
				},
			},
		})
	}

	return chart.StackedBarChart{
		Title:        title,
		Width:        r.width,
		Height:       height,
		Background:   chart.Style{Padding: chart.Box{Top: 50, Left: 160, Right: 20, Bottom: 20}},
		IsHorizontal: true,
		BarSpacing:   spacing,
		Bars:         bars,
	}, nil
}

// truncateLabel shortens s to at most n runes, marking the cut with "...".
func truncateLabel(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func (r *Renderer) histogram(title string, h *models.Histogram) (drawable, error) {
	if h == nil || h.Total == 0 || len(h.Bins) == 0 {
		return nil, ErrEmptyView
	}

	every := int(math.Ceil(float64(len(h.Bins)) / maxHistogramLabel))
	values := make([]chart.Value, 0, len(h.Bins))
	maxCount := 0
	for i, b := range h.Bins {
		v := chart.Value{Value: float64(b.Count)}
		if i%every == 0 {
			v.Label = fmt.Sprintf("%.0f-%.0f", b.Lower, b.Upper)
		}
		values = append(values, v)
		maxCount = max(maxCount, b.Count)
	}

	return chart.BarChart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: titlePadding,
		BarWidth:   barWidth(r.width, len(values)),
		BarSpacing: 2,
		Bars:       values,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * headroom},
			ValueFormatter: integerFormatter,
		},
	}, nil
}

func barWidth(chartWidth, n int) int {
	return max((chartWidth-120)/(n*2), 1)
}

func seasonLabel(v string) string {
	if v == "1" {
		return "1 Season"
	}
	return v + " Seasons"
}

func integerFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
	}
	return ""
}
