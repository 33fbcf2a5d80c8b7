// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package database

import "github.com/tomtom215/streamscope/internal/models"

// buildHistogram splits [min, max] of values into bins equal-width bins.
// Every bin is half-open except the last, which also holds max. When all
// values are equal the range is widened to [v-0.5, v+0.5] so the bins
// still have a width.
func buildHistogram(values []int, bins int) *models.Histogram {
	if len(values) == 0 || bins <= 0 {
		return &models.Histogram{Bins: []models.HistogramBin{}}
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	lo, hi := float64(minV), float64(maxV)
	if minV == maxV {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)

	h := &models.Histogram{
		Bins:  make([]models.HistogramBin, bins),
		Total: len(values),
		Min:   float64(minV),
		Max:   float64(maxV),
	}
	for i := range h.Bins {
		h.Bins[i].Lower = lo + float64(i)*width
		h.Bins[i].Upper = lo + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = hi

	for _, v := range values {
		idx := int((float64(v) - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		h.Bins[idx].Count++
	}
	return h
}
