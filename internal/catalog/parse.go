// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package catalog

import (
	"strconv"
	"strings"
	"time"
)

// releaseDateLayouts are tried in order. The first is the format used by
// the Netflix export ("August 14, 2020").
var releaseDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"January 2006",
	"2006",
}

// ParseReleaseDate parses a release date in any supported layout. Leading
// and trailing whitespace is ignored and runs of inner spaces collapse.
func ParseReleaseDate(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDuration returns the first run of ASCII digits in s as an integer.
// "90 min" yields 90 and "3 Seasons" yields 3. It reports false when s
// holds no digits or the number does not fit in 32 bits, the width of the
// stored duration column.
func ParseDuration(s string) (int, bool) {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	n, err := strconv.ParseInt(s[start:end], 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
