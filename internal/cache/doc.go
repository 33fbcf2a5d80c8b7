// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

/*
Package cache provides a thread-safe in-memory cache with TTL support.

View results are cached per dataset so repeated dashboard loads do not
query DuckDB again. Keys built with DatasetKey share the prefix
"dataset:<id>:", which lets InvalidateDataset drop every entry of one
dataset when it is deleted.

# Usage Example

	c := cache.New(5 * time.Minute)
	defer c.Close()

	key := cache.DatasetKey(id, "view:top_countries", opts)
	if v, ok := c.Get(key); ok {
	    return v.(*models.ViewResult), nil
	}
	res, err := db.GetView(ctx, id, models.ViewTopCountries, opts)
	if err == nil {
	    c.Set(key, res)
	}

Expired entries are removed lazily on Get and by a background sweep every
five minutes. Hits and misses are exported as Prometheus counters.
*/
package cache
