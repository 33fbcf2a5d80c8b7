// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

/*
Package api serves the dashboard pages, the JSON API and chart images.

Routes:

	GET    /                                      dashboard, upload form and dataset list
	POST   /upload                                form upload, redirects to the new dataset
	GET    /datasets/{id}                         metrics and six chart panels
	GET    /datasets/{id}/charts/{view}.{format}  chart image (svg or png)
	POST   /datasets/{id}/delete                  delete from the dashboard, redirects to /

	POST   /api/v1/datasets                       multipart upload, field "file"
	GET    /api/v1/datasets                       list datasets, newest first
	GET    /api/v1/datasets/{id}                  dataset summary
	DELETE /api/v1/datasets/{id}                  delete a dataset
	GET    /api/v1/datasets/{id}/overview         total titles, year range, top country
	GET    /api/v1/datasets/{id}/views/{view}     aggregated data behind one panel

	GET    /api/v1/health[/live|/ready]           health probes
	GET    /metrics                               Prometheus metrics
	GET    /ws                                    dataset events over WebSocket

JSON endpoints wrap results in models.APIResponse. Errors carry one of the
codes VALIDATION_ERROR, NOT_FOUND, PAYLOAD_TOO_LARGE, INVALID_CSV,
DATABASE_ERROR or INTERNAL_ERROR.

View results and rendered charts are cached per dataset and evicted when
the dataset is deleted.
*/
package api
