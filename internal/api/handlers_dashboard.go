// Streamscope - Streaming Catalog Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamscope

package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/streamscope/internal/database"
	"github.com/tomtom215/streamscope/internal/logging"
	"github.com/tomtom215/streamscope/internal/models"
)

// Dashboard messages.
const (
	msgUploadPrompt  = "Please upload a Netflix dataset CSV file to begin."
	msgUploadSuccess = "File uploaded successfully!"
	msgSelectDataset = "Select a dataset to view its dashboard."
)

//go:embed templates/*.tmpl
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}

type dashboardPage struct {
	Datasets    []models.Dataset
	Selected    *models.Dataset
	Overview    *models.Overview
	Panels      []panel
	Info        string
	Success     string
	Error       string
	MaxUploadMB int64
}

// panel is one chart slot: an image, or the warning when there is nothing
// to plot.
type panel struct {
	View     models.ViewName
	Title    string
	Warning  string
	ImageURL string
}

// Dashboard renders the landing page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	page, err := h.basePage(r)
	if err != nil {
		h.renderPage(w, r, http.StatusInternalServerError, &dashboardPage{Error: "Failed to load datasets."})
		return
	}
	if len(page.Datasets) == 0 {
		page.Info = msgUploadPrompt
	} else {
		page.Info = msgSelectDataset
	}
	h.renderPage(w, r, http.StatusOK, page)
}

// DatasetDashboard renders the metrics and charts of one dataset.
func (h *Handler) DatasetDashboard(w http.ResponseWriter, r *http.Request) {
	page, err := h.basePage(r)
	if err != nil {
		h.renderPage(w, r, http.StatusInternalServerError, &dashboardPage{Error: "Failed to load datasets."})
		return
	}

	id, verr := datasetID(r)
	if verr != nil {
		page.Error = "Dataset not found."
		h.renderPage(w, r, http.StatusNotFound, page)
		return
	}

	ctx := logging.ContextWithDatasetID(r.Context(), id)
	ds, err := h.db.GetDataset(ctx, id)
	if err != nil {
		status := http.StatusInternalServerError
		page.Error = "Failed to load dataset."
		if errors.Is(err, database.ErrNotFound) {
			status = http.StatusNotFound
			page.Error = "Dataset not found."
		} else {
			logging.Ctx(ctx).Error().Err(err).Msg("Failed to load dataset")
		}
		h.renderPage(w, r, status, page)
		return
	}
	page.Selected = ds

	if page.Overview, err = h.db.GetOverview(ctx, id); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to load overview")
		page.Selected = nil
		page.Error = "Failed to load dataset."
		h.renderPage(w, r, http.StatusInternalServerError, page)
		return
	}

	for _, view := range models.AllViews() {
		p := panel{
			View:     view,
			Title:    view.Title(),
			ImageURL: "/datasets/" + id + "/charts/" + string(view) + ".svg",
		}
		res, _, err := h.loadView(ctx, id, view, h.viewOptions(view, 0, 0))
		switch {
		case err != nil:
			logging.Ctx(ctx).Error().Err(err).Str("view", string(view)).Msg("Failed to load view")
			p.Warning = "This chart could not be loaded."
		case res.Empty:
			p.Warning = res.Warning
		}
		page.Panels = append(page.Panels, p)
	}

	if r.URL.Query().Get("uploaded") == "1" {
		page.Success = msgUploadSuccess
	}
	h.renderPage(w, r, http.StatusOK, page)
}

// UploadForm handles the dashboard's upload form. Success redirects to the
// new dataset; failure re-renders the landing page with the reason.
func (h *Handler) UploadForm(w http.ResponseWriter, r *http.Request) {
	ds, err := h.ingestUpload(w, r)
	if err != nil {
		status, _, message := uploadErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Upload failed")
		}
		page, listErr := h.basePage(r)
		if listErr != nil {
			page = &dashboardPage{}
		}
		page.Error = message
		h.renderPage(w, r, status, page)
		return
	}
	http.Redirect(w, r, "/datasets/"+ds.ID+"?uploaded=1", http.StatusSeeOther)
}

// DeleteForm handles the dashboard's delete button.
func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, verr := datasetID(r); verr == nil {
		if err := h.db.DeleteDataset(r.Context(), id); err == nil {
			h.afterDelete(r, id)
		} else if !errors.Is(err, database.ErrNotFound) {
			logging.Ctx(r.Context()).Error().Err(err).Str("dataset_id", id).Msg("Failed to delete dataset")
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) basePage(r *http.Request) (*dashboardPage, error) {
	list, err := h.db.ListDatasets(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list datasets")
		return nil, err
	}
	return &dashboardPage{
		Datasets:    list,
		MaxUploadMB: h.config.Upload.MaxBytes >> 20,
	}, nil
}

// renderPage executes the template into a buffer first so a template error
// never leaves a half-written page.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page *dashboardPage) {
	if page.MaxUploadMB == 0 {
		page.MaxUploadMB = h.config.Upload.MaxBytes >> 20
	}
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, "dashboard", page); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to execute dashboard template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
