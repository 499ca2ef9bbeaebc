/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/hugin_playout/internal/catalog"
	"github.com/friendsincode/hugin_playout/internal/schedule"
	"github.com/friendsincode/hugin_playout/internal/scheduler"
	"github.com/friendsincode/hugin_playout/internal/version"
)

// API exposes HTTP handlers.
type API struct {
	db        *gorm.DB
	catalog   *catalog.Service
	schedule  *schedule.Service
	scheduler *scheduler.Service
	logger    zerolog.Logger
}

// New creates the API router wrapper.
func New(db *gorm.DB, catalogSvc *catalog.Service, scheduleSvc *schedule.Service, schedulerSvc *scheduler.Service, logger zerolog.Logger) *API {
	return &API{
		db:        db,
		catalog:   catalogSvc,
		schedule:  scheduleSvc,
		scheduler: schedulerSvc,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts API routes on the provided router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Route("/channels", func(r chi.Router) {
			r.Get("/", a.handleChannelsList)
			r.Post("/", a.handleChannelsCreate)
			r.Route("/{channelID}", func(r chi.Router) {
				r.Get("/", a.handleChannelsGet)
				r.Route("/catalog", func(r chi.Router) {
					r.Get("/", a.handleCatalogList)
					r.Post("/import", a.handleCatalogImport)
				})
				r.Route("/rotations", func(r chi.Router) {
					r.Get("/", a.handleRotationsList)
					r.Post("/", a.handleRotationsCreate)
				})
				r.Get("/templates", a.handleTemplatesList)
			})
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", a.handleTemplatesCreate)
			r.Route("/{templateID}", func(r chi.Router) {
				r.Get("/", a.handleTemplatesGet)
				r.Get("/gaps", a.handleTemplateGaps)
				r.Post("/fill", a.handleTemplateFill)
				r.Get("/fill-runs", a.handleFillRunsList)
				r.Get("/export/daily-log.csv", a.handleExportDailyLog)
				r.Get("/export/schedule.ics", a.handleExportICal)
			})
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Version})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
