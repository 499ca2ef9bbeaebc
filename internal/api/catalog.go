/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/hugin_playout/internal/models"
)

// handleCatalogList returns a channel's catalog in snapshot order.
func (a *API) handleCatalogList(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	var items []models.CatalogItem
	err := a.db.WithContext(r.Context()).
		Where("channel_id = ?", channelID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		a.logger.Error().Err(err).Msg("list catalog failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleCatalogImport ingests a JSON media manifest posted as the body.
func (a *API) handleCatalogImport(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	imported, err := a.catalog.ImportManifest(r.Context(), channelID, r.Body)
	if err != nil {
		a.logger.Error().Err(err).Str("channel_id", channelID).Msg("manifest import failed")
		writeError(w, http.StatusBadRequest, "import_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": imported})
}
