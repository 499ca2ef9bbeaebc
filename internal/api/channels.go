/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/friendsincode/hugin_playout/internal/models"
	"github.com/friendsincode/hugin_playout/internal/timeline"
)

// handleChannelsList returns all channels.
func (a *API) handleChannelsList(w http.ResponseWriter, r *http.Request) {
	var channels []models.Channel
	if err := a.db.WithContext(r.Context()).Order("name ASC").Find(&channels).Error; err != nil {
		a.logger.Error().Err(err).Msg("list channels failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

type channelCreateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Timezone    string  `json:"timezone"`
	FrameRate   float64 `json:"frame_rate"`
}

// handleChannelsCreate creates a channel.
func (a *API) handleChannelsCreate(w http.ResponseWriter, r *http.Request) {
	var req channelCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}

	channel := models.Channel{
		Name:        req.Name,
		Description: req.Description,
		Timezone:    req.Timezone,
		FrameRate:   req.FrameRate,
	}
	if err := a.db.WithContext(r.Context()).Create(&channel).Error; err != nil {
		a.logger.Error().Err(err).Str("name", req.Name).Msg("create channel failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, channel)
}

// handleChannelsGet returns one channel by ID.
func (a *API) handleChannelsGet(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	var channel models.Channel
	err := a.db.WithContext(r.Context()).First(&channel, "id = ?", channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "channel_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, channel)
}

type rotationCreateRequest struct {
	Name               string             `json:"name"`
	Sequence           []string           `json:"sequence"`
	ReplayDelaySeconds map[string]float64 `json:"replay_delay_seconds"`
}

// handleRotationsCreate stores a rotation config for a channel. The sequence
// must name known duration categories.
func (a *API) handleRotationsCreate(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	var req rotationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Name == "" || len(req.Sequence) == 0 {
		writeError(w, http.StatusBadRequest, "name_and_sequence_required")
		return
	}
	for _, raw := range req.Sequence {
		if !timeline.ValidCategory(timeline.DurationCategory(raw)) {
			writeError(w, http.StatusBadRequest, "unknown_category")
			return
		}
	}

	rot := models.RotationConfig{
		ChannelID:          channelID,
		Name:               req.Name,
		Sequence:           req.Sequence,
		ReplayDelaySeconds: req.ReplayDelaySeconds,
	}
	if err := a.db.WithContext(r.Context()).Create(&rot).Error; err != nil {
		a.logger.Error().Err(err).Str("name", req.Name).Msg("create rotation failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, rot)
}

// handleRotationsList returns a channel's rotation configs.
func (a *API) handleRotationsList(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	var rotations []models.RotationConfig
	err := a.db.WithContext(r.Context()).
		Where("channel_id = ?", channelID).
		Order("name ASC").
		Find(&rotations).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rotations": rotations})
}
