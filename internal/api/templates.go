/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/friendsincode/hugin_playout/internal/models"
	"github.com/friendsincode/hugin_playout/internal/schedule"
	"github.com/friendsincode/hugin_playout/internal/timeline"
	"github.com/friendsincode/hugin_playout/internal/timemodel"
)

type templateItemRequest struct {
	CatalogItemID   string  `json:"catalog_item_id,omitempty"`
	Title           string  `json:"title"`
	FilePath        string  `json:"file_path,omitempty"`
	StartTime       string  `json:"start_time"`
	DurationSeconds float64 `json:"duration_seconds"`
	Category        string  `json:"category,omitempty"`
	Source          string  `json:"source"` // fixed or gap
}

type templateCreateRequest struct {
	ChannelID   string                `json:"channel_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Topology    string                `json:"topology"`
	DaysInMonth int                   `json:"days_in_month,omitempty"`
	Items       []templateItemRequest `json:"items"`
}

// handleTemplatesList returns a channel's templates.
func (a *API) handleTemplatesList(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	templates, err := a.schedule.ListTemplates(r.Context(), channelID)
	if err != nil {
		a.logger.Error().Err(err).Msg("list templates failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// handleTemplatesCreate stores an authored template. Start times are parsed
// and validated up front so a malformed string is rejected at authoring time,
// not discovered mid-fill.
func (a *API) handleTemplatesCreate(w http.ResponseWriter, r *http.Request) {
	var req templateCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.ChannelID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "channel_id_and_name_required")
		return
	}

	daysInMonth := req.DaysInMonth
	if req.Topology == string(timemodel.TopologyMonthly) && daysInMonth == 0 {
		now := time.Now().UTC()
		daysInMonth = timemodel.MonthDays(now.Year(), now.Month())
	}

	tmpl := models.Template{
		ChannelID:   req.ChannelID,
		Name:        req.Name,
		Description: req.Description,
		Topology:    req.Topology,
		DaysInMonth: daysInMonth,
	}
	for _, it := range req.Items {
		if it.Source != models.ItemSourceFixed && it.Source != models.ItemSourceGap {
			writeError(w, http.StatusBadRequest, "item_source_must_be_fixed_or_gap")
			return
		}
		offset, err := timemodel.ToOffset(it.StartTime, timemodel.Topology(req.Topology))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":  "malformed_time",
				"detail": fmt.Sprintf("item %q: %v", it.Title, err),
			})
			return
		}
		rec := models.TemplateItem{
			Title:           it.Title,
			FilePath:        it.FilePath,
			StartTime:       it.StartTime,
			StartOffset:     offset,
			DurationSeconds: it.DurationSeconds,
			Category:        it.Category,
			Source:          it.Source,
		}
		if it.CatalogItemID != "" {
			id := it.CatalogItemID
			rec.CatalogItemID = &id
		}
		tmpl.Items = append(tmpl.Items, rec)
	}

	if err := a.schedule.CreateTemplate(r.Context(), &tmpl); err != nil {
		a.logger.Error().Err(err).Str("name", req.Name).Msg("create template failed")
		writeError(w, http.StatusBadRequest, "create_failed")
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

// handleTemplatesGet returns one template with its items.
func (a *API) handleTemplatesGet(w http.ResponseWriter, r *http.Request) {
	tmpl, ok := a.loadTemplate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

type gapResponse struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Duration     float64 `json:"duration"`
	StartDisplay string  `json:"start_display"`
	EndDisplay   string  `json:"end_display"`
}

// handleTemplateGaps previews the template's current free intervals without
// placing anything. The optional `day` query parameter restricts the preview
// to one day bucket of a weekly or monthly template.
func (a *API) handleTemplateGaps(w http.ResponseWriter, r *http.Request) {
	tmpl, ok := a.loadTemplate(w, r)
	if !ok {
		return
	}

	tl, err := schedule.ToTimeline(tmpl)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "invalid_template", "detail": err.Error(),
		})
		return
	}

	calc := timeline.NewGapCalculator(timemodel.DefaultFrameRate)

	var gaps []timeline.Gap
	if raw := r.URL.Query().Get("day"); raw != "" {
		day, convErr := strconv.Atoi(raw)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "invalid_day")
			return
		}
		gaps, err = calc.ComputeDayGaps(tl, day)
	} else {
		gaps, err = calc.ComputeGaps(tl)
	}
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "gap_computation_failed", "detail": err.Error(),
		})
		return
	}

	authored := make([]string, 0, len(tmpl.Items))
	for _, it := range tmpl.Items {
		authored = append(authored, it.StartTime)
	}
	clock := timemodel.DetectClock(authored)

	out := make([]gapResponse, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, gapResponse{
			Start:        g.Start,
			End:          g.End,
			Duration:     g.Duration(),
			StartDisplay: timemodel.FromOffset(g.Start, tl.Topology, clock),
			EndDisplay:   timemodel.FromOffset(g.End, tl.Topology, clock),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"gaps":           out,
		"open_seconds":   timeline.OpenSeconds(gaps),
		"placed_seconds": tl.PlacedDuration(),
	})
}

type fillRequest struct {
	RotationID string `json:"rotation_id"`
}

// handleTemplateFill runs the fill engine against the template and persists
// the placements.
func (a *API) handleTemplateFill(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateID")

	var req fillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.RotationID == "" {
		writeError(w, http.StatusBadRequest, "rotation_id_required")
		return
	}

	result, err := a.scheduler.FillTemplate(r.Context(), templateID, req.RotationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if errors.Is(err, timeline.ErrOverlapDetected) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "overlap_detected", "detail": err.Error(),
		})
		return
	}
	if errors.Is(err, timemodel.ErrMalformedTime) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "malformed_time", "detail": err.Error(),
		})
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Str("template_id", templateID).Msg("fill failed")
		writeError(w, http.StatusInternalServerError, "fill_failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run":    result.Run,
		"report": result.Report,
	})
}

// handleFillRunsList returns the template's fill history.
func (a *API) handleFillRunsList(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateID")

	runs, err := a.schedule.ListFillRuns(r.Context(), templateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleExportDailyLog streams the template as a playout daily log CSV.
func (a *API) handleExportDailyLog(w http.ResponseWriter, r *http.Request) {
	tmpl, tl, ok := a.loadTemplateTimeline(w, r)
	if !ok {
		return
	}

	result, err := schedule.ExportDailyLogCSV(tmpl, tl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed")
		return
	}
	writeExport(w, result)
}

// handleExportICal streams the template as an iCal feed. The optional `date`
// query parameter (YYYY-MM-DD) anchors offsets to a calendar day.
func (a *API) handleExportICal(w http.ResponseWriter, r *http.Request) {
	tmpl, tl, ok := a.loadTemplateTimeline(w, r)
	if !ok {
		return
	}

	base := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		base = parsed
	}

	result, err := schedule.ExportICal(tmpl, tl, base)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed")
		return
	}
	writeExport(w, result)
}

func (a *API) loadTemplate(w http.ResponseWriter, r *http.Request) (*models.Template, bool) {
	templateID := chi.URLParam(r, "templateID")

	tmpl, err := a.schedule.GetTemplate(r.Context(), templateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "template_not_found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return nil, false
	}
	return tmpl, true
}

func (a *API) loadTemplateTimeline(w http.ResponseWriter, r *http.Request) (*models.Template, timeline.Timeline, bool) {
	tmpl, ok := a.loadTemplate(w, r)
	if !ok {
		return nil, timeline.Timeline{}, false
	}
	tl, err := schedule.ToTimeline(tmpl)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "invalid_template", "detail": err.Error(),
		})
		return nil, timeline.Timeline{}, false
	}
	return tmpl, tl, true
}

func writeExport(w http.ResponseWriter, result *schedule.ExportResult) {
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}
