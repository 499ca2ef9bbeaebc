/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/hugin_playout/internal/fill"
	"github.com/friendsincode/hugin_playout/internal/models"
	"github.com/friendsincode/hugin_playout/internal/timeline"
)

// Service handles template persistence.
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a template service.
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "schedule").Logger(),
	}
}

// GetTemplate loads a template with its items in placement order.
func (s *Service) GetTemplate(ctx context.Context, templateID string) (*models.Template, error) {
	var tmpl models.Template
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_offset ASC, created_at ASC")
		}).
		First(&tmpl, "id = ?", templateID).Error
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// ListTemplates returns all templates for a channel.
func (s *Service) ListTemplates(ctx context.Context, channelID string) ([]models.Template, error) {
	var templates []models.Template
	err := s.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("name ASC").
		Find(&templates).Error
	return templates, err
}

// CreateTemplate stores a new template and its initial items.
func (s *Service) CreateTemplate(ctx context.Context, tmpl *models.Template) error {
	if _, err := topologyOf(tmpl); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(tmpl).Error
}

// ApplyFill persists the items a fill run appended plus a FillRun record,
// atomically. The template's existing items are never touched.
func (s *Service) ApplyFill(ctx context.Context, tmpl *models.Template, added []models.TemplateItem, report fill.Report) (*models.FillRun, error) {
	run := &models.FillRun{
		TemplateID:    tmpl.ID,
		ItemsAdded:    report.ItemsAdded,
		SecondsFilled: report.SecondsFilled,
		OpenSeconds:   report.OpenSeconds,
		Partial:       report.Partial,
		OpenGaps:      gapsToRecords(report.OpenGaps),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range added {
			added[i].TemplateID = tmpl.ID
			if err := tx.Create(&added[i]).Error; err != nil {
				return fmt.Errorf("store filled item %q: %w", added[i].Title, err)
			}
		}
		return tx.Create(run).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("template_id", tmpl.ID).
		Int("items_added", report.ItemsAdded).
		Float64("seconds_filled", report.SecondsFilled).
		Bool("partial", report.Partial).
		Msg("fill applied")
	return run, nil
}

// GetRotation loads a persisted rotation config.
func (s *Service) GetRotation(ctx context.Context, rotationID string) (*models.RotationConfig, error) {
	var rot models.RotationConfig
	if err := s.db.WithContext(ctx).First(&rot, "id = ?", rotationID).Error; err != nil {
		return nil, err
	}
	return &rot, nil
}

// ListFillRuns returns a template's fill history, newest first.
func (s *Service) ListFillRuns(ctx context.Context, templateID string) ([]models.FillRun, error) {
	var runs []models.FillRun
	err := s.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("created_at DESC").
		Find(&runs).Error
	return runs, err
}

func gapsToRecords(gaps []timeline.Gap) []map[string]float64 {
	out := make([]map[string]float64, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, map[string]float64{"start": g.Start, "end": g.End})
	}
	return out
}
