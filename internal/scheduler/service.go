/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/hugin_playout/internal/catalog"
	"github.com/friendsincode/hugin_playout/internal/fill"
	"github.com/friendsincode/hugin_playout/internal/models"
	"github.com/friendsincode/hugin_playout/internal/schedule"
	"github.com/friendsincode/hugin_playout/internal/telemetry"
	"github.com/friendsincode/hugin_playout/internal/timeline"
)

// Options tunes fill runs started through the service.
type Options struct {
	FrameRate     float64
	MaxIterations int
}

// Service orchestrates fill runs: it assembles the timeline, catalog
// snapshot, and rotation, invokes the fill engine, and persists the outcome.
type Service struct {
	db       *gorm.DB
	catalog  *catalog.Service
	schedule *schedule.Service
	opts     Options
	logger   zerolog.Logger
}

// New creates the scheduler service.
func New(db *gorm.DB, catalogSvc *catalog.Service, scheduleSvc *schedule.Service, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		db:       db,
		catalog:  catalogSvc,
		schedule: scheduleSvc,
		opts:     opts,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// FillResult bundles everything a fill run produced.
type FillResult struct {
	Template *models.Template
	Timeline timeline.Timeline
	Report   fill.Report
	Run      *models.FillRun
}

// FillTemplate runs the fill engine against a stored template using a stored
// rotation, persists the new placements, and records the run.
func (s *Service) FillTemplate(ctx context.Context, templateID, rotationID string) (*FillResult, error) {
	tmpl, err := s.schedule.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	rotCfg, err := s.schedule.GetRotation(ctx, rotationID)
	if err != nil {
		return nil, fmt.Errorf("load rotation: %w", err)
	}
	if rotCfg.ChannelID != tmpl.ChannelID {
		return nil, fmt.Errorf("rotation %q belongs to another channel", rotCfg.Name)
	}

	items, err := s.catalog.Snapshot(ctx, tmpl.ChannelID)
	if err != nil {
		return nil, err
	}

	before, err := schedule.ToTimeline(tmpl)
	if err != nil {
		return nil, err
	}

	rotation, replayDelay := buildRotation(rotCfg)
	filler := fill.NewFiller(s.logger, fill.Options{
		FrameRate:     s.opts.FrameRate,
		MaxIterations: s.opts.MaxIterations,
		ReplayDelay:   replayDelay,
	})

	filled, report, err := filler.Fill(before, items, rotation)
	if err != nil {
		telemetry.FillRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	added := schedule.AddedItems(tmpl, before, filled)
	run, err := s.schedule.ApplyFill(ctx, tmpl, added, report)
	if err != nil {
		return nil, fmt.Errorf("persist fill: %w", err)
	}

	outcome := "complete"
	if report.Partial {
		outcome = "partial"
	} else if len(report.OpenGaps) > 0 {
		outcome = "open_gaps"
	}
	telemetry.FillRunsTotal.WithLabelValues(outcome).Inc()
	telemetry.FillItemsPlacedTotal.Add(float64(report.ItemsAdded))
	telemetry.FillOpenSeconds.Observe(report.OpenSeconds)

	return &FillResult{Template: tmpl, Timeline: filled, Report: report, Run: run}, nil
}

// buildRotation converts a persisted rotation config into engine values.
// Unknown category tokens are dropped rather than aborting the run.
func buildRotation(cfg *models.RotationConfig) (fill.Rotation, map[timeline.DurationCategory]float64) {
	seq := make([]timeline.DurationCategory, 0, len(cfg.Sequence))
	for _, raw := range cfg.Sequence {
		c := timeline.DurationCategory(raw)
		if timeline.ValidCategory(c) {
			seq = append(seq, c)
		}
	}

	var delay map[timeline.DurationCategory]float64
	if len(cfg.ReplayDelaySeconds) > 0 {
		delay = make(map[timeline.DurationCategory]float64, len(cfg.ReplayDelaySeconds))
		for raw, secs := range cfg.ReplayDelaySeconds {
			c := timeline.DurationCategory(raw)
			if timeline.ValidCategory(c) && secs > 0 {
				delay[c] = secs
			}
		}
	}

	return fill.Rotation{Sequence: seq}, delay
}
