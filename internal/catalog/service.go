/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/hugin_playout/internal/fill"
	"github.com/friendsincode/hugin_playout/internal/models"
	"github.com/friendsincode/hugin_playout/internal/timeline"
)

// Service loads catalog snapshots for the fill engine and imports scanned
// media manifests.
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a catalog service.
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Snapshot returns the channel's catalog in a stable order. The order is the
// fill engine's deterministic tie-breaker, so it must not vary between calls.
func (s *Service) Snapshot(ctx context.Context, channelID string) ([]fill.CatalogItem, error) {
	var records []models.CatalogItem
	err := s.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	items := make([]fill.CatalogItem, 0, len(records))
	for _, rec := range records {
		items = append(items, fill.CatalogItem{
			ID:              rec.ID,
			Title:           rec.Title,
			FilePath:        rec.FilePath,
			DurationSeconds: rec.DurationSeconds,
			Category:        NormalizeCategory(rec.Category, rec.DurationSeconds),
			EngagementScore: rec.EngagementScore,
		})
	}
	return items, nil
}

// manifestEntry tolerates the field-name variants that scanned-media
// manifests have shipped with. Normalization happens once, here, at the
// boundary; everything downstream sees only models.CatalogItem.
type manifestEntry struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	ContentTitle    string  `json:"content_title"`
	FileName        string  `json:"file_name"`
	FilePath        string  `json:"file_path"`
	DurationSeconds float64 `json:"duration_seconds"`
	FileDuration    float64 `json:"file_duration"`
	Category        string  `json:"duration_category"`
	EngagementScore float64 `json:"engagement_score"`
}

type manifest struct {
	Items []manifestEntry `json:"items"`
}

// ImportManifest ingests a JSON media manifest for a channel and returns the
// number of items stored. Entries without a positive duration are skipped.
func (s *Service) ImportManifest(ctx context.Context, channelID string, r io.Reader) (int, error) {
	var m manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return 0, fmt.Errorf("decode manifest: %w", err)
	}

	imported := 0
	for _, entry := range m.Items {
		rec, ok := normalizeEntry(channelID, entry)
		if !ok {
			s.logger.Warn().Str("title", rec.Title).Msg("skipping manifest entry without duration")
			continue
		}
		if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return imported, fmt.Errorf("store catalog item %q: %w", rec.Title, err)
		}
		imported++
	}

	s.logger.Info().Int("imported", imported).Str("channel_id", channelID).Msg("manifest import complete")
	return imported, nil
}

func normalizeEntry(channelID string, e manifestEntry) (models.CatalogItem, bool) {
	title := firstNonEmpty(e.Title, e.ContentTitle, e.FileName)
	duration := e.DurationSeconds
	if duration <= 0 {
		duration = e.FileDuration
	}

	rec := models.CatalogItem{
		ID:              e.ID,
		ChannelID:       channelID,
		Title:           title,
		FilePath:        firstNonEmpty(e.FilePath, e.FileName),
		DurationSeconds: duration,
		Category:        string(NormalizeCategory(e.Category, duration)),
		EngagementScore: e.EngagementScore,
	}
	return rec, duration > 0
}

// NormalizeCategory maps a stored category string onto the known enum,
// deriving a bucket from duration when the string is absent or unknown.
func NormalizeCategory(raw string, durationSeconds float64) timeline.DurationCategory {
	c := timeline.DurationCategory(strings.ToLower(strings.TrimSpace(raw)))
	if timeline.ValidCategory(c) {
		return c
	}
	switch {
	case durationSeconds <= 15:
		return timeline.CategoryID
	case durationSeconds <= 120:
		return timeline.CategorySpots
	case durationSeconds <= 900:
		return timeline.CategoryShortForm
	default:
		return timeline.CategoryLongForm
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
