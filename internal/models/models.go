/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel is one playout channel owning templates and a content catalog.
type Channel struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Timezone    string    `gorm:"type:varchar(32)" json:"timezone,omitempty"`
	FrameRate   float64   `json:"frame_rate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was supplied.
func (c *Channel) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CatalogItem is a selectable content record. The engine treats file paths as
// opaque references; existence checks belong to the external validation step.
type CatalogItem struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID       string    `gorm:"type:uuid;index:idx_catalog_items_channel" json:"channel_id"`
	Title           string    `gorm:"index" json:"title"`
	FilePath        string    `json:"file_path"`
	DurationSeconds float64   `json:"duration_seconds"`
	Category        string    `gorm:"type:varchar(16);index" json:"category"`
	EngagementScore float64   `json:"engagement_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was supplied.
func (c *CatalogItem) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Template stores an authored schedule pattern for a channel.
type Template struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID   string `gorm:"type:uuid;index:idx_templates_channel;not null" json:"channel_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Topology    string `gorm:"type:varchar(8);not null" json:"topology"` // daily, weekly, monthly
	DaysInMonth int    `json:"days_in_month,omitempty"`                  // monthly only

	Items []TemplateItem `gorm:"foreignKey:TemplateID" json:"items,omitempty"`

	Channel *Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was supplied.
func (t *Template) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Item provenance on a template.
const (
	ItemSourceFixed = "fixed" // imported meeting / live input, immovable
	ItemSourceGap   = "gap"   // intentional blackout/transition marker
	ItemSourceFill  = "fill"  // placed by the fill engine
)

// TemplateItem is one unit on a template timeline. StartTime keeps the
// editor-facing string form; StartOffset is the engine's absolute seconds.
type TemplateItem struct {
	ID              string  `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID      string  `gorm:"type:uuid;index:idx_template_items_template;not null" json:"template_id"`
	CatalogItemID   *string `gorm:"type:uuid" json:"catalog_item_id,omitempty"`
	Title           string  `json:"title"`
	FilePath        string  `json:"file_path,omitempty"`
	StartTime       string  `gorm:"type:varchar(32)" json:"start_time,omitempty"`
	StartOffset     float64 `json:"start_offset"`
	DurationSeconds float64 `json:"duration_seconds"`
	Category        string  `gorm:"type:varchar(16)" json:"category,omitempty"`
	Source          string  `gorm:"type:varchar(8);not null" json:"source"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when none was supplied.
func (t *TemplateItem) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// RotationConfig is a persisted category rotation for a channel.
type RotationConfig struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID string `gorm:"type:uuid;index:idx_rotation_configs_channel;not null" json:"channel_id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`

	// Sequence is the ordered category list; repeats bias frequency.
	Sequence []string `gorm:"serializer:json;not null" json:"sequence"`

	// ReplayDelaySeconds maps category to minimum within-run spacing between
	// repeats of one item. Zero or absent disables the check.
	ReplayDelaySeconds map[string]float64 `gorm:"serializer:json" json:"replay_delay_seconds,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was supplied.
func (r *RotationConfig) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// FillRun records one fill invocation against a template, for history and
// operator diagnostics.
type FillRun struct {
	ID            string  `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID    string  `gorm:"type:uuid;index:idx_fill_runs_template;not null" json:"template_id"`
	ItemsAdded    int     `json:"items_added"`
	SecondsFilled float64 `json:"seconds_filled"`
	OpenSeconds   float64 `json:"open_seconds"`
	Partial       bool    `json:"partial"`

	// OpenGaps holds the remaining unfillable intervals as {start, end} pairs.
	OpenGaps []map[string]float64 `gorm:"serializer:json" json:"open_gaps,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when none was supplied.
func (f *FillRun) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
