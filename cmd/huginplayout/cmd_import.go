/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/hugin_playout/internal/catalog"
	"github.com/friendsincode/hugin_playout/internal/db"
	"github.com/friendsincode/hugin_playout/internal/models"
)

var importCatalogCmd = &cobra.Command{
	Use:   "import-catalog",
	Short: "Import a media manifest into a channel's catalog",
	Long:  "Read a scanned-media JSON manifest and store its entries as catalog items for a channel",
	RunE:  runImportCatalog,
}

var (
	importManifestPath string
	importChannelID    string
	importChannelName  string
)

func init() {
	rootCmd.AddCommand(importCatalogCmd)

	importCatalogCmd.Flags().StringVar(&importManifestPath, "manifest", "", "Path to the JSON media manifest (required)")
	importCatalogCmd.Flags().StringVar(&importChannelID, "channel", "", "Target channel ID")
	importCatalogCmd.Flags().StringVar(&importChannelName, "create-channel", "", "Create a channel with this name and import into it")
	importCatalogCmd.MarkFlagRequired("manifest")
}

func runImportCatalog(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if importChannelID == "" && importChannelName == "" {
		return fmt.Errorf("either --channel or --create-channel is required")
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close(conn) }()

	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx := context.Background()
	channelID := importChannelID
	if channelID == "" {
		channel := models.Channel{Name: importChannelName, FrameRate: cfg.FrameRate}
		if err := conn.WithContext(ctx).Create(&channel).Error; err != nil {
			return fmt.Errorf("create channel: %w", err)
		}
		channelID = channel.ID
		logger.Info().Str("channel_id", channelID).Str("name", channel.Name).Msg("channel created")
	}

	f, err := os.Open(importManifestPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	svc := catalog.NewService(conn, logger)
	imported, err := svc.ImportManifest(ctx, channelID, f)
	if err != nil {
		return err
	}

	logger.Info().Int("imported", imported).Str("channel_id", channelID).Msg("catalog import complete")
	return nil
}
