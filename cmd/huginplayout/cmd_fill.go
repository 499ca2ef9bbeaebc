/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/friendsincode/hugin_playout/internal/fill"
	"github.com/friendsincode/hugin_playout/internal/logging"
	"github.com/friendsincode/hugin_playout/internal/timeline"
	"github.com/friendsincode/hugin_playout/internal/timemodel"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill a schedule document offline",
	Long:  "Run the fill engine against a YAML schedule document without a database, writing the filled schedule and a run report",
	RunE:  runFill,
}

var (
	fillInputPath     string
	fillOutputPath    string
	fillFrameRate     float64
	fillMaxIterations int
)

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringVar(&fillInputPath, "input", "", "Path to the YAML schedule document (required)")
	fillCmd.Flags().StringVar(&fillOutputPath, "output", "", "Path for the filled document (default: stdout)")
	fillCmd.Flags().Float64Var(&fillFrameRate, "frame-rate", timemodel.DefaultFrameRate, "Frame rate for frame guards")
	fillCmd.Flags().IntVar(&fillMaxIterations, "max-iterations", 0, "Placement bound per run (0 = derived)")
	fillCmd.MarkFlagRequired("input")
}

// scheduleDoc is the offline YAML form of a template plus catalog and rotation.
type scheduleDoc struct {
	Topology    string `yaml:"topology"`
	DaysInMonth int    `yaml:"days_in_month,omitempty"`

	Items []scheduleDocItem `yaml:"items"`

	Catalog []catalogDocItem `yaml:"catalog"`

	Rotation struct {
		Sequence           []string           `yaml:"sequence"`
		ReplayDelaySeconds map[string]float64 `yaml:"replay_delay_seconds,omitempty"`
	} `yaml:"rotation"`
}

type scheduleDocItem struct {
	Title           string  `yaml:"title"`
	FilePath        string  `yaml:"file_path,omitempty"`
	StartTime       string  `yaml:"start_time"`
	DurationSeconds float64 `yaml:"duration_seconds"`
	Category        string  `yaml:"category,omitempty"`
	Source          string  `yaml:"source"` // fixed, gap, or fill
}

type catalogDocItem struct {
	Title           string  `yaml:"title"`
	FilePath        string  `yaml:"file_path,omitempty"`
	DurationSeconds float64 `yaml:"duration_seconds"`
	Category        string  `yaml:"category"`
}

// filledDoc is what the fill command writes back out.
type filledDoc struct {
	Topology    string            `yaml:"topology"`
	DaysInMonth int               `yaml:"days_in_month,omitempty"`
	Items       []scheduleDocItem `yaml:"items"`
	Report      fill.Report       `yaml:"report"`
}

func runFill(cmd *cobra.Command, args []string) error {
	logger = logging.Setup("production")

	data, err := os.ReadFile(fillInputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var doc scheduleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	topology := timemodel.Topology(doc.Topology)
	tl, err := timeline.New(topology, doc.DaysInMonth)
	if err != nil {
		return err
	}

	for _, it := range doc.Items {
		offset, err := timemodel.ToOffset(it.StartTime, topology)
		if err != nil {
			return fmt.Errorf("item %q: %w", it.Title, err)
		}
		tl.Items = append(tl.Items, timeline.ScheduleItem{
			Title:           it.Title,
			FilePath:        it.FilePath,
			DurationSeconds: it.DurationSeconds,
			StartOffset:     offset,
			Placed:          true,
			Category:        timeline.DurationCategory(it.Category),
			FixedTime:       it.Source == "fixed",
			GapMarker:       it.Source == "gap",
		})
	}
	tl.SortItems()

	catalog := make([]fill.CatalogItem, 0, len(doc.Catalog))
	for _, c := range doc.Catalog {
		catalog = append(catalog, fill.CatalogItem{
			Title:           c.Title,
			FilePath:        c.FilePath,
			DurationSeconds: c.DurationSeconds,
			Category:        timeline.DurationCategory(c.Category),
		})
	}

	seq := make([]timeline.DurationCategory, 0, len(doc.Rotation.Sequence))
	for _, raw := range doc.Rotation.Sequence {
		c := timeline.DurationCategory(raw)
		if !timeline.ValidCategory(c) {
			return fmt.Errorf("rotation names unknown category %q", raw)
		}
		seq = append(seq, c)
	}

	var replayDelay map[timeline.DurationCategory]float64
	if len(doc.Rotation.ReplayDelaySeconds) > 0 {
		replayDelay = make(map[timeline.DurationCategory]float64, len(doc.Rotation.ReplayDelaySeconds))
		for raw, secs := range doc.Rotation.ReplayDelaySeconds {
			replayDelay[timeline.DurationCategory(raw)] = secs
		}
	}

	filler := fill.NewFiller(logger, fill.Options{
		FrameRate:     fillFrameRate,
		MaxIterations: fillMaxIterations,
		ReplayDelay:   replayDelay,
	})

	filled, report, err := filler.Fill(tl, catalog, fill.Rotation{Sequence: seq})
	if err != nil {
		return err
	}

	clock := detectDocClock(doc.Items)
	out := filledDoc{
		Topology:    doc.Topology,
		DaysInMonth: doc.DaysInMonth,
		Report:      report,
	}
	for _, it := range filled.Items {
		out.Items = append(out.Items, scheduleDocItem{
			Title:           it.Title,
			FilePath:        it.FilePath,
			StartTime:       timemodel.FromOffset(it.StartOffset, topology, clock),
			DurationSeconds: it.DurationSeconds,
			Category:        string(it.Category),
			Source:          docSource(it),
		})
	}

	rendered, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}

	if fillOutputPath == "" {
		_, err = os.Stdout.Write(rendered)
		return err
	}
	if err := os.WriteFile(fillOutputPath, rendered, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info().
		Int("items_added", report.ItemsAdded).
		Float64("seconds_filled", report.SecondsFilled).
		Float64("open_seconds", report.OpenSeconds).
		Bool("partial", report.Partial).
		Str("output", fillOutputPath).
		Msg("fill complete")
	return nil
}

func detectDocClock(items []scheduleDocItem) timemodel.Clock {
	authored := make([]string, 0, len(items))
	for _, it := range items {
		authored = append(authored, it.StartTime)
	}
	return timemodel.DetectClock(authored)
}

func docSource(it timeline.ScheduleItem) string {
	switch {
	case it.GapMarker:
		return "gap"
	case it.FixedTime:
		return "fixed"
	default:
		return "fill"
	}
}
