/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/friendsincode/hugin_playout/internal/models"
)

func exportTemplate(t *testing.T) (*models.Template, []string) {
	t.Helper()
	tmpl := dailyTemplate(
		models.TemplateItem{
			Title:           "Morning Show",
			StartTime:       "06:00:00",
			DurationSeconds: 3600,
			Source:          models.ItemSourceFixed,
		},
		models.TemplateItem{
			Title:           "Maintenance Window",
			StartTime:       "03:00:00",
			DurationSeconds: 1800,
			Source:          models.ItemSourceGap,
		},
	)
	return tmpl, []string{"Maintenance Window", "Morning Show"}
}

func TestExportDailyLogCSV(t *testing.T) {
	tmpl, order := exportTemplate(t)
	tl, err := ToTimeline(tmpl)
	if err != nil {
		t.Fatalf("ToTimeline: %v", err)
	}

	result, err := ExportDailyLogCSV(tmpl, tl)
	if err != nil {
		t.Fatalf("ExportDailyLogCSV: %v", err)
	}
	if result.ContentType != "text/csv; charset=utf-8" {
		t.Errorf("content type = %q", result.ContentType)
	}
	if result.Filename != "weekday-daily-log.csv" {
		t.Errorf("filename = %q", result.Filename)
	}

	rows, err := csv.NewReader(strings.NewReader(string(result.Data))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "start" || rows[0][6] != "kind" {
		t.Errorf("header = %v", rows[0])
	}
	for i, want := range order {
		if rows[i+1][4] != want {
			t.Errorf("row %d title = %q, want %q", i+1, rows[i+1][4], want)
		}
	}
	// Authored in 24-hour form, so exports stay 24-hour.
	if rows[1][0] != "03:00:00.000" {
		t.Errorf("first start = %q", rows[1][0])
	}
	if rows[1][6] != "gap" || rows[2][6] != "fixed" {
		t.Errorf("kinds = %q, %q", rows[1][6], rows[2][6])
	}
}

func TestExportICal(t *testing.T) {
	tmpl, _ := exportTemplate(t)
	tl, err := ToTimeline(tmpl)
	if err != nil {
		t.Fatalf("ToTimeline: %v", err)
	}

	base := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	result, err := ExportICal(tmpl, tl, base)
	if err != nil {
		t.Fatalf("ExportICal: %v", err)
	}

	body := string(result.Data)
	if !strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(body, "END:VCALENDAR\r\n") {
		t.Fatal("missing calendar envelope")
	}
	if strings.Count(body, "BEGIN:VEVENT") != 2 {
		t.Errorf("events = %d, want 2", strings.Count(body, "BEGIN:VEVENT"))
	}
	if !strings.Contains(body, "DTSTART:20260309T060000Z") {
		t.Error("morning show should start 06:00 on base date")
	}
	if !strings.Contains(body, "CATEGORIES:GAP") {
		t.Error("gap marker should carry a category")
	}
	if !strings.Contains(body, "SUMMARY:Morning Show") {
		t.Error("missing event summary")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Weekday Grid", "weekday-grid"},
		{"  Prime / Time!  ", "prime--time"},
		{"###", "schedule"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
