/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/friendsincode/hugin_playout/internal/models"
	"github.com/friendsincode/hugin_playout/internal/timeline"
	"github.com/friendsincode/hugin_playout/internal/timemodel"
)

// ExportResult carries rendered export data plus HTTP metadata.
type ExportResult struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ExportDailyLogCSV renders a filled timeline as a playout daily log. Rows
// are emitted in airing order with both string and raw-second offsets so
// downstream automation can pick either.
func ExportDailyLogCSV(tmpl *models.Template, tl timeline.Timeline) (*ExportResult, error) {
	authored := make([]string, 0, len(tmpl.Items))
	for _, it := range tmpl.Items {
		authored = append(authored, it.StartTime)
	}
	clock := timemodel.DetectClock(authored)

	sorted := tl.Clone()
	sorted.SortItems()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"start", "end", "start_seconds", "duration_seconds", "title", "category", "kind", "file_path"}); err != nil {
		return nil, err
	}

	for _, it := range sorted.Items {
		if !it.Placed {
			continue
		}
		row := []string{
			timemodel.FromOffset(it.StartOffset, tl.Topology, clock),
			timemodel.FromOffset(it.EndOffset(), tl.Topology, clock),
			strconv.FormatFloat(it.StartOffset, 'f', 3, 64),
			strconv.FormatFloat(it.DurationSeconds, 'f', 3, 64),
			it.Title,
			string(it.Category),
			itemKind(it),
			it.FilePath,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &ExportResult{
		Data:        buf.Bytes(),
		Filename:    fmt.Sprintf("%s-daily-log.csv", slugify(tmpl.Name)),
		ContentType: "text/csv; charset=utf-8",
	}, nil
}

// ExportICal renders the timeline as an iCal feed anchored at baseDate, for
// editors who review schedules in a calendar client.
func ExportICal(tmpl *models.Template, tl timeline.Timeline, baseDate time.Time) (*ExportResult, error) {
	sorted := tl.Clone()
	sorted.SortItems()

	base := time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("PRODID:-//Hugin Playout//Schedule Export//EN\r\n")
	buf.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICalText(tmpl.Name)))
	buf.WriteString("CALSCALE:GREGORIAN\r\n")
	buf.WriteString("METHOD:PUBLISH\r\n")

	for i, it := range sorted.Items {
		if !it.Placed {
			continue
		}
		start := base.Add(time.Duration(it.StartOffset * float64(time.Second)))
		end := base.Add(time.Duration(it.EndOffset() * float64(time.Second)))

		buf.WriteString("BEGIN:VEVENT\r\n")
		buf.WriteString(fmt.Sprintf("UID:%s-%d@hugin\r\n", tmpl.ID, i))
		buf.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICalTime(time.Now())))
		buf.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICalTime(start)))
		buf.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICalTime(end)))
		buf.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICalText(it.Title)))
		if kind := itemKind(it); kind != "fill" {
			buf.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", strings.ToUpper(kind)))
		}
		buf.WriteString("END:VEVENT\r\n")
	}

	buf.WriteString("END:VCALENDAR\r\n")

	return &ExportResult{
		Data:        buf.Bytes(),
		Filename:    fmt.Sprintf("%s-schedule.ics", slugify(tmpl.Name)),
		ContentType: "text/calendar; charset=utf-8",
	}, nil
}

func itemKind(it timeline.ScheduleItem) string {
	switch {
	case it.GapMarker:
		return "gap"
	case it.FixedTime:
		return "fixed"
	default:
		return "fill"
	}
}

func formatICalTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escapeICalText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "schedule"
	}
	return out
}
