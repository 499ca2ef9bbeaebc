/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"fmt"
	"math"

	"github.com/friendsincode/hugin_playout/internal/catalog"
	"github.com/friendsincode/hugin_playout/internal/models"
	"github.com/friendsincode/hugin_playout/internal/timeline"
	"github.com/friendsincode/hugin_playout/internal/timemodel"
)

// ToTimeline converts a stored template into the engine's timeline value.
// Items carrying a start-time string are parsed through the time model; a
// bad string surfaces as MalformedTime rather than being guessed at.
func ToTimeline(tmpl *models.Template) (timeline.Timeline, error) {
	topology, err := topologyOf(tmpl)
	if err != nil {
		return timeline.Timeline{}, err
	}

	tl, err := timeline.New(topology, tmpl.DaysInMonth)
	if err != nil {
		return timeline.Timeline{}, err
	}

	for _, item := range tmpl.Items {
		start := item.StartOffset
		if item.StartTime != "" {
			start, err = timemodel.ToOffset(item.StartTime, topology)
			if err != nil {
				return timeline.Timeline{}, fmt.Errorf("item %q: %w", item.Title, err)
			}
		}

		id := ""
		if item.CatalogItemID != nil {
			id = *item.CatalogItemID
		}

		tl.Items = append(tl.Items, timeline.ScheduleItem{
			ID:              id,
			Title:           item.Title,
			FilePath:        item.FilePath,
			DurationSeconds: item.DurationSeconds,
			StartOffset:     start,
			Placed:          true,
			Category:        catalog.NormalizeCategory(item.Category, item.DurationSeconds),
			FixedTime:       item.Source == models.ItemSourceFixed,
			GapMarker:       item.Source == models.ItemSourceGap,
		})
	}

	tl.SortItems()
	return tl, nil
}

// AddedItems diffs a filled timeline against the pre-fill one and returns
// template records for the new placements, with display time strings in the
// convention the template's authored items already use.
func AddedItems(tmpl *models.Template, before, after timeline.Timeline) []models.TemplateItem {
	existing := make(map[string]bool, len(before.Items))
	for _, it := range before.Items {
		existing[placementKey(it)] = true
	}

	authored := make([]string, 0, len(tmpl.Items))
	for _, it := range tmpl.Items {
		authored = append(authored, it.StartTime)
	}
	clock := timemodel.DetectClock(authored)

	var added []models.TemplateItem
	for _, it := range after.Items {
		if existing[placementKey(it)] {
			continue
		}
		rec := models.TemplateItem{
			Title:           it.Title,
			FilePath:        it.FilePath,
			StartTime:       timemodel.FromOffset(it.StartOffset, after.Topology, clock),
			StartOffset:     it.StartOffset,
			DurationSeconds: it.DurationSeconds,
			Category:        string(it.Category),
			Source:          models.ItemSourceFill,
		}
		if it.ID != "" {
			id := it.ID
			rec.CatalogItemID = &id
		}
		added = append(added, rec)
	}
	return added
}

func topologyOf(tmpl *models.Template) (timemodel.Topology, error) {
	topology := timemodel.Topology(tmpl.Topology)
	switch topology {
	case timemodel.TopologyDaily, timemodel.TopologyWeekly, timemodel.TopologyMonthly:
		return topology, nil
	default:
		return "", fmt.Errorf("template %q has unknown topology %q", tmpl.Name, tmpl.Topology)
	}
}

func placementKey(it timeline.ScheduleItem) string {
	return fmt.Sprintf("%s|%d", it.ID, int64(math.Round(it.StartOffset*1000)))
}
