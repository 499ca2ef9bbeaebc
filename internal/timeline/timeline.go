/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package timeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/friendsincode/hugin_playout/internal/timemodel"
)

// ErrOverlapDetected indicates two placed items occupy the same instant.
// It is fatal: the engine never silently re-splits or re-orders to recover.
var ErrOverlapDetected = errors.New("overlap detected")

// DurationCategory buckets content by coarse length for rotation matching.
type DurationCategory string

const (
	CategoryID        DurationCategory = "id"
	CategorySpots     DurationCategory = "spots"
	CategoryShortForm DurationCategory = "short_form"
	CategoryLongForm  DurationCategory = "long_form"
)

// ValidCategory reports whether c is one of the known duration categories.
func ValidCategory(c DurationCategory) bool {
	switch c {
	case CategoryID, CategorySpots, CategoryShortForm, CategoryLongForm:
		return true
	}
	return false
}

// ScheduleItem is one placed or placeable unit on a timeline.
type ScheduleItem struct {
	ID              string
	Title           string
	FilePath        string
	DurationSeconds float64
	StartOffset     float64
	Placed          bool // StartOffset is only meaningful when Placed
	Category        DurationCategory
	FixedTime       bool // anchor: never moved or overwritten
	GapMarker       bool // intentional silence: occupies time, never filled
	UsageCount      int
}

// EndOffset is derived; it is never stored independently of start+duration.
func (it ScheduleItem) EndOffset() float64 {
	return it.StartOffset + it.DurationSeconds
}

// Timeline is the full span being scheduled, in absolute seconds from start.
type Timeline struct {
	Topology     timemodel.Topology
	TotalSeconds float64
	Items        []ScheduleItem
}

// New builds an empty timeline for a topology. daysInMonth is only consulted
// for monthly timelines.
func New(topology timemodel.Topology, daysInMonth int) (Timeline, error) {
	total, err := timemodel.TopologySeconds(topology, daysInMonth)
	if err != nil {
		return Timeline{}, err
	}
	return Timeline{Topology: topology, TotalSeconds: total}, nil
}

// Clone returns a deep copy so Fill can produce a new value without aliasing
// caller state.
func (t Timeline) Clone() Timeline {
	out := t
	out.Items = make([]ScheduleItem, len(t.Items))
	copy(out.Items, t.Items)
	return out
}

// SortItems orders placed items by start offset. Unplaced items sink to the
// end in their original order.
func (t *Timeline) SortItems() {
	sort.SliceStable(t.Items, func(i, j int) bool {
		a, b := t.Items[i], t.Items[j]
		if a.Placed != b.Placed {
			return a.Placed
		}
		return a.StartOffset < b.StartOffset
	})
}

// Validate checks the core correctness property: placed items sorted by start
// offset with no pair of intervals intersecting. Zero-width touching within
// tolerance is allowed.
func (t Timeline) Validate() error {
	placed := t.placedSorted()
	for i := 1; i < len(placed); i++ {
		prev, cur := placed[i-1], placed[i]
		if cur.StartOffset < prev.EndOffset()-timemodel.OffsetTolerance {
			return fmt.Errorf("%w: %q [%f, %f) intersects %q [%f, %f)",
				ErrOverlapDetected,
				prev.Title, prev.StartOffset, prev.EndOffset(),
				cur.Title, cur.StartOffset, cur.EndOffset())
		}
	}
	for _, it := range placed {
		if it.DurationSeconds <= 0 {
			return fmt.Errorf("placed item %q has non-positive duration %f", it.Title, it.DurationSeconds)
		}
	}
	return nil
}

// Conflicts reports whether the candidate interval intersects any placed item.
func (t Timeline) Conflicts(start, end float64) bool {
	for _, it := range t.Items {
		if !it.Placed {
			continue
		}
		if start < it.EndOffset()-timemodel.OffsetTolerance &&
			end > it.StartOffset+timemodel.OffsetTolerance {
			return true
		}
	}
	return false
}

// PlacedDuration sums the seconds consumed by placed items.
func (t Timeline) PlacedDuration() float64 {
	var sum float64
	for _, it := range t.Items {
		if it.Placed {
			sum += it.DurationSeconds
		}
	}
	return sum
}

func (t Timeline) placedSorted() []ScheduleItem {
	placed := make([]ScheduleItem, 0, len(t.Items))
	for _, it := range t.Items {
		if it.Placed {
			placed = append(placed, it)
		}
	}
	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].StartOffset < placed[j].StartOffset
	})
	return placed
}
