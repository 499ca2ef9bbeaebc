/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package timeline

import (
	"fmt"

	"github.com/friendsincode/hugin_playout/internal/timemodel"
)

// Gap is a maximal contiguous unoccupied interval.
type Gap struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Duration returns the gap width in seconds.
func (g Gap) Duration() float64 {
	return g.End - g.Start
}

// GapCalculator derives the free intervals of a timeline. Every placed item
// counts as an anchor: fixed-time items, gap markers, and previously placed
// fill items alike. Folding gap markers into the anchor set up front is what
// makes a separate exclusion pass unnecessary.
type GapCalculator struct {
	FrameRate float64
}

// NewGapCalculator returns a calculator with the given frame rate; zero means
// the default rate.
func NewGapCalculator(frameRate float64) GapCalculator {
	if frameRate <= 0 {
		frameRate = timemodel.DefaultFrameRate
	}
	return GapCalculator{FrameRate: frameRate}
}

// ComputeGaps returns the disjoint, ascending free intervals of the whole
// timeline. A frame guard follows each anchor so that a placement starting at
// a gap boundary never lands frame-exact against the anchor before it.
// Anchors that overlap each other are malformed input and yield
// ErrOverlapDetected.
func (c GapCalculator) ComputeGaps(t Timeline) ([]Gap, error) {
	return c.computeRange(t, 0, t.TotalSeconds)
}

// ComputeDayGaps restricts the walk to one day bucket of a weekly or monthly
// timeline. Anchors spilling across the bucket edge still subtract the seconds
// they occupy inside it.
func (c GapCalculator) ComputeDayGaps(t Timeline, day int) ([]Gap, error) {
	lo := float64(day) * timemodel.DaySeconds
	hi := lo + timemodel.DaySeconds
	if lo < 0 || hi > t.TotalSeconds+timemodel.OffsetTolerance {
		return nil, fmt.Errorf("day %d outside %s timeline", day, t.Topology)
	}
	return c.computeRange(t, lo, hi)
}

func (c GapCalculator) computeRange(t Timeline, lo, hi float64) ([]Gap, error) {
	anchors := t.placedSorted()

	for i := 1; i < len(anchors); i++ {
		prev, cur := anchors[i-1], anchors[i]
		if cur.StartOffset < prev.EndOffset()-timemodel.OffsetTolerance {
			return nil, fmt.Errorf("%w: anchors %q and %q intersect",
				ErrOverlapDetected, prev.Title, cur.Title)
		}
	}

	var gaps []Gap
	cursor := lo
	for _, a := range anchors {
		if a.EndOffset() <= lo || a.StartOffset >= hi {
			continue
		}
		start := a.StartOffset
		if start < lo {
			start = lo
		}
		if start-cursor > timemodel.OffsetTolerance {
			gaps = append(gaps, Gap{Start: cursor, End: start})
		}
		guarded := timemodel.AddFrameGuard(a.EndOffset(), c.FrameRate)
		if guarded > cursor {
			cursor = guarded
		}
	}
	if hi-cursor > timemodel.OffsetTolerance {
		gaps = append(gaps, Gap{Start: cursor, End: hi})
	}
	return gaps, nil
}

// OpenSeconds sums the durations of a gap list.
func OpenSeconds(gaps []Gap) float64 {
	var sum float64
	for _, g := range gaps {
		sum += g.Duration()
	}
	return sum
}
