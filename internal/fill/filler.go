/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package fill

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/friendsincode/hugin_playout/internal/timeline"
	"github.com/friendsincode/hugin_playout/internal/timemodel"
)

// Options tunes one filler instance.
type Options struct {
	// FrameRate for frame guards; zero means timemodel.DefaultFrameRate.
	FrameRate float64
	// MaxIterations bounds total placements per run; zero derives a bound
	// from catalog and gap counts.
	MaxIterations int
	// ReplayDelay is optional per-category minimum spacing, in timeline
	// seconds, between repeats of the same item within one run.
	ReplayDelay map[timeline.DurationCategory]float64
}

// Filler orchestrates gap computation, content selection, and placement.
// Fill is a pure function of its inputs: all mutable state (usage counters,
// rotation index) lives for one invocation only.
type Filler struct {
	logger zerolog.Logger
	opts   Options
	calc   timeline.GapCalculator
}

// NewFiller creates a filler.
func NewFiller(logger zerolog.Logger, opts Options) *Filler {
	if opts.FrameRate <= 0 {
		opts.FrameRate = timemodel.DefaultFrameRate
	}
	return &Filler{
		logger: logger.With().Str("component", "schedule_filler").Logger(),
		opts:   opts,
		calc:   timeline.NewGapCalculator(opts.FrameRate),
	}
}

// Fill places catalog content into the timeline's free intervals and returns
// a new timeline plus a report. The input timeline is never mutated.
//
// Gaps are fully recomputed after every successful placement rather than
// patched incrementally; with catalogs and timelines in the hundreds the
// O(n²) total work is a fair trade for correctness at day boundaries and
// around gap markers.
func (f *Filler) Fill(t timeline.Timeline, catalog []CatalogItem, rot Rotation) (timeline.Timeline, Report, error) {
	if err := t.Validate(); err != nil {
		return timeline.Timeline{}, Report{}, fmt.Errorf("input timeline invalid: %w", err)
	}

	out := t.Clone()
	out.SortItems()
	rot.Reset()
	selector := NewSelector(catalog, f.opts.ReplayDelay)

	initial, err := f.calc.ComputeGaps(out)
	if err != nil {
		return timeline.Timeline{}, Report{}, err
	}

	bound := f.opts.MaxIterations
	if bound <= 0 {
		// Worst case is tiling the whole span with the shortest item, plus
		// one NoFit probe per catalog entry per gap.
		minDur := math.MaxFloat64
		for _, c := range catalog {
			if c.DurationSeconds > 0 && c.DurationSeconds < minDur {
				minDur = c.DurationSeconds
			}
		}
		if minDur == math.MaxFloat64 {
			minDur = 1
		}
		bound = int(out.TotalSeconds/minDur) + (len(catalog)+1)*(len(initial)+1)
	}

	var report Report
	exhausted := make(map[int64]bool)

	for {
		gaps, err := f.calc.ComputeGaps(out)
		if err != nil {
			return timeline.Timeline{}, Report{}, err
		}

		gap, ok := nextOpenGap(gaps, exhausted)
		if !ok {
			report.OpenGaps = openGaps(gaps)
			break
		}

		if report.Iterations >= bound {
			report.Partial = true
			report.OpenGaps = openGaps(gaps)
			f.logger.Warn().Int("iterations", report.Iterations).
				Msg("iteration bound reached before all gaps closed")
			break
		}

		cursor := gap.Start
		budget := gap.End - cursor

		idx, err := selector.SelectNext(budget, cursor, &rot)
		if errors.Is(err, ErrNoFit) {
			exhausted[gapKey(gap.Start)] = true
			continue
		}
		if err != nil {
			return timeline.Timeline{}, Report{}, err
		}

		chosen := catalog[idx]
		end := cursor + chosen.DurationSeconds

		// An oversized pick (large-gap relaxation) may only run long in a
		// trailing gap, where nothing follows it on the timeline.
		if end > gap.End+timemodel.OffsetTolerance && !timemodel.SameOffset(gap.End, out.TotalSeconds) {
			exhausted[gapKey(gap.Start)] = true
			continue
		}

		if out.Conflicts(cursor, end) {
			return timeline.Timeline{}, Report{}, fmt.Errorf(
				"%w: placing %q at [%f, %f)", timeline.ErrOverlapDetected,
				chosen.Title, cursor, end)
		}

		// The pick is only committed once it survives the fit and overlap
		// checks; a discarded pick must not advance the rotation.
		selector.Commit(idx, &rot)

		out.Items = append(out.Items, timeline.ScheduleItem{
			ID:              chosen.ID,
			Title:           chosen.Title,
			FilePath:        chosen.FilePath,
			DurationSeconds: chosen.DurationSeconds,
			StartOffset:     cursor,
			Placed:          true,
			Category:        chosen.Category,
			UsageCount:      selector.UsageCount(idx),
		})
		out.SortItems()
		selector.MarkPlaced(idx, end)

		report.ItemsAdded++
		report.SecondsFilled += chosen.DurationSeconds
		report.Iterations++

		f.logger.Debug().
			Str("title", chosen.Title).
			Str("category", string(chosen.Category)).
			Float64("start", cursor).
			Float64("end", end).
			Msg("placed item")
	}

	if err := out.Validate(); err != nil {
		return timeline.Timeline{}, Report{}, err
	}

	report.OpenSeconds = timeline.OpenSeconds(report.OpenGaps)
	return out, report, nil
}

// nextOpenGap returns the earliest gap wide enough to matter that has not
// been marked exhausted.
func nextOpenGap(gaps []timeline.Gap, exhausted map[int64]bool) (timeline.Gap, bool) {
	for _, g := range gaps {
		if g.Duration() <= timemodel.OffsetTolerance {
			continue
		}
		if exhausted[gapKey(g.Start)] {
			continue
		}
		return g, true
	}
	return timeline.Gap{}, false
}

func openGaps(gaps []timeline.Gap) []timeline.Gap {
	out := make([]timeline.Gap, 0, len(gaps))
	for _, g := range gaps {
		if g.Duration() > timemodel.OffsetTolerance {
			out = append(out, g)
		}
	}
	return out
}

// gapKey buckets a gap start to whole milliseconds so float drift cannot
// split the exhausted set.
func gapKey(start float64) int64 {
	return int64(math.Round(start * 1000))
}
