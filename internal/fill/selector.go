/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package fill

import (
	"errors"

	"github.com/friendsincode/hugin_playout/internal/timeline"
)

// ErrNoFit means the current gap has no eligible content left. It is a normal
// selector outcome, not a failure.
var ErrNoFit = errors.New("no content fits the remaining gap")

// LargeGapThreshold is the remaining budget, in seconds, beyond which the
// selector drops the duration-fit constraint as a last resort.
const LargeGapThreshold = 300.0

// CatalogItem is one selectable content record from the catalog snapshot.
type CatalogItem struct {
	ID              string
	Title           string
	FilePath        string
	DurationSeconds float64
	Category        timeline.DurationCategory
	EngagementScore float64
}

// Rotation is the cyclic category sequence consulted for each placement.
// The index is engine-internal state, reset per fill run.
type Rotation struct {
	Sequence []timeline.DurationCategory
	index    int
}

// Current returns the category the rotation points at, or "" for an empty
// sequence.
func (r *Rotation) Current() timeline.DurationCategory {
	if len(r.Sequence) == 0 {
		return ""
	}
	return r.Sequence[r.index%len(r.Sequence)]
}

// Advance moves to the next category. The rotation advances exactly once per
// successful placement, whether or not the category constraint was honored.
func (r *Rotation) Advance() {
	if len(r.Sequence) > 0 {
		r.index = (r.index + 1) % len(r.Sequence)
	}
}

// Reset rewinds the rotation to its first category.
func (r *Rotation) Reset() {
	r.index = 0
}

// Selector picks catalog items for gaps, balancing repeats via per-run usage
// counters. All selector state is scoped to one fill invocation.
type Selector struct {
	catalog []CatalogItem
	usage   []int
	lastEnd []float64 // timeline offset where each item last ended, -1 if never

	// replayDelay holds optional per-category minimum spacing, in timeline
	// seconds, between two placements of the same item within one run.
	replayDelay map[timeline.DurationCategory]float64
}

// NewSelector builds a selector over a catalog snapshot. Catalog order is the
// deterministic tie-breaker, so the slice order is significant.
func NewSelector(catalog []CatalogItem, replayDelay map[timeline.DurationCategory]float64) *Selector {
	lastEnd := make([]float64, len(catalog))
	for i := range lastEnd {
		lastEnd[i] = -1
	}
	return &Selector{
		catalog:     catalog,
		usage:       make([]int, len(catalog)),
		lastEnd:     lastEnd,
		replayDelay: replayDelay,
	}
}

// SelectNext picks the next item for a gap with remainingBudget seconds left,
// with the placement cursor at cursor, and returns the catalog index. The
// pick is tentative: nothing changes until the caller confirms the placement
// with Commit, so a discarded pick leaves usage counters and the rotation
// untouched.
//
// Priority order: target category within budget, any category within budget,
// then (for large gaps only) the globally least-used item regardless of fit.
func (s *Selector) SelectNext(remainingBudget, cursor float64, rot *Rotation) (int, error) {
	if len(s.catalog) == 0 {
		return 0, ErrNoFit
	}

	target := rot.Current()

	if idx := s.pick(remainingBudget, cursor, target, true); idx >= 0 {
		return idx, nil
	}
	if idx := s.pick(remainingBudget, cursor, "", true); idx >= 0 {
		return idx, nil
	}
	if remainingBudget > LargeGapThreshold {
		if idx := s.leastUsed(); idx >= 0 {
			return idx, nil
		}
	}
	return 0, ErrNoFit
}

// Commit records a successful placement of the item at idx: its usage count
// is bumped and the rotation advances. The rotation advances exactly once per
// placement, never for picks the caller discarded.
func (s *Selector) Commit(idx int, rot *Rotation) {
	s.usage[idx]++
	rot.Advance()
}

// MarkPlaced records where an item ended on the timeline, feeding the replay
// delay spacing check.
func (s *Selector) MarkPlaced(idx int, endOffset float64) {
	if idx >= 0 && idx < len(s.lastEnd) {
		s.lastEnd[idx] = endOffset
	}
}

// UsageCount exposes the per-run counter for an item.
func (s *Selector) UsageCount(idx int) int {
	return s.usage[idx]
}

// pick returns the lowest-usage candidate matching the category filter (""
// matches all) that fits the budget, honoring replay delays. Ties break by
// catalog order because the scan is in-order and strictly-less comparisons
// keep the earliest.
func (s *Selector) pick(budget, cursor float64, category timeline.DurationCategory, enforceDelay bool) int {
	best := -1
	for i, item := range s.catalog {
		if item.DurationSeconds <= 0 || item.DurationSeconds > budget {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		if enforceDelay && s.delayed(i, cursor) {
			continue
		}
		if best == -1 || s.usage[i] < s.usage[best] {
			best = i
		}
	}
	return best
}

// leastUsed ignores both the category and the duration-fit constraints, and
// relaxes replay delays; the caller only reaches here for large open gaps.
func (s *Selector) leastUsed() int {
	best := -1
	for i, item := range s.catalog {
		if item.DurationSeconds <= 0 {
			continue
		}
		if best == -1 || s.usage[i] < s.usage[best] {
			best = i
		}
	}
	return best
}

func (s *Selector) delayed(idx int, cursor float64) bool {
	if len(s.replayDelay) == 0 {
		return false
	}
	delay := s.replayDelay[s.catalog[idx].Category]
	if delay <= 0 {
		return false
	}
	last := s.lastEnd[idx]
	return last >= 0 && cursor-last < delay
}
