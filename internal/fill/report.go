/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package fill

import "github.com/friendsincode/hugin_playout/internal/timeline"

// Report summarizes one fill run for the caller. Open gaps and partial fills
// are informational outcomes, not errors.
type Report struct {
	ItemsAdded    int            `json:"items_added" yaml:"items_added"`
	SecondsFilled float64        `json:"seconds_filled" yaml:"seconds_filled"`
	OpenGaps      []timeline.Gap `json:"open_gaps,omitempty" yaml:"open_gaps,omitempty"`
	OpenSeconds   float64        `json:"open_seconds" yaml:"open_seconds"`
	Partial       bool           `json:"partial" yaml:"partial"` // iteration bound hit before all gaps closed
	Iterations    int            `json:"iterations" yaml:"iterations"`
}
