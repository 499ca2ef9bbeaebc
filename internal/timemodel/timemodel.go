/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package timemodel

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedTime indicates a time string could not be parsed.
var ErrMalformedTime = errors.New("malformed time string")

// Topology selects the span a timeline covers.
type Topology string

const (
	TopologyDaily   Topology = "daily"
	TopologyWeekly  Topology = "weekly"
	TopologyMonthly Topology = "monthly"
)

const (
	// DaySeconds is the length of one day bucket.
	DaySeconds = 86400.0

	// DefaultFrameRate is the NTSC-ish frame rate used for frame guards.
	DefaultFrameRate = 29.976

	// OffsetTolerance is the equality window for offsets. Two offsets
	// within one millisecond are the same instant.
	OffsetTolerance = 0.001
)

// Clock selects the 12/24-hour rendering convention.
type Clock int

const (
	Clock12 Clock = iota
	Clock24
)

var dayNames = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// timePattern accepts an optional day prefix (sun..sat or d01..d31), HH:MM
// with optional seconds and milliseconds, and an optional am/pm suffix.
var timePattern = regexp.MustCompile(`(?i)^(?:([a-z]{3}|d\d{1,2})\s+)?(\d{1,2}):(\d{2})(?::(\d{2})(?:\.(\d{1,3}))?)?\s*(am|pm)?$`)

// ToOffset parses a human time string into absolute seconds since the
// timeline start. Weekly strings must carry a sun..sat day prefix; monthly
// strings carry a d01..d31 day-of-month prefix (optional, day one assumed);
// daily strings must carry none.
func ToOffset(s string, topology Topology) (float64, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	dayToken, hourStr, minStr, secStr, msStr, meridiem := m[1], m[2], m[3], m[4], m[5], strings.ToLower(m[6])

	dayIndex := 0
	switch {
	case topology == TopologyWeekly:
		if dayToken == "" {
			return 0, fmt.Errorf("%w: %q: weekly time requires a day prefix", ErrMalformedTime, s)
		}
		idx := dayIndexOf(dayToken)
		if idx < 0 {
			return 0, fmt.Errorf("%w: %q: unknown day prefix %q", ErrMalformedTime, s, dayToken)
		}
		dayIndex = idx
	case topology == TopologyMonthly && dayToken != "":
		idx := monthDayIndexOf(dayToken)
		if idx < 0 {
			return 0, fmt.Errorf("%w: %q: monthly day prefix must be d01..d31", ErrMalformedTime, s)
		}
		dayIndex = idx
	case dayToken != "":
		return 0, fmt.Errorf("%w: %q: day prefix not allowed for %s timeline", ErrMalformedTime, s, topology)
	}

	hour, _ := strconv.Atoi(hourStr)
	minute, _ := strconv.Atoi(minStr)
	sec := 0
	if secStr != "" {
		sec, _ = strconv.Atoi(secStr)
	}
	millis := 0
	if msStr != "" {
		// Right-pad to three digits so ".5" means 500ms.
		millis, _ = strconv.Atoi(msStr + strings.Repeat("0", 3-len(msStr)))
	}

	if meridiem != "" {
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: %q: 12-hour clock hour out of range", ErrMalformedTime, s)
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	} else if hour > 23 {
		return 0, fmt.Errorf("%w: %q: hour out of range", ErrMalformedTime, s)
	}
	if minute > 59 || sec > 59 {
		return 0, fmt.Errorf("%w: %q: minute or second out of range", ErrMalformedTime, s)
	}

	offset := float64(dayIndex)*DaySeconds +
		float64(hour)*3600 + float64(minute)*60 + float64(sec) + float64(millis)/1000
	return offset, nil
}

// FromOffset renders an absolute offset back into the string form ToOffset
// accepts, with millisecond precision. Weekly offsets gain a sun..sat prefix,
// monthly offsets a d01..d31 one, so offsets past the first day round-trip.
func FromOffset(offset float64, topology Topology, clock Clock) string {
	dayIndex := 0
	if topology != TopologyDaily {
		dayIndex = int(math.Floor(offset / DaySeconds))
	}
	remainder := offset - float64(dayIndex)*DaySeconds

	// Round to whole milliseconds before splitting so the string round-trips.
	totalMillis := int64(math.Round(remainder * 1000))
	hour := int(totalMillis / 3600000)
	totalMillis -= int64(hour) * 3600000
	minute := int(totalMillis / 60000)
	totalMillis -= int64(minute) * 60000
	sec := int(totalMillis / 1000)
	millis := int(totalMillis % 1000)

	var b strings.Builder
	switch topology {
	case TopologyWeekly:
		b.WriteString(dayNames[dayIndex%7])
		b.WriteByte(' ')
	case TopologyMonthly:
		fmt.Fprintf(&b, "d%02d ", dayIndex+1)
	}

	switch clock {
	case Clock24:
		fmt.Fprintf(&b, "%02d:%02d:%02d.%03d", hour, minute, sec, millis)
	default:
		meridiem := "am"
		if hour >= 12 {
			meridiem = "pm"
		}
		display := hour % 12
		if display == 0 {
			display = 12
		}
		fmt.Fprintf(&b, "%d:%02d:%02d.%03d %s", display, minute, sec, millis, meridiem)
	}
	return b.String()
}

// DetectClock inspects existing time strings and returns the convention they
// use. Defaults to the 12-hour clock when nothing decides.
func DetectClock(times []string) Clock {
	for _, s := range times {
		lower := strings.ToLower(strings.TrimSpace(s))
		if lower == "" {
			continue
		}
		if strings.HasSuffix(lower, "am") || strings.HasSuffix(lower, "pm") {
			return Clock12
		}
		return Clock24
	}
	return Clock12
}

// AddFrameGuard advances an offset by one video frame so that a following
// boundary comparison can never see exact float equality.
func AddFrameGuard(offset, frameRate float64) float64 {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return offset + 1/frameRate
}

// SameOffset reports whether two offsets are equal within tolerance.
func SameOffset(a, b float64) bool {
	return math.Abs(a-b) <= OffsetTolerance
}

// TopologySeconds returns the total span for a topology. Monthly timelines
// depend on the month length, supplied as daysInMonth; it is ignored for the
// other topologies.
func TopologySeconds(topology Topology, daysInMonth int) (float64, error) {
	switch topology {
	case TopologyDaily:
		return DaySeconds, nil
	case TopologyWeekly:
		return 7 * DaySeconds, nil
	case TopologyMonthly:
		if daysInMonth < 28 || daysInMonth > 31 {
			return 0, fmt.Errorf("invalid month length %d", daysInMonth)
		}
		return float64(daysInMonth) * DaySeconds, nil
	default:
		return 0, fmt.Errorf("unknown topology %q", topology)
	}
}

// MonthDays returns the day count for a calendar month.
func MonthDays(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dayIndexOf(token string) int {
	token = strings.ToLower(token)
	for i, name := range dayNames {
		if name == token {
			return i
		}
	}
	return -1
}

// monthDayIndexOf parses a d01..d31 token into a zero-based day index.
func monthDayIndexOf(token string) int {
	token = strings.ToLower(token)
	if len(token) < 2 || token[0] != 'd' {
		return -1
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil || n < 1 || n > 31 {
		return -1
	}
	return n - 1
}
