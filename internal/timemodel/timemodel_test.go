/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package timemodel

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestToOffsetDaily(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"midnight", "00:00:00", 0},
		{"24h afternoon", "17:00:00", 61200},
		{"24h with millis", "06:30:15.250", 23415.25},
		{"12h am", "5:30:00 am", 19800},
		{"12h pm", "5:00:00 pm", 61200},
		{"12 am is midnight", "12:00:00 am", 0},
		{"12 pm is noon", "12:00:00 pm", 43200},
		{"no seconds", "9:45 pm", 78300},
		{"short millis pad right", "00:00:00.5", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToOffset(tt.input, TopologyDaily)
			if err != nil {
				t.Fatalf("ToOffset(%q) error: %v", tt.input, err)
			}
			if math.Abs(got-tt.expected) > OffsetTolerance {
				t.Errorf("ToOffset(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToOffsetWeekly(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"sunday start", "sun 00:00:00", 0},
		{"wednesday meeting", "wed 10:00:00 am", 3*86400 + 36000},
		{"saturday night", "sat 11:59:59 pm", 6*86400 + 86399},
		{"mixed case day", "Fri 1:00:00 pm", 5*86400 + 46800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToOffset(tt.input, TopologyWeekly)
			if err != nil {
				t.Fatalf("ToOffset(%q) error: %v", tt.input, err)
			}
			if math.Abs(got-tt.expected) > OffsetTolerance {
				t.Errorf("ToOffset(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToOffsetMonthly(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"no prefix is day one", "10:00:00", 36000},
		{"first day explicit", "d01 00:00:00", 0},
		{"second day", "d02 03:46:40", 100000},
		{"mid month 12h", "d15 5:00:00 pm", 14*86400 + 61200},
		{"single digit token", "d5 06:00:00", 4*86400 + 21600},
		{"last day", "d31 11:59:59 pm", 30*86400 + 86399},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToOffset(tt.input, TopologyMonthly)
			if err != nil {
				t.Fatalf("ToOffset(%q) error: %v", tt.input, err)
			}
			if math.Abs(got-tt.expected) > OffsetTolerance {
				t.Errorf("ToOffset(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToOffsetMalformed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		topology Topology
	}{
		{"empty", "", TopologyDaily},
		{"garbage", "not a time", TopologyDaily},
		{"weekly without day", "10:00:00", TopologyWeekly},
		{"bad day prefix", "xyz 10:00:00", TopologyWeekly},
		{"day prefix on daily", "wed 10:00:00", TopologyDaily},
		{"month prefix on daily", "d05 10:00:00", TopologyDaily},
		{"month prefix on weekly", "d05 10:00:00", TopologyWeekly},
		{"weekday prefix on monthly", "wed 10:00:00", TopologyMonthly},
		{"month day zero", "d00 10:00:00", TopologyMonthly},
		{"month day out of range", "d32 10:00:00", TopologyMonthly},
		{"hour out of range 24h", "25:00:00", TopologyDaily},
		{"hour out of range 12h", "13:00:00 pm", TopologyDaily},
		{"minute out of range", "10:60:00", TopologyDaily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToOffset(tt.input, tt.topology)
			if !errors.Is(err, ErrMalformedTime) {
				t.Errorf("ToOffset(%q) error = %v, want ErrMalformedTime", tt.input, err)
			}
		})
	}
}

func TestFromOffset(t *testing.T) {
	tests := []struct {
		name     string
		offset   float64
		topology Topology
		clock    Clock
		expected string
	}{
		{"daily 24h", 61200, TopologyDaily, Clock24, "17:00:00.000"},
		{"daily 12h pm", 61200, TopologyDaily, Clock12, "5:00:00.000 pm"},
		{"daily 12h midnight", 0, TopologyDaily, Clock12, "12:00:00.000 am"},
		{"daily millis", 23415.25, TopologyDaily, Clock24, "06:30:15.250"},
		{"weekly wednesday", 3*86400 + 36000, TopologyWeekly, Clock12, "wed 10:00:00.000 am"},
		{"weekly 24h", 6*86400 + 86399, TopologyWeekly, Clock24, "sat 23:59:59.000"},
		{"monthly day two", 100000, TopologyMonthly, Clock24, "d02 03:46:40.000"},
		{"monthly first day", 36000, TopologyMonthly, Clock12, "d01 10:00:00.000 am"},
		{"monthly last day", 30*86400 + 61200, TopologyMonthly, Clock24, "d31 17:00:00.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromOffset(tt.offset, tt.topology, tt.clock)
			if got != tt.expected {
				t.Errorf("FromOffset(%v) = %q, want %q", tt.offset, got, tt.expected)
			}
		})
	}
}

func TestRoundTripStable(t *testing.T) {
	// toOffset(fromOffset(x)) == x within 1ms across the span.
	offsets := []float64{0, 0.033, 1, 59.999, 3600.5, 43200, 61200.033, 86399.967}

	for _, topology := range []Topology{TopologyDaily, TopologyWeekly, TopologyMonthly} {
		for _, clock := range []Clock{Clock12, Clock24} {
			for _, x := range offsets {
				if topology == TopologyDaily && x >= DaySeconds {
					continue
				}
				s := FromOffset(x, topology, clock)
				back, err := ToOffset(s, topology)
				if err != nil {
					t.Fatalf("round trip parse %q: %v", s, err)
				}
				if math.Abs(back-x) > OffsetTolerance {
					t.Errorf("round trip %v via %q = %v, drift %v", x, s, back, back-x)
				}
			}
		}
	}

	// Offsets in later day buckets must keep their day across the trip.
	for day := 0; day < 7; day++ {
		x := float64(day)*DaySeconds + 36000.5
		s := FromOffset(x, TopologyWeekly, Clock12)
		back, err := ToOffset(s, TopologyWeekly)
		if err != nil {
			t.Fatalf("round trip parse %q: %v", s, err)
		}
		if math.Abs(back-x) > OffsetTolerance {
			t.Errorf("weekly round trip %v via %q = %v", x, s, back)
		}
	}
	for day := 0; day < 31; day++ {
		x := float64(day)*DaySeconds + 36000.5
		s := FromOffset(x, TopologyMonthly, Clock24)
		back, err := ToOffset(s, TopologyMonthly)
		if err != nil {
			t.Fatalf("round trip parse %q: %v", s, err)
		}
		if math.Abs(back-x) > OffsetTolerance {
			t.Errorf("monthly round trip %v via %q = %v", x, s, back)
		}
	}
}

func TestDetectClock(t *testing.T) {
	tests := []struct {
		name     string
		times    []string
		expected Clock
	}{
		{"empty defaults to 12h", nil, Clock12},
		{"blank strings skipped", []string{"", "  ", "5:00:00 pm"}, Clock12},
		{"24h detected", []string{"17:00:00"}, Clock24},
		{"first non-empty wins", []string{"17:00:00", "5:00:00 pm"}, Clock24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectClock(tt.times); got != tt.expected {
				t.Errorf("DetectClock(%v) = %v, want %v", tt.times, got, tt.expected)
			}
		})
	}
}

func TestAddFrameGuard(t *testing.T) {
	got := AddFrameGuard(63000, DefaultFrameRate)
	if math.Abs(got-63000.033) > 0.001 {
		t.Errorf("AddFrameGuard(63000) = %v, want ~63000.033", got)
	}

	// Zero rate falls back to the default.
	if AddFrameGuard(0, 0) != AddFrameGuard(0, DefaultFrameRate) {
		t.Error("zero frame rate should use the default")
	}
}

func TestTopologySeconds(t *testing.T) {
	tests := []struct {
		name        string
		topology    Topology
		daysInMonth int
		expected    float64
		wantErr     bool
	}{
		{"daily", TopologyDaily, 0, 86400, false},
		{"weekly", TopologyWeekly, 0, 7 * 86400, false},
		{"monthly 30", TopologyMonthly, 30, 30 * 86400, false},
		{"monthly 31", TopologyMonthly, 31, 31 * 86400, false},
		{"monthly bad length", TopologyMonthly, 5, 0, true},
		{"unknown", Topology("hourly"), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TopologySeconds(tt.topology, tt.daysInMonth)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TopologySeconds() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("TopologySeconds() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMonthDays(t *testing.T) {
	if got := MonthDays(2026, time.February); got != 28 {
		t.Errorf("MonthDays(2026, Feb) = %d, want 28", got)
	}
	if got := MonthDays(2028, time.February); got != 29 {
		t.Errorf("MonthDays(2028, Feb) = %d, want 29", got)
	}
	if got := MonthDays(2026, time.August); got != 31 {
		t.Errorf("MonthDays(2026, Aug) = %d, want 31", got)
	}
}
