package market

import (
	"testing"
	"time"
)

func newYorkClock(t *testing.T) *Clock {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	c, err := NewClock(TimeOfDay{9, 30}, TimeOfDay{16, 0}, loc)
	if err != nil {
		t.Fatalf("NewClock() error = %v", err)
	}
	return c
}

func TestClockIsOpen(t *testing.T) {
	c := newYorkClock(t)
	loc := c.Location()

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		// 2026-10-19 is a Monday.
		{name: "opening minute", at: time.Date(2026, 10, 19, 9, 30, 0, 0, loc), want: true},
		{name: "opening minute late second", at: time.Date(2026, 10, 19, 9, 30, 59, 0, loc), want: true},
		{name: "just before open", at: time.Date(2026, 10, 19, 9, 29, 59, 0, loc), want: false},
		{name: "midday", at: time.Date(2026, 10, 19, 12, 0, 0, 0, loc), want: true},
		{name: "last open minute", at: time.Date(2026, 10, 19, 15, 59, 59, 0, loc), want: true},
		{name: "closing minute", at: time.Date(2026, 10, 19, 16, 0, 0, 0, loc), want: false},
		{name: "evening", at: time.Date(2026, 10, 19, 20, 0, 0, 0, loc), want: false},
		{name: "friday midday", at: time.Date(2026, 10, 23, 12, 0, 0, 0, loc), want: true},
		{name: "saturday midday", at: time.Date(2026, 10, 24, 12, 0, 0, 0, loc), want: false},
		{name: "sunday opening minute", at: time.Date(2026, 10, 25, 9, 30, 0, 0, loc), want: false},
		{name: "utc instant converted", at: time.Date(2026, 10, 19, 13, 30, 0, 0, time.UTC), want: true},
		{name: "utc instant before open", at: time.Date(2026, 10, 19, 13, 29, 0, 0, time.UTC), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsOpen(tt.at); got != tt.want {
				t.Errorf("IsOpen(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestClockWeekendAllDay(t *testing.T) {
	c := newYorkClock(t)
	start := time.Date(2026, 10, 24, 0, 0, 0, 0, c.Location())
	for m := 0; m < 2*24*60; m += 7 {
		at := start.Add(time.Duration(m) * time.Minute)
		if c.IsOpen(at) {
			t.Fatalf("IsOpen(%v) = true on a weekend", at)
		}
	}
}

func TestClockNextOpen(t *testing.T) {
	c := newYorkClock(t)
	loc := c.Location()

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{name: "open now", at: time.Date(2026, 10, 19, 10, 0, 0, 0, loc), want: time.Date(2026, 10, 19, 10, 0, 0, 0, loc)},
		{name: "early morning", at: time.Date(2026, 10, 19, 7, 0, 0, 0, loc), want: time.Date(2026, 10, 19, 9, 30, 0, 0, loc)},
		{name: "after close", at: time.Date(2026, 10, 19, 17, 0, 0, 0, loc), want: time.Date(2026, 10, 20, 9, 30, 0, 0, loc)},
		{name: "friday after close", at: time.Date(2026, 10, 23, 16, 0, 0, 0, loc), want: time.Date(2026, 10, 26, 9, 30, 0, 0, loc)},
		{name: "saturday", at: time.Date(2026, 10, 24, 11, 0, 0, 0, loc), want: time.Date(2026, 10, 26, 9, 30, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.NextOpen(tt.at); !got.Equal(tt.want) {
				t.Errorf("NextOpen(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestNewClockRejectsInvertedWindow(t *testing.T) {
	if _, err := NewClock(TimeOfDay{16, 0}, TimeOfDay{9, 30}, time.UTC); err == nil {
		t.Error("NewClock() error = nil, want error for inverted window")
	}
	if _, err := NewClock(TimeOfDay{9, 30}, TimeOfDay{16, 0}, nil); err == nil {
		t.Error("NewClock() error = nil, want error for nil location")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("14:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay() error = %v", err)
	}
	if got != (TimeOfDay{14, 30}) {
		t.Errorf("ParseTimeOfDay() = %v, want 14:30", got)
	}
	if _, err := ParseTimeOfDay("2:30pm"); err == nil {
		t.Error("ParseTimeOfDay(\"2:30pm\") error = nil, want error")
	}
}
