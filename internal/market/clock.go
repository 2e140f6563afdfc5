// Package market answers whether the exchange is trading at a given instant.
package market

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock minute in the exchange's timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" in 24-hour form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Clock is a pure market-hours predicate over the half-open local window
// [open, close), Monday to Friday.
type Clock struct {
	open  TimeOfDay
	close TimeOfDay
	loc   *time.Location
}

// NewClock validates the window and returns a Clock.
func NewClock(open, close TimeOfDay, loc *time.Location) (*Clock, error) {
	if loc == nil {
		return nil, fmt.Errorf("market clock: nil location")
	}
	if open.minutes() >= close.minutes() {
		return nil, fmt.Errorf("market clock: open %s is not before close %s", open, close)
	}
	return &Clock{open: open, close: close, loc: loc}, nil
}

// IsOpen reports whether the market is trading at now. Seconds are ignored,
// so the opening minute counts as open and the closing minute as closed.
func (c *Clock) IsOpen(now time.Time) bool {
	local := now.In(c.loc)
	if isWeekend(local.Weekday()) {
		return false
	}
	m := local.Hour()*60 + local.Minute()
	return m >= c.open.minutes() && m < c.close.minutes()
}

// NextOpen returns now if the market is open, otherwise the start of the
// next trading window.
func (c *Clock) NextOpen(now time.Time) time.Time {
	if c.IsOpen(now) {
		return now
	}
	local := now.In(c.loc)
	for i := 0; i < 8; i++ {
		day := local.AddDate(0, 0, i)
		candidate := time.Date(day.Year(), day.Month(), day.Day(), c.open.Hour, c.open.Minute, 0, 0, c.loc)
		if isWeekend(candidate.Weekday()) || !candidate.After(local) {
			continue
		}
		return candidate
	}
	return time.Time{}
}

// Location returns the exchange timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Window returns the configured opening and closing minutes.
func (c *Clock) Window() (open, close TimeOfDay) {
	return c.open, c.close
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}
