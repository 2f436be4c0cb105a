package sla

import (
	"time"

	"github.com/pulsedesk/pulsedesk/internal/domain"
)

// maxDaySearch bounds the forward search for the next working day. Any
// non-empty working-day set repeats within a week.
const maxDaySearch = 7

// Calendar answers office-hours questions for a single validated
// OfficeHoursConfig. All calendar arithmetic happens in the configured
// location; instants are converted to local wall-clock form only at the point
// of comparison and back to absolute instants immediately after.
type Calendar struct {
	startSec int // seconds since local midnight, inclusive
	endSec   int // seconds since local midnight, exclusive
	days     map[time.Weekday]bool
	loc      *time.Location
}

// NewCalendar validates the config and builds a calendar. Configuration
// errors (empty working days, inverted window, unknown timezone) are fatal
// and surface here, before any computation runs.
func NewCalendar(cfg domain.OfficeHoursConfig) (*Calendar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	startSec, _ := domain.ParseTimeOfDay(cfg.Start)
	endSec, _ := domain.ParseTimeOfDay(cfg.End)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, domain.ErrUnknownTimezone
	}

	days := make(map[time.Weekday]bool, len(cfg.WorkingDays))
	for _, d := range cfg.WorkingDays {
		days[isoToWeekday(d)] = true
	}

	return &Calendar{
		startSec: startSec,
		endSec:   endSec,
		days:     days,
		loc:      loc,
	}, nil
}

// Location returns the calendar's timezone
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// IsWithinOfficeHours reports whether the instant falls inside the office
// window: a working weekday with local time-of-day in [start, end).
func (c *Calendar) IsWithinOfficeHours(t time.Time) bool {
	local := t.In(c.loc)
	if !c.days[local.Weekday()] {
		return false
	}
	sec := secondsOfDay(local)
	return sec >= c.startSec && sec < c.endSec
}

// NextBusinessHourStart returns the earliest office-hours instant at or after
// t. It is idempotent on in-hours input. On a working day before opening it
// returns that day's opening instant; otherwise it searches forward day by
// day for the next working day's opening.
func (c *Calendar) NextBusinessHourStart(t time.Time) time.Time {
	if c.IsWithinOfficeHours(t) {
		return t
	}

	local := t.In(c.loc)
	if c.days[local.Weekday()] && secondsOfDay(local) < c.startSec {
		return c.openingAt(local)
	}

	for i := 1; i <= maxDaySearch; i++ {
		day := time.Date(local.Year(), local.Month(), local.Day()+i, 0, 0, 0, 0, c.loc)
		if c.days[day.Weekday()] {
			return c.openingAt(day)
		}
	}

	// Unreachable for a validated calendar: a non-empty working-day set is
	// always hit within seven days.
	return t
}

// openingAt returns the absolute instant of the office opening on the local
// calendar date of day. Building the instant from wall-clock components keeps
// "09:00 local" correct across DST transitions.
func (c *Calendar) openingAt(day time.Time) time.Time {
	hh := c.startSec / 3600
	mm := (c.startSec % 3600) / 60
	ss := c.startSec % 60
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, ss, 0, c.loc)
}

// closingAt returns the absolute instant of the office closing on the local
// calendar date of day.
func (c *Calendar) closingAt(day time.Time) time.Time {
	hh := c.endSec / 3600
	mm := (c.endSec % 3600) / 60
	ss := c.endSec % 60
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, ss, 0, c.loc)
}

func secondsOfDay(local time.Time) int {
	return local.Hour()*3600 + local.Minute()*60 + local.Second()
}

// isoToWeekday maps ISO weekday numbers (1=Monday..7=Sunday) to time.Weekday
func isoToWeekday(iso int) time.Weekday {
	if iso == 7 {
		return time.Sunday
	}
	return time.Weekday(iso)
}
