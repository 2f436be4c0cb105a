package domain

import (
	"fmt"
	"time"
)

// OfficeHoursConfig describes a tenant's business-hours calendar: a daily
// window in "HH:MM" form, the set of working weekdays (1=Monday..7=Sunday)
// and the IANA timezone the window is anchored to.
type OfficeHoursConfig struct {
	Start       string `json:"start"` // inclusive, e.g. "09:00"
	End         string `json:"end"`   // exclusive, e.g. "17:00"
	WorkingDays []int  `json:"working_days"`
	Timezone    string `json:"timezone"`
}

// Configuration errors. These are fatal: the calendar must refuse to operate
// on a config that could make it loop or silently fall back to UTC.
var (
	ErrEmptyWorkingDays   = NewDomainError("office hours config has no working days")
	ErrInvalidOfficeWindow = NewDomainError("office hours start must be before end")
	ErrInvalidTimeOfDay   = NewDomainError("office hours times must be in HH:MM format")
	ErrInvalidWeekday     = NewDomainError("working days must be in range 1 (Monday) to 7 (Sunday)")
	ErrUnknownTimezone    = NewDomainError("unrecognized IANA timezone")
)

// Validate checks the config invariants: parseable HH:MM bounds with
// start < end, a non-empty set of valid weekdays, and a loadable timezone.
func (c OfficeHoursConfig) Validate() error {
	startSec, err := ParseTimeOfDay(c.Start)
	if err != nil {
		return err
	}
	endSec, err := ParseTimeOfDay(c.End)
	if err != nil {
		return err
	}
	if startSec >= endSec {
		return ErrInvalidOfficeWindow
	}
	if len(c.WorkingDays) == 0 {
		return ErrEmptyWorkingDays
	}
	for _, d := range c.WorkingDays {
		if d < 1 || d > 7 {
			return ErrInvalidWeekday
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return ErrUnknownTimezone
	}
	return nil
}

// ParseTimeOfDay parses an "HH:MM" string into seconds since local midnight
func ParseTimeOfDay(s string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &hh, &mm); err != nil {
		return 0, ErrInvalidTimeOfDay
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 || len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidTimeOfDay
	}
	return hh*3600 + mm*60, nil
}

// SLATargets holds the per-metric thresholds, in seconds, that a conversation
// must stay within to be compliant, plus the team-level compliance rate target
// consumed only by the aggregate reporter.
type SLATargets struct {
	PickupSeconds        int64   `json:"pickup_seconds"`
	FirstResponseSeconds int64   `json:"first_response_seconds"`
	AvgResponseSeconds   int64   `json:"avg_response_seconds"`
	ResolutionSeconds    int64   `json:"resolution_seconds"`
	ComplianceTargetPct  float64 `json:"compliance_target_pct"`
}

// EnabledMetrics selects which of the four metrics participate in the overall
// compliance verdict. A disabled metric is still computed and stored, but the
// aggregator never consults it.
type EnabledMetrics struct {
	Pickup        bool `json:"pickup"`
	FirstResponse bool `json:"first_response"`
	AvgResponse   bool `json:"avg_response"`
	Resolution    bool `json:"resolution"`
}
