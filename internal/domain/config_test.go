package domain

import (
	"testing"
)

func validOfficeHours() OfficeHoursConfig {
	return OfficeHoursConfig{
		Start:       "09:00",
		End:         "17:00",
		WorkingDays: []int{1, 2, 3, 4, 5},
		Timezone:    "America/New_York",
	}
}

func TestOfficeHoursConfig_Validate(t *testing.T) {
	if err := validOfficeHours().Validate(); err != nil {
		t.Errorf("Unexpected error for valid config: %v", err)
	}
}

func TestOfficeHoursConfig_ValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OfficeHoursConfig)
		want   error
	}{
		{"no working days", func(c *OfficeHoursConfig) { c.WorkingDays = []int{} }, ErrEmptyWorkingDays},
		{"inverted window", func(c *OfficeHoursConfig) { c.Start, c.End = "17:00", "09:00" }, ErrInvalidOfficeWindow},
		{"bad start format", func(c *OfficeHoursConfig) { c.Start = "nine" }, ErrInvalidTimeOfDay},
		{"bad end format", func(c *OfficeHoursConfig) { c.End = "17h00" }, ErrInvalidTimeOfDay},
		{"weekday zero", func(c *OfficeHoursConfig) { c.WorkingDays = []int{0} }, ErrInvalidWeekday},
		{"weekday eight", func(c *OfficeHoursConfig) { c.WorkingDays = []int{8} }, ErrInvalidWeekday},
		{"bad timezone", func(c *OfficeHoursConfig) { c.Timezone = "Not/AZone" }, ErrUnknownTimezone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validOfficeHours()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 9 * 3600, false},
		{"17:30", 17*3600 + 30*60, false},
		{"23:59", 23*3600 + 59*60, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9:00", 0, true},
		{"0900", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
