package service

import (
	"fmt"
	"time"
)

// Calendar answers whether scheduled escalation runs are currently eligible.
// Implementations wrap an external business-hours source.
type Calendar interface {
	WithinOperatingHours(now time.Time) (bool, error)
}

// WindowCalendar is a daily operating window in local time, configured as
// "HH:MM" boundaries. "00:00".."24:00" means always eligible.
type WindowCalendar struct {
	start string
	end   string
}

// NewWindowCalendar builds the calendar from config strings.
func NewWindowCalendar(start, end string) *WindowCalendar {
	return &WindowCalendar{start: start, end: end}
}

// WithinOperatingHours reports whether now falls inside the window. Malformed
// boundaries surface as an error; callers treat that as eligible (fail open).
func (c *WindowCalendar) WithinOperatingHours(now time.Time) (bool, error) {
	startMin, err := parseClock(c.start)
	if err != nil {
		return false, err
	}
	endMin, err := parseClock(c.end)
	if err != nil {
		return false, err
	}
	minute := now.Hour()*60 + now.Minute()
	if startMin <= endMin {
		return minute >= startMin && minute < endMin, nil
	}
	// Window crosses midnight.
	return minute >= startMin || minute < endMin, nil
}

func parseClock(value string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	return hour*60 + minute, nil
}
