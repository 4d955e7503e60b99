package service

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 1, hour, minute, 0, 0, time.Local)
}

func TestWindowCalendarDaytime(t *testing.T) {
	calendar := NewWindowCalendar("09:00", "17:00")

	cases := []struct {
		now  time.Time
		want bool
	}{
		{at(8, 59), false},
		{at(9, 0), true},
		{at(12, 30), true},
		{at(16, 59), true},
		{at(17, 0), false},
	}
	for _, tc := range cases {
		got, err := calendar.WithinOperatingHours(tc.now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Errorf("WithinOperatingHours(%v) = %v, want %v", tc.now.Format("15:04"), got, tc.want)
		}
	}
}

func TestWindowCalendarCrossesMidnight(t *testing.T) {
	calendar := NewWindowCalendar("22:00", "06:00")

	cases := []struct {
		now  time.Time
		want bool
	}{
		{at(23, 0), true},
		{at(2, 0), true},
		{at(6, 0), false},
		{at(12, 0), false},
	}
	for _, tc := range cases {
		got, err := calendar.WithinOperatingHours(tc.now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Errorf("WithinOperatingHours(%v) = %v, want %v", tc.now.Format("15:04"), got, tc.want)
		}
	}
}

func TestWindowCalendarAlwaysOpen(t *testing.T) {
	calendar := NewWindowCalendar("00:00", "24:00")
	for _, now := range []time.Time{at(0, 0), at(12, 0), at(23, 59)} {
		got, err := calendar.WithinOperatingHours(now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Errorf("WithinOperatingHours(%v) = false, want true", now.Format("15:04"))
		}
	}
}

func TestWindowCalendarMalformedBoundary(t *testing.T) {
	calendar := NewWindowCalendar("nope", "17:00")
	if _, err := calendar.WithinOperatingHours(at(12, 0)); err == nil {
		t.Error("expected error for malformed start boundary")
	}

	calendar = NewWindowCalendar("09:00", "25:00")
	if _, err := calendar.WithinOperatingHours(at(12, 0)); err == nil {
		t.Error("expected error for out-of-range boundary")
	}
}
