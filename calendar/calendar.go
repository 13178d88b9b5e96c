package calendar

import (
	"fmt"
	"strings"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// NONE treats every day as a business day.
	NONE CalendarID = "NONE"
	// WEEKEND excludes Saturdays and Sundays only.
	WEEKEND CalendarID = "WEEKEND"
	TARGET  CalendarID = "TARGET"
	USD     CalendarID = "USD"
	UK      CalendarID = "UK"
)

// Parse maps a calendar name to a CalendarID. An empty name is NONE.
func Parse(s string) (CalendarID, error) {
	switch id := CalendarID(strings.ToUpper(strings.TrimSpace(s))); id {
	case "":
		return NONE, nil
	case NONE, WEEKEND, TARGET, USD, UK:
		return id, nil
	default:
		return "", fmt.Errorf("calendar.Parse: unknown calendar %q", s)
	}
}

func isHoliday(cal CalendarID, t time.Time) bool {
	switch cal {
	case TARGET:
		return isTargetHoliday(t)
	case USD:
		return isUSDHoliday(t)
	case UK:
		return isUKHoliday(t)
	default:
		return false
	}
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NONE || cal == "" {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}
