package models

import "time"

// WindowState classifies a moment against the registration window.
type WindowState string

const (
	WindowNotYetOpen WindowState = "NOT_YET_OPEN"
	WindowOpen       WindowState = "OPEN"
	WindowClosed     WindowState = "CLOSED"
)

// RegistrationWindow classifies now against the event's registration bounds.
// Bounds are inclusive; a zero bound means unbounded on that side. The check
// is advisory: it classifies, it never mutates.
func (e *Event) RegistrationWindow(now time.Time) WindowState {
	if !e.RegistrationStart.IsZero() && now.Before(e.RegistrationStart) {
		return WindowNotYetOpen
	}
	if !e.RegistrationEnd.IsZero() && now.After(e.RegistrationEnd) {
		return WindowClosed
	}
	return WindowOpen
}

const dayFormat = "2006-01-02"

// ParseDayStart parses a bare yyyy-mm-dd date as midnight UTC, the opening
// bound of that calendar day.
func ParseDayStart(s string) (time.Time, error) {
	return time.ParseInLocation(dayFormat, s, time.UTC)
}

// ParseDayEnd parses a bare yyyy-mm-dd date as 23:59:59.999 of that day, so a
// close date covers the whole day it names.
func ParseDayEnd(s string) (time.Time, error) {
	day, err := time.ParseInLocation(dayFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(24*time.Hour - time.Millisecond), nil
}

// FormatDay renders a time as its yyyy-mm-dd calendar day.
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dayFormat)
}
