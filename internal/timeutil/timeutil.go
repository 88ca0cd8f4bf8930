// Package timeutil provides the clock abstraction and the day/window
// arithmetic shared by the booking and reminder flows.
package timeutil

import "time"

// Clock supplies the current time. Injecting it keeps reminder-window math
// testable.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return ClockFunc(time.Now)
}

// FixedClock returns a clock frozen at t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDay returns midnight of the day after t.
func NextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// MinuteOfDay returns the number of minutes elapsed since midnight of t's day.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ReminderTime returns the instant a reminder should fire for an appointment
// starting at start, given how many hours before the start the reminder is
// configured to go out.
func ReminderTime(start time.Time, hoursBefore int) time.Time {
	return start.Add(-time.Duration(hoursBefore) * time.Hour)
}

// HoursUntil returns the number of hours from now until t, as a float so
// sub-hour notice windows still compare correctly.
func HoursUntil(now, t time.Time) float64 {
	return t.Sub(now).Hours()
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
