// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"math"
	"time"
)

const daysInAWeek = 7

// Round rounds a time value in seconds, minutes, or hours to the nearest integer.
func Round(t float64) int {
	return int(math.Round(t))
}

// SecsToMinsAndSecs expresses a seconds value in minutes and seconds.
func SecsToMinsAndSecs(val float64) (mins, secs int) {
	total := Round(val)
	mins = total / 60
	secs = total % 60

	return
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return RoundToStart(a).Equal(RoundToStart(b.In(a.Location())))
}

// StartOfWeek returns the start of the Monday-anchored week containing t.
func StartOfWeek(t time.Time) time.Time {
	day := RoundToStart(t)

	diff := int(day.Weekday() - time.Monday)
	if diff < 0 {
		diff += daysInAWeek
	}

	return day.AddDate(0, 0, -diff)
}
