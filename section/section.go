// Package section assigns tasks to age-based sections and orders them
// for display.
package section

import (
	"cmp"
	"time"

	"github.com/finlite/taskfocus/internal/models"
	"github.com/finlite/taskfocus/internal/timeutil"
)

// Order lists sections in display order.
var Order = []models.Section{
	models.SectionToday,
	models.SectionThisWeek,
	models.SectionThisMonth,
}

// Classify returns the section a task belongs to at the given moment.
// A manual override wins over the age-based rules; otherwise tasks
// created today land in "today", tasks created earlier in the current
// Monday-anchored week land in "this week", and everything older folds
// into "this month".
func Classify(t models.Task, now time.Time) models.Section {
	if t.SectionOverride != "" {
		return t.SectionOverride
	}

	if timeutil.SameDay(t.CreatedAt, now) {
		return models.SectionToday
	}

	if !t.CreatedAt.Before(timeutil.StartOfWeek(now)) {
		return models.SectionThisWeek
	}

	return models.SectionThisMonth
}

// CompareDisplay orders two tasks for display: incomplete before
// completed, then position ascending, then creation time newest-first.
// Callers sort with a stable sort so records that compare equal keep
// their stored order.
func CompareDisplay(a, b models.Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}

		return -1
	}

	if n := cmp.Compare(a.Position, b.Position); n != 0 {
		return n
	}

	return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
}

// Title returns the section's display heading.
func Title(s models.Section) string {
	switch s {
	case models.SectionToday:
		return "Today"
	case models.SectionThisWeek:
		return "This Week"
	case models.SectionThisMonth:
		return "This Month"
	default:
		return string(s)
	}
}
