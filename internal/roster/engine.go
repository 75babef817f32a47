// Package roster expands weekly schedule templates into concrete shift slots.
// It is a pure computation package: callers assign identities and timestamps
// to the expanded slots before persisting them.
package roster

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Item is one recurring slot inside a template. DayOffset is 0..6 relative to
// the Sunday week start; StartTime and EndTime are "HH:MM" strings where a
// missing or unparsable component defaults to zero.
type Item struct {
	Title     string
	DayOffset int
	StartTime string
	EndTime   string
}

// Template is a reusable weekly pattern of shift items.
type Template struct {
	ID    string
	Name  string
	Items []Item
}

// Slot is an expanded occurrence of a template item for one employee.
type Slot struct {
	EmployeeID string
	Title      string
	Start      time.Time
	End        time.Time
}

// ErrNoEmployees indicates expansion was requested for an empty employee set.
var ErrNoEmployees = errors.New("roster: at least one employee is required")

// ErrEmptyTemplate indicates the template carries no items.
var ErrEmptyTemplate = errors.New("roster: template has no items")

// AlignToWeekStart normalizes t to the Sunday 00:00 of its containing week,
// preserving t's location. The operation is idempotent.
func AlignToWeekStart(t time.Time) time.Time {
	day := int(t.Weekday())
	return time.Date(t.Year(), t.Month(), t.Day()-day, 0, 0, 0, 0, t.Location())
}

// WeekWindow returns the half-open [weekStart, weekStart+7d) interval
// containing t's week membership test.
func WeekWindow(weekStart time.Time) (time.Time, time.Time) {
	return weekStart, weekStart.AddDate(0, 0, 7)
}

// InWeek reports whether t falls within the half-open week window starting at
// weekStart. Callers are expected to pass an aligned week start.
func InWeek(t, weekStart time.Time) bool {
	start, end := WeekWindow(weekStart)
	return !t.Before(start) && t.Before(end)
}

// Expand produces one slot per employee per template item, in employee then
// declaration order. weekStart is aligned to its Sunday before expansion, so
// any date within the target week may be supplied.
func Expand(template Template, weekStart time.Time, employeeIDs []string) ([]Slot, error) {
	if len(employeeIDs) == 0 {
		return nil, ErrNoEmployees
	}
	if len(template.Items) == 0 {
		return nil, ErrEmptyTemplate
	}

	aligned := AlignToWeekStart(weekStart)

	slots := make([]Slot, 0, len(employeeIDs)*len(template.Items))
	for _, employeeID := range employeeIDs {
		for _, item := range template.Items {
			slots = append(slots, Slot{
				EmployeeID: employeeID,
				Title:      item.Title,
				Start:      atDayTime(aligned, item.DayOffset, item.StartTime),
				End:        atDayTime(aligned, item.DayOffset, item.EndTime),
			})
		}
	}

	return slots, nil
}

// atDayTime overlays an "HH:MM" wall-clock time onto weekStart+dayOffset days.
func atDayTime(weekStart time.Time, dayOffset int, hhmm string) time.Time {
	hour, minute := parseHHMM(hhmm)
	return time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day()+dayOffset, hour, minute, 0, 0, weekStart.Location())
}

func parseHHMM(value string) (int, int) {
	parts := strings.SplitN(value, ":", 2)

	hour := 0
	if len(parts) > 0 {
		if parsed, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			hour = parsed
		}
	}

	minute := 0
	if len(parts) > 1 {
		if parsed, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			minute = parsed
		}
	}

	return hour, minute
}
