package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/classtrack/internal/recurrence"
)

// validateClassForScheduling checks the preconditions a class definition
// must satisfy before any dates are calculated. It has no side effects.
func validateClassForScheduling(class ClassDefinition) *ValidationError {
	vErr := &ValidationError{}

	if class.ID == "" {
		vErr.add("class", "class definition is required")
		return vErr
	}
	if strings.TrimSpace(class.InstructorID) == "" {
		vErr.add("instructor_id", "instructor is required")
	}

	start, startErr := parseTimeOfDay(class.StartTime)
	if startErr != nil {
		vErr.add("start_time", "start time must be in HH:MM form")
	}
	end, endErr := parseTimeOfDay(class.EndTime)
	if endErr != nil {
		vErr.add("end_time", "end time must be in HH:MM form")
	}
	if startErr == nil && endErr == nil && !start.before(end) {
		vErr.add("time", "start time must be before end time")
	}

	if !class.Active {
		vErr.add("active", "class is not active")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// validatePattern checks the stored form of a recurrence pattern. Weekday
// tokens are only checked for presence here; unknown names are dropped with
// a warning at calculation time instead of failing validation.
func validatePattern(pattern RecurrencePattern) *ValidationError {
	vErr := &ValidationError{}

	if pattern.Type == "" {
		vErr.add("type", "recurrence type is required")
		return vErr
	}

	switch pattern.Type {
	case PatternTypeDaily:
	case PatternTypeWeekly:
		if strings.TrimSpace(pattern.DaysOfWeek) == "" {
			vErr.add("days_of_week", "weekly patterns require at least one weekday")
		}
	case PatternTypeMonthly:
		if pattern.DayOfMonth < 1 || pattern.DayOfMonth > 31 {
			vErr.add("day_of_month", "day of month must be between 1 and 31")
		}
	default:
		vErr.add("type", fmt.Sprintf("unknown recurrence type %q", pattern.Type))
	}

	// Stored patterns always carry an explicit interval; omitted values
	// default to 1 before the pattern is persisted.
	if pattern.IntervalValue <= 0 {
		vErr.add("interval_value", "interval must be a positive integer")
	}
	if pattern.OccurrenceCount < 0 {
		vErr.add("occurrence_count", "occurrence count must be a positive integer")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// compilePattern translates the stored pattern into the calculator's closed
// rule type. It assumes validatePattern has passed. Unknown weekday tokens
// are returned for the caller to log.
func compilePattern(pattern RecurrencePattern) (recurrence.Pattern, []string, error) {
	interval := pattern.IntervalValue
	if interval < 1 {
		interval = 1
	}

	compiled := recurrence.Pattern{
		Count:  pattern.OccurrenceCount,
		EndsOn: pattern.EndsOn,
	}

	var dropped []string
	switch pattern.Type {
	case PatternTypeDaily:
		compiled.Rule = recurrence.Daily{Interval: interval}
	case PatternTypeWeekly:
		days, bad := recurrence.ParseWeekdays(pattern.DaysOfWeek)
		dropped = bad
		compiled.Rule = recurrence.Weekly{Interval: interval, Weekdays: days}
	case PatternTypeMonthly:
		compiled.Rule = recurrence.Monthly{Interval: interval, DayOfMonth: pattern.DayOfMonth}
	default:
		return recurrence.Pattern{}, nil, fmt.Errorf("unknown recurrence type %q", pattern.Type)
	}

	return compiled, dropped, nil
}

// timeOfDay is a parsed "HH:MM" value.
type timeOfDay struct {
	hour   int
	minute int
}

func (t timeOfDay) before(other timeOfDay) bool {
	if t.hour != other.hour {
		return t.hour < other.hour
	}
	return t.minute < other.minute
}

// at anchors the time of day on the given calendar date.
func (t timeOfDay) at(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.hour, t.minute, 0, 0, loc)
}

func parseTimeOfDay(value string) (timeOfDay, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return timeOfDay{}, fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return timeOfDay{hour: parsed.Hour(), minute: parsed.Minute()}, nil
}
