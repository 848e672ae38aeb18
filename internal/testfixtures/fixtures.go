package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/classtrack/internal/application"
)

var (
	instructorCounter uint64
	patternCounter    uint64
	classCounter      uint64
	sessionCounter    uint64
)

var referenceTime = time.Date(2025, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ------------------------- Instructor fixtures ---------------------------

// InstructorOption configures the generated instructor fixture.
type InstructorOption func(*application.Instructor)

// NewInstructorFixture returns a deterministic instructor with optional overrides.
func NewInstructorFixture(opts ...InstructorOption) application.Instructor {
	idx := atomic.AddUint64(&instructorCounter, 1)
	id := fmt.Sprintf("instructor-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := application.Instructor{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		DisplayName: fmt.Sprintf("Instructor %03d", idx),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithInstructorID overrides the generated instructor identifier.
func WithInstructorID(id string) InstructorOption {
	return func(i *application.Instructor) { i.ID = id }
}

// WithInstructorEmail overrides the generated email address.
func WithInstructorEmail(email string) InstructorOption {
	return func(i *application.Instructor) { i.Email = email }
}

// --------------------------- Pattern fixtures ----------------------------

// PatternOption configures the generated recurrence pattern fixture.
type PatternOption func(*application.RecurrencePattern)

// NewPatternFixture returns a deterministic daily pattern with optional overrides.
func NewPatternFixture(opts ...PatternOption) application.RecurrencePattern {
	idx := atomic.AddUint64(&patternCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := application.RecurrencePattern{
		ID:            fmt.Sprintf("pattern-%03d", idx),
		Type:          application.PatternTypeDaily,
		IntervalValue: 1,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPatternType sets the pattern type.
func WithPatternType(patternType string) PatternOption {
	return func(p *application.RecurrencePattern) { p.Type = patternType }
}

// WithPatternInterval sets the repeat interval.
func WithPatternInterval(interval int) PatternOption {
	return func(p *application.RecurrencePattern) { p.IntervalValue = interval }
}

// WithPatternWeekdays sets the comma separated weekday names.
func WithPatternWeekdays(days string) PatternOption {
	return func(p *application.RecurrencePattern) { p.DaysOfWeek = days }
}

// WithPatternDayOfMonth sets the target day of month.
func WithPatternDayOfMonth(day int) PatternOption {
	return func(p *application.RecurrencePattern) { p.DayOfMonth = day }
}

// WithPatternOccurrenceCount caps the number of generated occurrences.
func WithPatternOccurrenceCount(count int) PatternOption {
	return func(p *application.RecurrencePattern) { p.OccurrenceCount = count }
}

// WithPatternEndsOn sets the pattern end date.
func WithPatternEndsOn(endsOn time.Time) PatternOption {
	return func(p *application.RecurrencePattern) { p.EndsOn = &endsOn }
}

// ---------------------------- Class fixtures -----------------------------

// ClassOption configures the generated class definition fixture.
type ClassOption func(*application.ClassDefinition)

// NewClassFixture returns a deterministic active class with optional overrides.
func NewClassFixture(opts ...ClassOption) application.ClassDefinition {
	idx := atomic.AddUint64(&classCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := application.ClassDefinition{
		ID:           fmt.Sprintf("class-%03d", idx),
		Title:        fmt.Sprintf("Class %03d", idx),
		InstructorID: fmt.Sprintf("instructor-%03d", idx),
		StartTime:    "09:00",
		EndTime:      "10:30",
		Capacity:     20,
		Active:       true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithClassID overrides the generated class identifier.
func WithClassID(id string) ClassOption {
	return func(c *application.ClassDefinition) { c.ID = id }
}

// WithClassInstructor sets the owning instructor.
func WithClassInstructor(instructorID string) ClassOption {
	return func(c *application.ClassDefinition) { c.InstructorID = instructorID }
}

// WithClassTimes sets the daily start and end times.
func WithClassTimes(start, end string) ClassOption {
	return func(c *application.ClassDefinition) {
		c.StartTime = start
		c.EndTime = end
	}
}

// WithClassActive toggles the active flag.
func WithClassActive(active bool) ClassOption {
	return func(c *application.ClassDefinition) { c.Active = active }
}

// WithClassPattern attaches a recurrence pattern reference.
func WithClassPattern(patternID string) ClassOption {
	return func(c *application.ClassDefinition) { c.RecurrencePatternID = &patternID }
}

// --------------------------- Session fixtures ----------------------------

// SessionOption configures the generated session fixture.
type SessionOption func(*application.ScheduledSession)

// NewSessionFixture returns a deterministic scheduled session with optional overrides.
func NewSessionFixture(opts ...SessionOption) application.ScheduledSession {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	start := referenceTime.AddDate(0, 0, int(idx))
	fixture := application.ScheduledSession{
		ID:           fmt.Sprintf("session-%03d", idx),
		ClassID:      fmt.Sprintf("class-%03d", idx),
		InstructorID: fmt.Sprintf("instructor-%03d", idx),
		Start:        start,
		End:          start.Add(90 * time.Minute),
		Timezone:     "UTC",
		Status:       application.SessionStatusScheduled,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionClass sets the owning class.
func WithSessionClass(classID string) SessionOption {
	return func(s *application.ScheduledSession) { s.ClassID = classID }
}

// WithSessionInstructor sets the session's instructor.
func WithSessionInstructor(instructorID string) SessionOption {
	return func(s *application.ScheduledSession) { s.InstructorID = instructorID }
}

// WithSessionWindow sets the session's start and end instants.
func WithSessionWindow(start, end time.Time) SessionOption {
	return func(s *application.ScheduledSession) {
		s.Start = start
		s.End = end
	}
}

// WithSessionStatus sets the session status.
func WithSessionStatus(status string) SessionOption {
	return func(s *application.ScheduledSession) { s.Status = status }
}
