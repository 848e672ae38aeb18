package application

import "time"

// Recurrence pattern types accepted in stored patterns.
const (
	PatternTypeDaily   = "daily"
	PatternTypeWeekly  = "weekly"
	PatternTypeMonthly = "monthly"
)

// Session statuses surfaced by the timetable collaborator.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCancelled = "cancelled"
)

// Defaults carries the operational constants the services depend on. They
// were inline literals in an earlier iteration; keeping them together makes
// the horizon and lookahead overridable from configuration.
type Defaults struct {
	Timezone               string
	Location               *time.Location
	GenerationHorizonYears int
	CancelLookaheadYears   int
	MaxParticipants        int
}

// NewDefaults returns the stock defaults: UTC, a one year generation
// horizon, a two year cancellation lookahead and 50 participants per class.
func NewDefaults() Defaults {
	return Defaults{
		Timezone:               "UTC",
		Location:               time.UTC,
		GenerationHorizonYears: 1,
		CancelLookaheadYears:   2,
		MaxParticipants:        50,
	}
}

// ClassDefinition represents a recurring class template as exposed by the
// application services. Start and end times are times of day in "HH:MM"
// form; a concrete date is attached only when sessions are materialized.
type ClassDefinition struct {
	ID                  string
	Title               string
	InstructorID        string
	StartTime           string
	EndTime             string
	Capacity            int
	Active              bool
	RecurrencePatternID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ClassInput captures caller provided class definition fields.
type ClassInput struct {
	Title               string
	InstructorID        string
	StartTime           string
	EndTime             string
	Capacity            int
	Active              bool
	RecurrencePatternID *string
}

// RecurrencePattern is the stored recurrence rule in its raw form. The
// DaysOfWeek field keeps the caller supplied comma separated names; invalid
// tokens are dropped with a warning when the pattern is compiled, never
// rejected here.
type RecurrencePattern struct {
	ID              string
	Type            string
	IntervalValue   int
	DaysOfWeek      string
	DayOfMonth      int
	OccurrenceCount int
	EndsOn          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PatternInput captures caller provided recurrence pattern fields.
type PatternInput struct {
	Type            string
	IntervalValue   int
	DaysOfWeek      string
	DayOfMonth      int
	OccurrenceCount int
	EndsOn          *time.Time
}

// Instructor represents a teaching staff record.
type Instructor struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InstructorInput captures caller provided instructor fields.
type InstructorInput struct {
	Email       string
	DisplayName string
}

// SessionRequest is a candidate session handed to the timetable
// collaborator for the conflict check and for creation.
type SessionRequest struct {
	ClassID      string
	InstructorID string
	Start        time.Time
	End          time.Time
	Timezone     string
}

// ScheduledSession is a materialized class occurrence owned by the
// timetable collaborator.
type ScheduledSession struct {
	ID           string
	ClassID      string
	InstructorID string
	Start        time.Time
	End          time.Time
	Timezone     string
	Status       string
	CancelReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionQuery narrows session listings on the read surface.
type SessionQuery struct {
	ClassID      string
	InstructorID string
	Status       string
	From         *time.Time
	To           *time.Time
}

// SkippedOccurrence records one calculated date that did not become a
// session, with the reason it was dropped.
type SkippedOccurrence struct {
	Date   time.Time
	Reason string
}

// GenerationResult is the outcome of one materialization pass: the sessions
// that were created and the occurrences that were skipped. A skip never
// aborts the batch.
type GenerationResult struct {
	Created []ScheduledSession
	Skipped []SkippedOccurrence
}

// RegenerationReport is the outcome of replacing a class's future sessions.
type RegenerationReport struct {
	Cancelled  int
	Generation GenerationResult
}
