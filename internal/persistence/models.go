package persistence

import "time"

// Instructor represents a teaching staff record. Only the minimum needed
// for existence checks and conflict queries is stored here.
type Instructor struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClassDefinition represents a recurring class template.
type ClassDefinition struct {
	ID                  string
	Title               string
	InstructorID        string
	StartTime           string // time of day, "HH:MM"
	EndTime             string // time of day, "HH:MM"
	Capacity            int
	Active              bool
	RecurrencePatternID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RecurrencePattern represents a stored recurrence rule in its raw form.
// DaysOfWeek keeps the caller supplied comma separated weekday names;
// tokens are only interpreted when the pattern is compiled for expansion.
type RecurrencePattern struct {
	ID              string
	Type            string // "daily", "weekly" or "monthly"
	IntervalValue   int
	DaysOfWeek      string
	DayOfMonth      int
	OccurrenceCount int
	EndsOn          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Session statuses as stored.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCancelled = "cancelled"
)

// ScheduledSession represents one materialized class occurrence.
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
