package persistence

import (
	"context"
	"time"
)

// InstructorRepository exposes CRUD operations for instructors.
type InstructorRepository interface {
	CreateInstructor(ctx context.Context, instructor Instructor) error
	GetInstructor(ctx context.Context, id string) (Instructor, error)
	ListInstructors(ctx context.Context) ([]Instructor, error)
	DeleteInstructor(ctx context.Context, id string) error
}

// ClassRepository exposes CRUD operations for class definitions.
type ClassRepository interface {
	CreateClass(ctx context.Context, class ClassDefinition) error
	UpdateClass(ctx context.Context, class ClassDefinition) error
	GetClass(ctx context.Context, id string) (ClassDefinition, error)
	ListClasses(ctx context.Context) ([]ClassDefinition, error)
	DeleteClass(ctx context.Context, id string) error
}

// PatternRepository stores recurrence patterns in their raw form.
type PatternRepository interface {
	CreatePattern(ctx context.Context, pattern RecurrencePattern) error
	UpdatePattern(ctx context.Context, pattern RecurrencePattern) error
	GetPattern(ctx context.Context, id string) (RecurrencePattern, error)
	ListPatterns(ctx context.Context) ([]RecurrencePattern, error)
	DeletePattern(ctx context.Context, id string) error
}

// SessionFilter narrows scheduled session queries.
type SessionFilter struct {
	ClassID       string
	InstructorID  string
	Status        string
	OverlapsFrom  *time.Time
	OverlapsUntil *time.Time
}

// SessionRepository stores materialized class sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session ScheduledSession) error
	GetSession(ctx context.Context, id string) (ScheduledSession, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]ScheduledSession, error)
	UpdateSessionStatus(ctx context.Context, id, status string, reason *string, updatedAt time.Time) error
}
