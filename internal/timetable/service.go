package timetable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/classtrack/internal/application"
	"github.com/example/classtrack/internal/persistence"
)

// Service owns scheduled session records and answers conflict queries. It
// implements the application layer's Timetable interface.
//
// The conflict check and the subsequent create are two separate statements;
// a concurrent writer can slip between them. The unique index on
// (instructor_id, start_time) in the session store is the backstop that
// turns that race into a create error rather than a double booking.
type Service struct {
	sessions    persistence.SessionRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewService wires dependencies for timetable operations.
func NewService(sessions persistence.SessionRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Service {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:    sessions,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// HasInstructorConflict reports whether the candidate request overlaps any
// of the instructor's still-scheduled sessions.
func (s *Service) HasInstructorConflict(ctx context.Context, instructorID string, candidate application.SessionRequest) (bool, error) {
	start := candidate.Start
	end := candidate.End
	existing, err := s.sessions.ListSessions(ctx, persistence.SessionFilter{
		InstructorID:  instructorID,
		Status:        persistence.SessionStatusScheduled,
		OverlapsFrom:  &start,
		OverlapsUntil: &end,
	})
	if err != nil {
		return false, fmt.Errorf("list instructor sessions: %w", err)
	}

	bookings := make([]Booking, 0, len(existing))
	for _, session := range existing {
		bookings = append(bookings, Booking{
			SessionID:    session.ID,
			ClassID:      session.ClassID,
			InstructorID: session.InstructorID,
			Start:        session.Start,
			End:          session.End,
		})
	}

	conflict := FirstConflict(bookings, Booking{
		InstructorID: instructorID,
		Start:        candidate.Start,
		End:          candidate.End,
	})
	return conflict != nil, nil
}

// ScheduleClass materializes the candidate request as a scheduled session.
func (s *Service) ScheduleClass(ctx context.Context, candidate application.SessionRequest) (application.ScheduledSession, error) {
	now := s.now()
	session := persistence.ScheduledSession{
		ID:           s.idGenerator(),
		ClassID:      candidate.ClassID,
		InstructorID: candidate.InstructorID,
		Start:        candidate.Start,
		End:          candidate.End,
		Timezone:     candidate.Timezone,
		Status:       persistence.SessionStatusScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return application.ScheduledSession{}, fmt.Errorf("create session: %w", err)
	}
	return toApplicationSession(session), nil
}

// GetScheduleForInstructor returns the instructor's sessions intersecting
// [from, to], regardless of status.
func (s *Service) GetScheduleForInstructor(ctx context.Context, instructorID string, from, to time.Time) ([]application.ScheduledSession, error) {
	sessions, err := s.sessions.ListSessions(ctx, persistence.SessionFilter{
		InstructorID:  instructorID,
		OverlapsFrom:  &from,
		OverlapsUntil: &to,
	})
	if err != nil {
		return nil, fmt.Errorf("list instructor sessions: %w", err)
	}
	return toApplicationSessions(sessions), nil
}

// SessionsForClass returns the class's sessions intersecting [from, to],
// regardless of status.
func (s *Service) SessionsForClass(ctx context.Context, classID string, from, to time.Time) ([]application.ScheduledSession, error) {
	sessions, err := s.sessions.ListSessions(ctx, persistence.SessionFilter{
		ClassID:       classID,
		OverlapsFrom:  &from,
		OverlapsUntil: &to,
	})
	if err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	return toApplicationSessions(sessions), nil
}

// ListSessions is the read surface for the timetable: sessions matching the
// query, ordered by start time.
func (s *Service) ListSessions(ctx context.Context, query application.SessionQuery) ([]application.ScheduledSession, error) {
	sessions, err := s.sessions.ListSessions(ctx, persistence.SessionFilter{
		ClassID:       query.ClassID,
		InstructorID:  query.InstructorID,
		Status:        query.Status,
		OverlapsFrom:  query.From,
		OverlapsUntil: query.To,
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return toApplicationSessions(sessions), nil
}

// GetSession returns a single session by ID.
func (s *Service) GetSession(ctx context.Context, sessionID string) (application.ScheduledSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return application.ScheduledSession{}, application.ErrNotFound
		}
		return application.ScheduledSession{}, fmt.Errorf("load session: %w", err)
	}
	return toApplicationSession(session), nil
}

// CancelScheduledInstance marks the session cancelled with the given
// reason. Cancelling an already cancelled session is a no-op.
func (s *Service) CancelScheduledInstance(ctx context.Context, sessionID, reason string) error {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return application.ErrNotFound
		}
		return fmt.Errorf("load session: %w", err)
	}
	if session.Status == persistence.SessionStatusCancelled {
		return nil
	}

	if err := s.sessions.UpdateSessionStatus(ctx, sessionID, persistence.SessionStatusCancelled, &reason, s.now()); err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}
	return nil
}

func toApplicationSessions(models []persistence.ScheduledSession) []application.ScheduledSession {
	if len(models) == 0 {
		return nil
	}
	sessions := make([]application.ScheduledSession, 0, len(models))
	for _, model := range models {
		sessions = append(sessions, toApplicationSession(model))
	}
	return sessions
}

func toApplicationSession(model persistence.ScheduledSession) application.ScheduledSession {
	var reason *string
	if model.CancelReason != nil {
		clone := *model.CancelReason
		reason = &clone
	}
	return application.ScheduledSession{
		ID:           model.ID,
		ClassID:      model.ClassID,
		InstructorID: model.InstructorID,
		Start:        model.Start,
		End:          model.End,
		Timezone:     model.Timezone,
		Status:       model.Status,
		CancelReason: reason,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
