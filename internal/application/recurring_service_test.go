package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/classtrack/internal/persistence"
)

type stubClassRepo struct {
	getClass func(ctx context.Context, id string) (ClassDefinition, error)
}

func (s *stubClassRepo) CreateClass(ctx context.Context, class ClassDefinition) (ClassDefinition, error) {
	return class, nil
}

func (s *stubClassRepo) GetClass(ctx context.Context, id string) (ClassDefinition, error) {
	if s.getClass == nil {
		return ClassDefinition{}, persistence.ErrNotFound
	}
	return s.getClass(ctx, id)
}

func (s *stubClassRepo) UpdateClass(ctx context.Context, class ClassDefinition) (ClassDefinition, error) {
	return class, nil
}

func (s *stubClassRepo) DeleteClass(ctx context.Context, id string) error { return nil }

func (s *stubClassRepo) ListClasses(ctx context.Context) ([]ClassDefinition, error) {
	return nil, nil
}

type stubPatternRepo struct {
	getPattern func(ctx context.Context, id string) (RecurrencePattern, error)
}

func (s *stubPatternRepo) CreatePattern(ctx context.Context, pattern RecurrencePattern) (RecurrencePattern, error) {
	return pattern, nil
}

func (s *stubPatternRepo) GetPattern(ctx context.Context, id string) (RecurrencePattern, error) {
	if s.getPattern == nil {
		return RecurrencePattern{}, persistence.ErrNotFound
	}
	return s.getPattern(ctx, id)
}

func (s *stubPatternRepo) UpdatePattern(ctx context.Context, pattern RecurrencePattern) (RecurrencePattern, error) {
	return pattern, nil
}

func (s *stubPatternRepo) DeletePattern(ctx context.Context, id string) error { return nil }

func (s *stubPatternRepo) ListPatterns(ctx context.Context) ([]RecurrencePattern, error) {
	return nil, nil
}

type stubTimetable struct {
	hasConflict   func(ctx context.Context, instructorID string, candidate SessionRequest) (bool, error)
	schedule      func(ctx context.Context, candidate SessionRequest) (ScheduledSession, error)
	forInstructor func(ctx context.Context, instructorID string, from, to time.Time) ([]ScheduledSession, error)
	forClass      func(ctx context.Context, classID string, from, to time.Time) ([]ScheduledSession, error)
	cancel        func(ctx context.Context, sessionID, reason string) error
}

func (s *stubTimetable) HasInstructorConflict(ctx context.Context, instructorID string, candidate SessionRequest) (bool, error) {
	if s.hasConflict == nil {
		return false, nil
	}
	return s.hasConflict(ctx, instructorID, candidate)
}

func (s *stubTimetable) ScheduleClass(ctx context.Context, candidate SessionRequest) (ScheduledSession, error) {
	if s.schedule == nil {
		return ScheduledSession{
			ClassID:      candidate.ClassID,
			InstructorID: candidate.InstructorID,
			Start:        candidate.Start,
			End:          candidate.End,
			Timezone:     candidate.Timezone,
			Status:       SessionStatusScheduled,
		}, nil
	}
	return s.schedule(ctx, candidate)
}

func (s *stubTimetable) GetScheduleForInstructor(ctx context.Context, instructorID string, from, to time.Time) ([]ScheduledSession, error) {
	if s.forInstructor == nil {
		return nil, nil
	}
	return s.forInstructor(ctx, instructorID, from, to)
}

func (s *stubTimetable) SessionsForClass(ctx context.Context, classID string, from, to time.Time) ([]ScheduledSession, error) {
	if s.forClass == nil {
		return nil, nil
	}
	return s.forClass(ctx, classID, from, to)
}

func (s *stubTimetable) CancelScheduledInstance(ctx context.Context, sessionID, reason string) error {
	if s.cancel == nil {
		return nil
	}
	return s.cancel(ctx, sessionID, reason)
}

func fixedNow() time.Time {
	return time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
}

func dailyClass() ClassDefinition {
	patternID := "pattern-1"
	return ClassDefinition{
		ID:                  "class-1",
		Title:               "Morning Yoga",
		InstructorID:        "instructor-1",
		StartTime:           "09:00",
		EndTime:             "10:30",
		Capacity:            20,
		Active:              true,
		RecurrencePatternID: &patternID,
	}
}

func TestGenerateScheduledInstances(t *testing.T) {
	ctx := context.Background()

	t.Run("materializes every occurrence and skips conflicts", func(t *testing.T) {
		conflictDate := time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC)
		timetable := &stubTimetable{
			hasConflict: func(_ context.Context, _ string, candidate SessionRequest) (bool, error) {
				return candidate.Start.Year() == conflictDate.Year() &&
					candidate.Start.YearDay() == conflictDate.YearDay(), nil
			},
		}

		service := NewRecurringScheduleService(&stubClassRepo{}, &stubPatternRepo{}, timetable, NewDefaults(), fixedNow, nil)

		result, err := service.GenerateScheduledInstances(ctx, dailyClass(),
			RecurrencePattern{ID: "pattern-1", Type: PatternTypeDaily, IntervalValue: 1},
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		)
		if err != nil {
			t.Fatalf("GenerateScheduledInstances returned error: %v", err)
		}

		if len(result.Created) != 4 {
			t.Fatalf("expected 4 created sessions, got %d", len(result.Created))
		}
		if len(result.Skipped) != 1 {
			t.Fatalf("expected 1 skipped occurrence, got %d", len(result.Skipped))
		}
		if result.Skipped[0].Reason != "instructor conflict" {
			t.Fatalf("unexpected skip reason: %q", result.Skipped[0].Reason)
		}
		if !result.Skipped[0].Date.Equal(conflictDate) {
			t.Fatalf("expected skip on %v, got %v", conflictDate, result.Skipped[0].Date)
		}

		first := result.Created[0]
		wantStart := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2025, time.January, 1, 10, 30, 0, 0, time.UTC)
		if !first.Start.Equal(wantStart) || !first.End.Equal(wantEnd) {
			t.Fatalf("unexpected first session window: %v - %v", first.Start, first.End)
		}
	})

	t.Run("a failed creation is recorded and the batch continues", func(t *testing.T) {
		failures := 0
		timetable := &stubTimetable{
			schedule: func(_ context.Context, candidate SessionRequest) (ScheduledSession, error) {
				if candidate.Start.Day() == 2 {
					failures++
					return ScheduledSession{}, fmt.Errorf("storage unavailable")
				}
				return ScheduledSession{ClassID: candidate.ClassID, Start: candidate.Start, End: candidate.End, Status: SessionStatusScheduled}, nil
			},
		}

		service := NewRecurringScheduleService(&stubClassRepo{}, &stubPatternRepo{}, timetable, NewDefaults(), fixedNow, nil)

		result, err := service.GenerateScheduledInstances(ctx, dailyClass(),
			RecurrencePattern{ID: "pattern-1", Type: PatternTypeDaily, IntervalValue: 1},
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC),
		)
		if err != nil {
			t.Fatalf("GenerateScheduledInstances returned error: %v", err)
		}
		if failures != 1 {
			t.Fatalf("expected exactly one creation failure, got %d", failures)
		}
		if len(result.Created) != 2 || len(result.Skipped) != 1 {
			t.Fatalf("expected 2 created and 1 skipped, got %d/%d", len(result.Created), len(result.Skipped))
		}
	})

	t.Run("honors the configured generation horizon when unbounded", func(t *testing.T) {
		defaults := NewDefaults()
		defaults.GenerationHorizonYears = 2

		service := NewRecurringScheduleService(&stubClassRepo{}, &stubPatternRepo{}, &stubTimetable{}, defaults, fixedNow, nil)

		result, err := service.GenerateScheduledInstances(ctx, dailyClass(),
			RecurrencePattern{ID: "pattern-1", Type: PatternTypeMonthly, IntervalValue: 1, DayOfMonth: 1},
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Time{},
		)
		if err != nil {
			t.Fatalf("GenerateScheduledInstances returned error: %v", err)
		}

		if len(result.Created) != 25 {
			t.Fatalf("expected 25 monthly sessions over two years, got %d", len(result.Created))
		}
		last := result.Created[len(result.Created)-1]
		if want := time.Date(2027, time.January, 1, 9, 0, 0, 0, time.UTC); !last.Start.Equal(want) {
			t.Fatalf("expected final session at %v, got %v", want, last.Start)
		}
	})

	t.Run("rejects invalid classes before calculating dates", func(t *testing.T) {
		service := NewRecurringScheduleService(&stubClassRepo{}, &stubPatternRepo{}, &stubTimetable{}, NewDefaults(), fixedNow, nil)

		class := dailyClass()
		class.Active = false
		_, err := service.GenerateScheduledInstances(ctx, class,
			RecurrencePattern{ID: "pattern-1", Type: PatternTypeDaily, IntervalValue: 1},
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects invalid patterns before calculating dates", func(t *testing.T) {
		service := NewRecurringScheduleService(&stubClassRepo{}, &stubPatternRepo{}, &stubTimetable{}, NewDefaults(), fixedNow, nil)

		_, err := service.GenerateScheduledInstances(ctx, dailyClass(),
			RecurrencePattern{ID: "pattern-1", Type: PatternTypeDaily, IntervalValue: 0},
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestScheduleRecurringClass(t *testing.T) {
	ctx := context.Background()

	t.Run("loads the class and its pattern", func(t *testing.T) {
		classes := &stubClassRepo{getClass: func(_ context.Context, id string) (ClassDefinition, error) {
			if id != "class-1" {
				return ClassDefinition{}, persistence.ErrNotFound
			}
			return dailyClass(), nil
		}}
		patterns := &stubPatternRepo{getPattern: func(_ context.Context, id string) (RecurrencePattern, error) {
			if id != "pattern-1" {
				return RecurrencePattern{}, persistence.ErrNotFound
			}
			return RecurrencePattern{ID: id, Type: PatternTypeDaily, IntervalValue: 1}, nil
		}}

		service := NewRecurringScheduleService(classes, patterns, &stubTimetable{}, NewDefaults(), fixedNow, nil)

		result, err := service.ScheduleRecurringClass(ctx, "class-1",
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC),
		)
		if err != nil {
			t.Fatalf("ScheduleRecurringClass returned error: %v", err)
		}
		if len(result.Created) != 3 {
			t.Fatalf("expected 3 created sessions, got %d", len(result.Created))
		}
	})

	t.Run("maps a missing class to ErrNotFound", func(t *testing.T) {
		service := NewRecurringScheduleService(&stubClassRepo{}, &stubPatternRepo{}, &stubTimetable{}, NewDefaults(), fixedNow, nil)

		_, err := service.ScheduleRecurringClass(ctx, "missing", fixedNow(), time.Time{})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("fails when the class has no pattern attached", func(t *testing.T) {
		classes := &stubClassRepo{getClass: func(_ context.Context, id string) (ClassDefinition, error) {
			class := dailyClass()
			class.RecurrencePatternID = nil
			return class, nil
		}}
		service := NewRecurringScheduleService(classes, &stubPatternRepo{}, &stubTimetable{}, NewDefaults(), fixedNow, nil)

		_, err := service.ScheduleRecurringClass(ctx, "class-1", fixedNow(), time.Time{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["recurrence_pattern_id"] == "" {
			t.Fatalf("expected recurrence_pattern_id validation error, got %v", err)
		}
	})
}

func TestUpdateRecurringSchedule(t *testing.T) {
	ctx := context.Background()

	endsOn := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	classes := &stubClassRepo{getClass: func(_ context.Context, id string) (ClassDefinition, error) {
		return dailyClass(), nil
	}}
	patterns := &stubPatternRepo{getPattern: func(_ context.Context, id string) (RecurrencePattern, error) {
		return RecurrencePattern{ID: id, Type: PatternTypeDaily, IntervalValue: 1, EndsOn: &endsOn}, nil
	}}

	var cancelledIDs []string
	var cancelReasons []string
	timetable := &stubTimetable{
		forClass: func(_ context.Context, classID string, from, to time.Time) ([]ScheduledSession, error) {
			return []ScheduledSession{
				{ID: "session-1", ClassID: classID, Status: SessionStatusScheduled},
				{ID: "session-2", ClassID: classID, Status: SessionStatusScheduled},
				{ID: "session-3", ClassID: classID, Status: SessionStatusCancelled},
			}, nil
		},
		cancel: func(_ context.Context, sessionID, reason string) error {
			cancelledIDs = append(cancelledIDs, sessionID)
			cancelReasons = append(cancelReasons, reason)
			return nil
		},
	}

	service := NewRecurringScheduleService(classes, patterns, timetable, NewDefaults(), fixedNow, nil)

	report, err := service.UpdateRecurringSchedule(ctx, "class-1")
	if err != nil {
		t.Fatalf("UpdateRecurringSchedule returned error: %v", err)
	}

	if report.Cancelled != 2 {
		t.Fatalf("expected 2 cancelled sessions, got %d", report.Cancelled)
	}
	if len(cancelledIDs) != 2 || cancelledIDs[0] != "session-1" || cancelledIDs[1] != "session-2" {
		t.Fatalf("unexpected cancelled sessions: %v", cancelledIDs)
	}
	for _, reason := range cancelReasons {
		if reason != regeneratedReason {
			t.Fatalf("unexpected cancellation reason: %q", reason)
		}
	}

	// Regeneration starts tomorrow (2025-01-02) and the pattern ends on
	// 2025-01-05, so four sessions come back.
	if len(report.Generation.Created) != 4 {
		t.Fatalf("expected 4 regenerated sessions, got %d", len(report.Generation.Created))
	}
	firstStart := report.Generation.Created[0].Start
	want := time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC)
	if !firstStart.Equal(want) {
		t.Fatalf("expected first regenerated session at %v, got %v", want, firstStart)
	}
}

func TestCancelRecurringSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a class id and a reason", func(t *testing.T) {
		service := NewRecurringScheduleService(&stubClassRepo{}, &stubPatternRepo{}, &stubTimetable{}, NewDefaults(), fixedNow, nil)

		_, err := service.CancelRecurringSchedule(ctx, "", "   ")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if vErr.FieldErrors["class_id"] == "" || vErr.FieldErrors["reason"] == "" {
			t.Fatalf("expected class_id and reason errors, got %v", vErr.FieldErrors)
		}
	})

	t.Run("cancels only this class's scheduled sessions", func(t *testing.T) {
		classes := &stubClassRepo{getClass: func(_ context.Context, id string) (ClassDefinition, error) {
			return dailyClass(), nil
		}}

		var cancelled []string
		timetable := &stubTimetable{
			forInstructor: func(_ context.Context, instructorID string, from, to time.Time) ([]ScheduledSession, error) {
				return []ScheduledSession{
					{ID: "session-1", ClassID: "class-1", Status: SessionStatusScheduled},
					{ID: "session-2", ClassID: "other-class", Status: SessionStatusScheduled},
					{ID: "session-3", ClassID: "class-1", Status: SessionStatusCancelled},
					{ID: "session-4", ClassID: "class-1", Status: SessionStatusScheduled},
				}, nil
			},
			cancel: func(_ context.Context, sessionID, reason string) error {
				if reason != "instructor retired" {
					t.Fatalf("unexpected reason: %q", reason)
				}
				cancelled = append(cancelled, sessionID)
				return nil
			},
		}

		service := NewRecurringScheduleService(classes, &stubPatternRepo{}, timetable, NewDefaults(), fixedNow, nil)

		count, err := service.CancelRecurringSchedule(ctx, "class-1", "instructor retired")
		if err != nil {
			t.Fatalf("CancelRecurringSchedule returned error: %v", err)
		}
		if count != 2 {
			t.Fatalf("expected 2 cancellations, got %d", count)
		}
		if len(cancelled) != 2 || cancelled[0] != "session-1" || cancelled[1] != "session-4" {
			t.Fatalf("unexpected cancelled sessions: %v", cancelled)
		}
	})

	t.Run("a failed cancellation does not abort the sweep", func(t *testing.T) {
		classes := &stubClassRepo{getClass: func(_ context.Context, id string) (ClassDefinition, error) {
			return dailyClass(), nil
		}}
		timetable := &stubTimetable{
			forInstructor: func(_ context.Context, instructorID string, from, to time.Time) ([]ScheduledSession, error) {
				return []ScheduledSession{
					{ID: "session-1", ClassID: "class-1", Status: SessionStatusScheduled},
					{ID: "session-2", ClassID: "class-1", Status: SessionStatusScheduled},
				}, nil
			},
			cancel: func(_ context.Context, sessionID, reason string) error {
				if sessionID == "session-1" {
					return fmt.Errorf("storage unavailable")
				}
				return nil
			},
		}

		service := NewRecurringScheduleService(classes, &stubPatternRepo{}, timetable, NewDefaults(), fixedNow, nil)

		count, err := service.CancelRecurringSchedule(ctx, "class-1", "maintenance")
		if err != nil {
			t.Fatalf("CancelRecurringSchedule returned error: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 cancellation, got %d", count)
		}
	})
}
