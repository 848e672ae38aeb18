package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/classtrack/internal/application"
)

type fakeClassService struct {
	created application.ClassInput
	class   application.ClassDefinition
	err     error
}

func (f *fakeClassService) CreateClass(ctx context.Context, input application.ClassInput) (application.ClassDefinition, error) {
	f.created = input
	return f.class, f.err
}

func (f *fakeClassService) GetClass(ctx context.Context, id string) (application.ClassDefinition, error) {
	return f.class, f.err
}

func (f *fakeClassService) UpdateClass(ctx context.Context, id string, input application.ClassInput) (application.ClassDefinition, error) {
	return f.class, f.err
}

func (f *fakeClassService) DeleteClass(ctx context.Context, id string) error { return f.err }

func (f *fakeClassService) ListClasses(ctx context.Context) ([]application.ClassDefinition, error) {
	return []application.ClassDefinition{f.class}, f.err
}

type fakeScheduleService struct {
	result      application.GenerationResult
	report      application.RegenerationReport
	cancelled   int
	lastClassID string
	lastReason  string
	err         error
}

func (f *fakeScheduleService) ScheduleRecurringClass(ctx context.Context, classID string, windowStart, windowEnd time.Time) (application.GenerationResult, error) {
	f.lastClassID = classID
	return f.result, f.err
}

func (f *fakeScheduleService) UpdateRecurringSchedule(ctx context.Context, classID string) (application.RegenerationReport, error) {
	f.lastClassID = classID
	return f.report, f.err
}

func (f *fakeScheduleService) CancelRecurringSchedule(ctx context.Context, classID, reason string) (int, error) {
	f.lastClassID = classID
	f.lastReason = reason
	return f.cancelled, f.err
}

type fakeSessionDirectory struct {
	sessions      []application.ScheduledSession
	lastQuery     application.SessionQuery
	lastCancelled string
	lastReason    string
	err           error
}

func (f *fakeSessionDirectory) ListSessions(ctx context.Context, query application.SessionQuery) ([]application.ScheduledSession, error) {
	f.lastQuery = query
	return f.sessions, f.err
}

func (f *fakeSessionDirectory) GetSession(ctx context.Context, sessionID string) (application.ScheduledSession, error) {
	if len(f.sessions) == 0 {
		return application.ScheduledSession{}, application.ErrNotFound
	}
	return f.sessions[0], f.err
}

func (f *fakeSessionDirectory) CancelScheduledInstance(ctx context.Context, sessionID, reason string) error {
	f.lastCancelled = sessionID
	f.lastReason = reason
	return f.err
}

func sampleClass() application.ClassDefinition {
	return application.ClassDefinition{
		ID:           "class-1",
		Title:        "Morning Yoga",
		InstructorID: "instructor-1",
		StartTime:    "09:00",
		EndTime:      "10:30",
		Capacity:     20,
		Active:       true,
		CreatedAt:    time.Date(2025, time.January, 2, 15, 4, 5, 0, time.UTC),
		UpdatedAt:    time.Date(2025, time.January, 2, 15, 4, 5, 0, time.UTC),
	}
}

func newTestRouter(classes *fakeClassService, schedules *fakeScheduleService, sessions *fakeSessionDirectory) http.Handler {
	cfg := RouterConfig{}
	if classes != nil {
		cfg.Classes = NewClassHandler(classes, nil)
	}
	if schedules != nil {
		cfg.Schedules = NewScheduleHandler(schedules, nil, nil)
	}
	if sessions != nil {
		cfg.Sessions = NewSessionHandler(sessions, nil)
	}
	return NewRouter(cfg)
}

func TestClassHandler_Create(t *testing.T) {
	t.Run("creates a class from a valid payload", func(t *testing.T) {
		service := &fakeClassService{class: sampleClass()}
		router := newTestRouter(service, nil, nil)

		body := `{"title":"Morning Yoga","instructor_id":"instructor-1","start_time":"09:00","end_time":"10:30","capacity":20,"active":true}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/classes", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Morning Yoga", service.created.Title)

		var dto classDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, "class-1", dto.ID)
		assert.Equal(t, "09:00", dto.StartTime)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		router := newTestRouter(&fakeClassService{}, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/classes", strings.NewReader("{not json")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects payloads missing required fields", func(t *testing.T) {
		router := newTestRouter(&fakeClassService{}, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/classes", strings.NewReader(`{"title":"x"}`)))

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "instructor_id")
		assert.Contains(t, resp.Errors, "start_time")
	})

	t.Run("maps service not-found to 404", func(t *testing.T) {
		router := newTestRouter(&fakeClassService{err: application.ErrNotFound}, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/classes/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects unsupported methods", func(t *testing.T) {
		router := newTestRouter(&fakeClassService{}, nil, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/classes", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestScheduleHandler(t *testing.T) {
	t.Run("generates a schedule", func(t *testing.T) {
		start := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
		service := &fakeScheduleService{result: application.GenerationResult{
			Created: []application.ScheduledSession{{
				ID: "session-1", ClassID: "class-1", InstructorID: "instructor-1",
				Start: start, End: start.Add(90 * time.Minute),
				Timezone: "UTC", Status: application.SessionStatusScheduled,
			}},
			Skipped: []application.SkippedOccurrence{{
				Date:   time.Date(2025, time.January, 7, 0, 0, 0, 0, time.UTC),
				Reason: "instructor conflict",
			}},
		}}
		router := newTestRouter(nil, service, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/classes/class-1/schedule", strings.NewReader(`{}`)))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "class-1", service.lastClassID)

		var dto generationDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		require.Len(t, dto.Created, 1)
		require.Len(t, dto.Skipped, 1)
		assert.Equal(t, "2025-01-07", dto.Skipped[0].Date)
		assert.Equal(t, "instructor conflict", dto.Skipped[0].Reason)
	})

	t.Run("accepts an empty body for generation", func(t *testing.T) {
		service := &fakeScheduleService{}
		router := newTestRouter(nil, service, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/classes/class-1/schedule", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("regenerates a schedule", func(t *testing.T) {
		service := &fakeScheduleService{report: application.RegenerationReport{Cancelled: 3}}
		router := newTestRouter(nil, service, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/classes/class-1/schedule", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var dto regenerationDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, 3, dto.Cancelled)
	})

	t.Run("cancellation requires a reason", func(t *testing.T) {
		router := newTestRouter(nil, &fakeScheduleService{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/classes/class-1/schedule", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("cancels with a reason", func(t *testing.T) {
		service := &fakeScheduleService{cancelled: 5}
		router := newTestRouter(nil, service, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/classes/class-1/schedule", strings.NewReader(`{"reason":"instructor retired"}`)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "instructor retired", service.lastReason)

		var resp cancelResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Cancelled)
	})
}

func TestSessionHandler_List(t *testing.T) {
	directory := &fakeSessionDirectory{sessions: []application.ScheduledSession{{
		ID: "session-1", ClassID: "class-1", InstructorID: "instructor-1",
		Start:    time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2025, time.January, 6, 10, 30, 0, 0, time.UTC),
		Timezone: "UTC", Status: application.SessionStatusScheduled,
	}}}
	router := newTestRouter(nil, nil, directory)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions?class_id=class-1&status=scheduled&from=2025-01-01T00:00:00Z", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "class-1", directory.lastQuery.ClassID)
	assert.Equal(t, "scheduled", directory.lastQuery.Status)
	require.NotNil(t, directory.lastQuery.From)

	var resp listSessionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "session-1", resp.Sessions[0].ID)
}

func TestSessionHandler_Cancel(t *testing.T) {
	t.Run("cancels a single session", func(t *testing.T) {
		directory := &fakeSessionDirectory{}
		router := newTestRouter(nil, nil, directory)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/session-1", strings.NewReader(`{"reason":"room flooded"}`)))

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "session-1", directory.lastCancelled)
		assert.Equal(t, "room flooded", directory.lastReason)
	})

	t.Run("requires a reason", func(t *testing.T) {
		directory := &fakeSessionDirectory{}
		router := newTestRouter(nil, nil, directory)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/session-1", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Empty(t, directory.lastCancelled)
	})

	t.Run("maps a missing session to 404", func(t *testing.T) {
		directory := &fakeSessionDirectory{err: application.ErrNotFound}
		router := newTestRouter(nil, nil, directory)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/missing", strings.NewReader(`{"reason":"cleanup"}`)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
