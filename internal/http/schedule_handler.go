package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/classtrack/internal/application"
)

type recurringScheduleService interface {
	ScheduleRecurringClass(ctx context.Context, classID string, windowStart, windowEnd time.Time) (application.GenerationResult, error)
	UpdateRecurringSchedule(ctx context.Context, classID string) (application.RegenerationReport, error)
	CancelRecurringSchedule(ctx context.Context, classID, reason string) (int, error)
}

type ScheduleHandler struct {
	service   recurringScheduleService
	responder responder
	now       func() time.Time
}

func NewScheduleHandler(service recurringScheduleService, now func() time.Time, logger *slog.Logger) *ScheduleHandler {
	if now == nil {
		now = time.Now
	}
	return &ScheduleHandler{service: service, responder: newResponder(logger), now: now}
}

// Generate materializes the class's recurring schedule. The optional body
// narrows the generation window; with no body the window opens at the
// current time and the pattern decides where it closes.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	windowStart := h.now()
	if ts := parseTimestamp(req.WindowStart); ts != nil {
		windowStart = *ts
	}
	var windowEnd time.Time
	if ts := parseTimestamp(req.WindowEnd); ts != nil {
		windowEnd = *ts
	}

	result, err := h.service.ScheduleRecurringClass(r.Context(), classID, windowStart, windowEnd)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toGenerationDTO(result))
}

// Regenerate replaces the class's future sessions with a fresh expansion of
// its current pattern.
func (h *ScheduleHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	report, err := h.service.UpdateRecurringSchedule(r.Context(), classID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, regenerationDTO{
		Cancelled:  report.Cancelled,
		Generation: toGenerationDTO(report.Generation),
	})
}

// Cancel cancels the class's still scheduled sessions with the caller's reason.
func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if vErr := validateRequest(req); vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	cancelled, err := h.service.CancelRecurringSchedule(r.Context(), classID, strings.TrimSpace(req.Reason))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, cancelResponse{Cancelled: cancelled})
}

type generateRequest struct {
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type cancelResponse struct {
	Cancelled int `json:"cancelled"`
}

type skippedOccurrenceDTO struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type generationDTO struct {
	Created []sessionDTO           `json:"created"`
	Skipped []skippedOccurrenceDTO `json:"skipped,omitempty"`
}

type regenerationDTO struct {
	Cancelled  int           `json:"cancelled"`
	Generation generationDTO `json:"generation"`
}

func toGenerationDTO(result application.GenerationResult) generationDTO {
	dto := generationDTO{Created: toSessionDTOs(result.Created)}
	for _, skipped := range result.Skipped {
		dto.Skipped = append(dto.Skipped, skippedOccurrenceDTO{
			Date:   skipped.Date.Format(time.DateOnly),
			Reason: skipped.Reason,
		})
	}
	return dto
}
