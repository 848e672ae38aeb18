package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/classtrack/internal/application"
)

type instructorService interface {
	CreateInstructor(ctx context.Context, input application.InstructorInput) (application.Instructor, error)
	GetInstructor(ctx context.Context, id string) (application.Instructor, error)
	ListInstructors(ctx context.Context) ([]application.Instructor, error)
	DeleteInstructor(ctx context.Context, id string) error
}

type InstructorHandler struct {
	service   instructorService
	responder responder
}

func NewInstructorHandler(service instructorService, logger *slog.Logger) *InstructorHandler {
	return &InstructorHandler{service: service, responder: newResponder(logger)}
}

func (h *InstructorHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req instructorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if vErr := validateRequest(req); vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	instructor, err := h.service.CreateInstructor(r.Context(), application.InstructorInput{
		Email:       strings.TrimSpace(req.Email),
		DisplayName: strings.TrimSpace(req.DisplayName),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toInstructorDTO(instructor))
}

func (h *InstructorHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	instructor, err := h.service.GetInstructor(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toInstructorDTO(instructor))
}

func (h *InstructorHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	instructors, err := h.service.ListInstructors(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listInstructorsResponse{
		Instructors: toInstructorDTOs(instructors),
	})
}

func (h *InstructorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.service.DeleteInstructor(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type instructorRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required"`
}

type instructorDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type listInstructorsResponse struct {
	Instructors []instructorDTO `json:"instructors"`
}

func toInstructorDTO(instructor application.Instructor) instructorDTO {
	return instructorDTO{
		ID:          instructor.ID,
		Email:       instructor.Email,
		DisplayName: instructor.DisplayName,
		CreatedAt:   instructor.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   instructor.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toInstructorDTOs(instructors []application.Instructor) []instructorDTO {
	if len(instructors) == 0 {
		return nil
	}
	out := make([]instructorDTO, 0, len(instructors))
	for _, instructor := range instructors {
		out = append(out, toInstructorDTO(instructor))
	}
	return out
}
