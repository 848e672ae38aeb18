package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/example/classtrack/internal/application"
)

type sessionDirectory interface {
	ListSessions(ctx context.Context, query application.SessionQuery) ([]application.ScheduledSession, error)
	GetSession(ctx context.Context, sessionID string) (application.ScheduledSession, error)
	CancelScheduledInstance(ctx context.Context, sessionID, reason string) error
}

type SessionHandler struct {
	directory sessionDirectory
	responder responder
}

func NewSessionHandler(directory sessionDirectory, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{directory: directory, responder: newResponder(logger)}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.directory == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessions, err := h.directory.ListSessions(r.Context(), buildSessionQuery(r.URL.Query()))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{
		Sessions: toSessionDTOs(sessions),
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.directory == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	session, err := h.directory.GetSession(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSessionDTO(session))
}

func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.directory == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req cancelSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if vErr := validateRequest(req); vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	if err := h.directory.CancelScheduledInstance(r.Context(), id, req.Reason); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func buildSessionQuery(values url.Values) application.SessionQuery {
	return application.SessionQuery{
		ClassID:      strings.TrimSpace(values.Get("class_id")),
		InstructorID: strings.TrimSpace(values.Get("instructor_id")),
		Status:       strings.TrimSpace(values.Get("status")),
		From:         parseTimestamp(values.Get("from")),
		To:           parseTimestamp(values.Get("to")),
	}
}

type cancelSessionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type listSessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}
