package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// SessionDependencies defines the interface for quiz session operations.
type SessionDependencies interface {
	StartSession(ctx context.Context, userID, displayName, email string) (SessionView, error)
	GetSession(ctx context.Context, sessionID string) (SessionView, error)
	SubmitAnswer(ctx context.Context, sessionID, answerID, submissionID string) (SessionView, error)
	ResetSession(ctx context.Context, sessionID string) (SessionView, error)
}

// startRequest mirrors the OpenAPI schema for POST /sessions.
type startRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

func (s startRequest) validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return errors.New("missing user_id")
	}
	if e := strings.TrimSpace(s.Email); e != "" && !strings.Contains(e, "@") {
		return errors.New("invalid email")
	}
	return nil
}

// answerRequest mirrors the OpenAPI schema for POST /sessions/{id}/answers.
type answerRequest struct {
	AnswerID     string `json:"answer_id"`
	SubmissionID string `json:"submission_id"`
}

func (a answerRequest) validate() error {
	if strings.TrimSpace(a.AnswerID) == "" {
		return errors.New("missing answer_id")
	}
	return nil
}

// SessionsHandler handles the quiz session routes.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleStart handles POST /sessions requests.
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_session"
	var req startRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.StartSession(r.Context(), req.UserID, req.DisplayName, req.Email)
	if err != nil {
		fail(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /sessions/{id} requests.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	id, err := pathParam(r, "id")
	if err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.GetSession(r.Context(), id)
	if err != nil {
		fail(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleAnswer handles POST /sessions/{id}/answers requests.
func (h *SessionsHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_answer"
	id, err := pathParam(r, "id")
	if err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	var req answerRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.SubmitAnswer(r.Context(), id, req.AnswerID, strings.TrimSpace(req.SubmissionID))
	if err != nil {
		fail(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleReset handles POST /sessions/{id}/reset requests.
func (h *SessionsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_session"
	id, err := pathParam(r, "id")
	if err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.ResetSession(r.Context(), id)
	if err != nil {
		fail(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
