package api

import (
	"context"
	"net/http"

	"github.com/okian/soulpath/internal/domain/model"
)

// ResultDependencies defines the interface for stored results and profiles.
type ResultDependencies interface {
	Result(ctx context.Context, userID string) (model.Result, error)
	Profile(ctx context.Context, userID string) (model.Profile, error)
}

// ResultsHandler handles result and profile requests.
type ResultsHandler struct {
	deps ResultDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleResult handles GET /results/{user_id} requests.
func (h *ResultsHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_result"
	userID, err := pathParam(r, "user_id")
	if err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Result(r.Context(), userID)
	if err != nil {
		fail(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleProfile handles GET /profiles/{user_id} requests.
func (h *ResultsHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	userID, err := pathParam(r, "user_id")
	if err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.Profile(r.Context(), userID)
	if err != nil {
		fail(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
