package api

import (
	"net/http"

	"github.com/okian/soulpath/internal/domain/content"
	"github.com/okian/soulpath/internal/domain/quiz"
)

// CatalogDependencies exposes the static quiz tables.
type CatalogDependencies interface {
	Questions() []quiz.Question
	Archetype(key, displayName string) (content.Archetype, error)
}

type questionsResponse struct {
	Count     int             `json:"count"`
	Questions []quiz.Question `json:"questions"`
}

// CatalogHandler serves questions and archetype content.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleQuestions handles GET /questions requests.
func (h *CatalogHandler) HandleQuestions(w http.ResponseWriter, _ *http.Request) {
	qs := h.deps.Questions()
	writeJSON(w, http.StatusOK, questionsResponse{Count: len(qs), Questions: qs})
}

// HandleArchetype handles GET /archetypes/{key} requests. The optional name
// query parameter fills the placeholders in the text blocks.
func (h *CatalogHandler) HandleArchetype(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_archetype"
	key, err := pathParam(r, "key")
	if err != nil {
		fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := h.deps.Archetype(key, r.URL.Query().Get("name"))
	if err != nil {
		fail(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}
