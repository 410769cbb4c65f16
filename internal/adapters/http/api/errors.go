package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/soulpath/internal/adapters/repository"
	"github.com/okian/soulpath/internal/domain/content"
	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/okian/soulpath/internal/domain/session"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// Error codes written in error bodies.
const (
	codeBadRequest = "bad_request"
	codeNotFound   = "not_found"
	codeConflict   = "conflict"
	codeInternal   = "internal_error"
)

// Error tags a failure with the handler operation and a sentinel kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind for op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind wraps err as kind for op.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op, keeping its kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, quiz.ErrUnknownAnswer):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, content.ErrUnknownArchetype):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, session.ErrComplete):
		return http.StatusConflict, codeConflict
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, codeInternal
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
