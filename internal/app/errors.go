package service

import "errors"

// Sentinel kinds returned by the service. Domain and repository kinds
// (session.ErrComplete, quiz.ErrUnknownAnswer, repository.ErrNotFound,
// content.ErrUnknownArchetype) pass through wrapped.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrInvalidInput = errors.New("invalid input")
)
