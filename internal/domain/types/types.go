// Package types contains common types used across the application
package types

import (
	"github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/internal/domain/quiz"
)

// SessionView is the client-facing shape of a quiz session.
type SessionView struct {
	SessionID   string         `json:"session_id"`
	UserID      string         `json:"user_id"`
	DisplayName string         `json:"display_name"`
	Index       int            `json:"index"`
	Total       int            `json:"total"`
	Complete    bool           `json:"complete"`
	Duplicate   bool           `json:"duplicate,omitempty"`
	Question    *quiz.Question `json:"question,omitempty"`
	Result      *model.Result  `json:"result,omitempty"`
}
