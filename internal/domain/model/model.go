// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/soulpath/internal/domain/content"
	"github.com/okian/soulpath/internal/domain/quiz"
)

// Result is the resolved outcome of a completed quiz session. Text blocks keep
// their name placeholder markup; render them with Rendered.
type Result struct {
	UserID          string           `json:"user_id"`
	SessionID       string           `json:"session_id"`
	Scores          quiz.ScoreVector `json:"scores"`
	Dominant        quiz.Category    `json:"dominant"`
	Secondary       quiz.Category    `json:"secondary"`
	Percentage      int              `json:"percentage"`
	DominantTag     quiz.Tag         `json:"dominant_tag"`
	Title           string           `json:"title"`
	SanskritName    string           `json:"sanskrit_name"`
	Path            string           `json:"path"`
	Challenges      string           `json:"challenges"`
	Recommendations string           `json:"recommendations"`
	Course          content.Course   `json:"course"`
	CompletedAt     time.Time        `json:"completed_at"`
}

// Rendered returns a copy with the display name substituted into the text blocks.
func (r Result) Rendered(displayName string) Result {
	r.Path = content.Render(r.Path, displayName)
	r.Challenges = content.Render(r.Challenges, displayName)
	r.Recommendations = content.Render(r.Recommendations, displayName)
	return r
}

// Profile is the cross-quiz record kept per user. Optional fields are nil until
// the user has completed a quiz.
type Profile struct {
	UserID         string         `json:"user_id"`
	DisplayName    string         `json:"display_name"`
	Email          *string        `json:"email,omitempty"`
	LastArchetype  *quiz.Category `json:"last_archetype,omitempty"`
	LastPercentage *int           `json:"last_percentage,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

// WithResult returns a copy of p updated from a completed result.
func (p Profile) WithResult(r Result) Profile {
	dominant := r.Dominant
	pct := r.Percentage
	at := r.CompletedAt
	p.LastArchetype = &dominant
	p.LastPercentage = &pct
	p.CompletedAt = &at
	return p
}

// PersistJob carries a completed result to the persistence workers. The
// worker merges it into the profile stored at write time.
type PersistJob struct {
	JobID       string    // unique id, used for log correlation
	Result      Result    // resolved result to store
	DisplayName string    // used only when the user has no stored name
	TS          time.Time // enqueue time
}
