// Package session models one user's pass through the questionnaire as an
// immutable value: every step takes a Session and returns a new one.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/okian/soulpath/internal/domain/scoring"
)

// Sentinel error kinds for session transitions.
var (
	ErrComplete = errors.New("session already complete")
)

// Session is the running state of a quiz attempt.
type Session struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	DisplayName string           `json:"display_name"`
	Index       int              `json:"index"`
	Scores      quiz.ScoreVector `json:"scores"`
	Tags        []quiz.Tag       `json:"tags"`
	AnswerIDs   []string         `json:"answer_ids"`
	StartedAt   time.Time        `json:"started_at"`
	Result      *model.Result    `json:"result,omitempty"`
}

// New starts a session at the first question.
func New(id, userID, displayName string, now time.Time) Session {
	return Session{
		ID:          id,
		UserID:      userID,
		DisplayName: displayName,
		StartedAt:   now.UTC(),
	}
}

// Complete reports whether the session has been resolved.
func (s Session) Complete() bool {
	return s.Result != nil
}

// Current returns the question the session is waiting on.
func (s Session) Current(b *quiz.Bank) (quiz.Question, error) {
	if s.Complete() {
		return quiz.Question{}, ErrComplete
	}
	return b.Question(s.Index)
}

// Reset discards all progress, keeping the session identity.
func (s Session) Reset(now time.Time) Session {
	return New(s.ID, s.UserID, s.DisplayName, now)
}

// Answer applies the chosen answer to the current question. The answer's
// vector and tag are merged before resolution, so the last answer always
// counts toward the result.
func Answer(s Session, b *quiz.Bank, r *scoring.Resolver, answerID string) (Session, error) {
	q, err := s.Current(b)
	if err != nil {
		return s, err
	}
	a, err := q.FindAnswer(answerID)
	if err != nil {
		return s, err
	}

	next := s
	next.Scores = scoring.Accumulate(s.Scores, a.Scores)
	next.Tags = append(s.Tags[:len(s.Tags):len(s.Tags)], a.Tag)
	next.AnswerIDs = append(s.AnswerIDs[:len(s.AnswerIDs):len(s.AnswerIDs)], a.ID)
	next.Index = s.Index + 1

	if next.Index >= b.Len() {
		res := r.Resolve(next.Scores, next.Tags)
		res.UserID = next.UserID
		res.SessionID = next.ID
		next.Result = &res
	}
	return next, nil
}

// Replay runs a full list of answer ids through a fresh session.
func Replay(s Session, b *quiz.Bank, r *scoring.Resolver, answerIDs []string) (Session, error) {
	cur := s
	for i, id := range answerIDs {
		var err error
		cur, err = Answer(cur, b, r, id)
		if err != nil {
			return cur, fmt.Errorf("answer %d (%s): %w", i, id, err)
		}
	}
	return cur, nil
}
