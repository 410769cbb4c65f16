package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/soulpath/internal/adapters/repository"
	"github.com/okian/soulpath/internal/domain/content"
	"github.com/okian/soulpath/internal/domain/dedupe"
	"github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/okian/soulpath/internal/domain/session"
	"github.com/okian/soulpath/internal/domain/types"
	"github.com/okian/soulpath/pkg/logger"
	"github.com/okian/soulpath/pkg/metrics"
)

// Questions returns the question bank in order. Answer weights and tags are
// not part of the JSON form.
func (s *Service) Questions() []quiz.Question {
	return s.bank.Questions()
}

// Archetype returns the content record for key rendered for displayName.
func (s *Service) Archetype(key, displayName string) (content.Archetype, error) {
	a, err := s.catalog.Lookup(key)
	if err != nil {
		return content.Archetype{}, err
	}
	return a.Render(displayName), nil
}

// StartSession opens a new session for userID and upserts the user's profile.
func (s *Service) StartSession(ctx context.Context, userID, displayName, email string) (types.SessionView, error) {
	c, err := s.running()
	if err != nil {
		return types.SessionView{}, err
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return types.SessionView{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	displayName = strings.TrimSpace(displayName)

	sess := session.New(uuid.NewString(), userID, displayName, s.now())
	c.sessions.Put(sess)
	metrics.RecordSessionStarted()

	profile := s.loadProfile(ctx, c, userID)
	if displayName != "" {
		profile.DisplayName = displayName
	}
	if email = strings.TrimSpace(email); email != "" {
		profile.Email = &email
	}
	if err := c.store.SaveProfile(ctx, profile); err != nil {
		metrics.RecordPersistError()
		metrics.RecordErrorByComponent("service", "save_profile")
		s.logger.Error(ctx, "profile upsert failed", logger.String("user_id", userID), logger.Error(err))
	}

	s.logger.Debug(ctx, "session started",
		logger.String("session_id", sess.ID),
		logger.String("user_id", userID),
	)
	return s.view(sess), nil
}

// GetSession returns the current view of a session.
func (s *Service) GetSession(_ context.Context, sessionID string) (types.SessionView, error) {
	c, err := s.running()
	if err != nil {
		return types.SessionView{}, err
	}
	sess, err := c.sessions.Get(sessionID)
	if err != nil {
		return types.SessionView{}, err
	}
	return s.view(sess), nil
}

// SubmitAnswer applies answerID to the session's current question. A non-empty
// submissionID makes the call idempotent: a repeated id returns the current
// state flagged as a duplicate. When the answer completes the quiz the result
// is queued for persistence; a full queue is logged and does not fail the call.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, answerID, submissionID string) (types.SessionView, error) {
	c, err := s.running()
	if err != nil {
		return types.SessionView{}, err
	}

	answerID = strings.TrimSpace(answerID)
	if answerID == "" {
		return types.SessionView{}, fmt.Errorf("%w: answer_id is required", ErrInvalidInput)
	}

	var key string
	if submissionID != "" {
		key = dedupe.Key(sessionID, submissionID)
		if c.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordAnswerDuplicate()
			sess, err := c.sessions.Get(sessionID)
			if err != nil {
				return types.SessionView{}, err
			}
			v := s.view(sess)
			v.Duplicate = true
			return v, nil
		}
	}

	start := time.Now()
	var wasComplete bool
	next, err := c.sessions.Update(sessionID, func(cur session.Session) (session.Session, error) {
		wasComplete = cur.Complete()
		return session.Answer(cur, s.bank, c.resolver, answerID)
	})
	if err != nil {
		if key != "" {
			c.deduper.Unrecord(ctx, key)
		}
		if errors.Is(err, quiz.ErrUnknownAnswer) || errors.Is(err, session.ErrComplete) {
			metrics.RecordAnswerRejected()
		}
		return types.SessionView{}, err
	}
	metrics.RecordAnswerSubmitted()

	if next.Complete() && !wasComplete {
		metrics.RecordResolveLatency(float64(time.Since(start).Microseconds()) / 1000)
		s.complete(ctx, c, next)
	}
	return s.view(next), nil
}

// complete records the outcome and queues it for persistence.
func (s *Service) complete(ctx context.Context, c *components, sess session.Session) {
	res := *sess.Result
	metrics.RecordSessionCompleted()
	metrics.RecordArchetypeResolved(res.Dominant.String())

	job := model.PersistJob{
		JobID:       uuid.NewString(),
		Result:      res,
		DisplayName: sess.DisplayName,
		TS:          s.now(),
	}
	if !c.jobs.Enqueue(ctx, job) {
		reason := "full"
		if c.jobs.IsClosed() {
			reason = "closed"
		}
		metrics.RecordPersistDropped()
		s.logger.Warn(ctx, "persist queue rejected result, not stored",
			logger.String("session_id", sess.ID),
			logger.String("user_id", sess.UserID),
			logger.String("reason", reason),
		)
		return
	}

	s.logger.Info(ctx, "quiz completed",
		logger.String("session_id", sess.ID),
		logger.String("user_id", sess.UserID),
		logger.String("archetype", res.Dominant.String()),
		logger.Int("percentage", res.Percentage),
		logger.String("tag", string(res.DominantTag)),
	)
}

// ResetSession discards the progress of a session.
func (s *Service) ResetSession(ctx context.Context, sessionID string) (types.SessionView, error) {
	c, err := s.running()
	if err != nil {
		return types.SessionView{}, err
	}
	next, err := c.sessions.Update(sessionID, func(cur session.Session) (session.Session, error) {
		return cur.Reset(s.now()), nil
	})
	if err != nil {
		return types.SessionView{}, err
	}
	metrics.RecordSessionReset()
	s.logger.Debug(ctx, "session reset", logger.String("session_id", sessionID))
	return s.view(next), nil
}

// Result returns the stored result of userID rendered with the profile's
// display name.
func (s *Service) Result(ctx context.Context, userID string) (model.Result, error) {
	c, err := s.running()
	if err != nil {
		return model.Result{}, err
	}
	res, err := c.store.Load(ctx, userID)
	if err != nil {
		return model.Result{}, err
	}
	name := ""
	if p, err := c.store.LoadProfile(ctx, userID); err == nil {
		name = p.DisplayName
	}
	return res.Rendered(name), nil
}

// Profile returns the stored profile of userID.
func (s *Service) Profile(ctx context.Context, userID string) (model.Profile, error) {
	c, err := s.running()
	if err != nil {
		return model.Profile{}, err
	}
	return c.store.LoadProfile(ctx, userID)
}

// loadProfile returns the stored profile or a fresh one. Store failures other
// than not-found are logged.
func (s *Service) loadProfile(ctx context.Context, c *components, userID string) model.Profile {
	p, err := c.store.LoadProfile(ctx, userID)
	if err == nil {
		return p
	}
	if !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordErrorByComponent("service", "load_profile")
		s.logger.Warn(ctx, "profile lookup failed", logger.String("user_id", userID), logger.Error(err))
	}
	return model.Profile{UserID: userID}
}

// view builds the client-facing shape of sess.
func (s *Service) view(sess session.Session) types.SessionView {
	v := types.SessionView{
		SessionID:   sess.ID,
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName,
		Index:       sess.Index,
		Total:       s.bank.Len(),
		Complete:    sess.Complete(),
	}
	if sess.Complete() {
		r := sess.Result.Rendered(sess.DisplayName)
		v.Result = &r
		return v
	}
	if q, err := sess.Current(s.bank); err == nil {
		v.Question = &q
	}
	return v
}
