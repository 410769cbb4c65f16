package quizsim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/okian/soulpath/internal/domain/scoring"
	"github.com/okian/soulpath/internal/domain/session"
	"github.com/okian/soulpath/internal/domain/types"
)

type startRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type answerRequest struct {
	AnswerID     string `json:"answer_id"`
	SubmissionID string `json:"submission_id"`
}

// player drives simulated users through the HTTP API.
type player struct {
	client   *HTTPClient
	bank     *quiz.Bank
	resolver *scoring.Resolver
	seed     uint64
}

func newPlayer(client *HTTPClient, seed uint64) *player {
	return &player{
		client:   client,
		bank:     quiz.DefaultBank(),
		resolver: scoring.NewResolver(),
		seed:     seed,
	}
}

// play runs user n through a full session with random answers and checks the
// server's result against a local replay of the same answers.
func (p *player) play(ctx context.Context, n int) Transcript {
	rng := rand.New(rand.NewPCG(p.seed, uint64(n)))
	t := Transcript{UserID: "sim-" + uuid.NewString()}

	var view types.SessionView
	err := p.client.Post(ctx, "/sessions", startRequest{UserID: t.UserID, DisplayName: fmt.Sprintf("Seeker %d", n)}, &view)
	if err != nil {
		t.Error = err.Error()
		return t
	}
	t.SessionID = view.SessionID

	for view.Question != nil {
		answers := view.Question.Answers
		choice := answers[rng.IntN(len(answers))].ID
		t.AnswerIDs = append(t.AnswerIDs, choice)

		var next types.SessionView
		req := answerRequest{AnswerID: choice, SubmissionID: fmt.Sprintf("%d", view.Index)}
		if err := p.client.Post(ctx, "/sessions/"+t.SessionID+"/answers", req, &next); err != nil {
			t.Error = err.Error()
			return t
		}
		view = next
	}
	if view.Result == nil {
		t.Error = "session ended without a result"
		return t
	}
	t.Server = outcomeOf(*view.Result)

	local, err := session.Replay(session.New(t.SessionID, t.UserID, "", time.Now()), p.bank, p.resolver, t.AnswerIDs)
	if err != nil {
		t.Error = fmt.Sprintf("local replay: %v", err)
		return t
	}
	t.Local = outcomeOf(*local.Result)
	t.Match = t.Server == t.Local
	return t
}

// awaitPersisted polls the stored result of t until it appears or wait passes.
func (p *player) awaitPersisted(ctx context.Context, t *Transcript, wait time.Duration) {
	deadline := time.Now().Add(wait)
	for {
		var res model.Result
		err := p.client.Get(ctx, "/results/"+t.UserID, &res)
		if err == nil {
			t.Persisted = res.SessionID == t.SessionID && outcomeOf(res) == t.Server
			return
		}
		if !errors.Is(err, ErrNotFound) || time.Now().After(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(persistPollInterval):
		}
	}
}

func outcomeOf(r model.Result) Outcome {
	return Outcome{
		Scores:      r.Scores,
		Dominant:    r.Dominant,
		Secondary:   r.Secondary,
		Percentage:  r.Percentage,
		DominantTag: r.DominantTag,
	}
}
