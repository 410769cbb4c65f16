package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/soulpath/internal/adapters/http/api"
	"github.com/okian/soulpath/internal/adapters/repository"
	"github.com/okian/soulpath/internal/domain/content"
	"github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/okian/soulpath/internal/domain/session"
	"github.com/okian/soulpath/internal/domain/types"
	"github.com/okian/soulpath/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDeps records calls and returns canned values.
type mockDeps struct {
	startUserID  string
	submission   string
	answerErr    error
	sessionErr   error
	resultErr    error
	internalFail bool
}

func (m *mockDeps) Questions() []quiz.Question {
	return quiz.DefaultBank().Questions()
}

func (m *mockDeps) Archetype(key, displayName string) (content.Archetype, error) {
	a, err := content.Default().Lookup(key)
	if err != nil {
		return content.Archetype{}, err
	}
	return a.Render(displayName), nil
}

func (m *mockDeps) StartSession(_ context.Context, userID, displayName, _ string) (types.SessionView, error) {
	if m.internalFail {
		return types.SessionView{}, errors.New("disk on fire")
	}
	m.startUserID = userID
	q, _ := quiz.DefaultBank().Question(0)
	return types.SessionView{SessionID: "s-1", UserID: userID, DisplayName: displayName, Total: quiz.QuestionCount, Question: &q}, nil
}

func (m *mockDeps) GetSession(_ context.Context, id string) (types.SessionView, error) {
	if m.sessionErr != nil {
		return types.SessionView{}, m.sessionErr
	}
	return types.SessionView{SessionID: id, Total: quiz.QuestionCount}, nil
}

func (m *mockDeps) SubmitAnswer(_ context.Context, id, _, submissionID string) (types.SessionView, error) {
	m.submission = submissionID
	if m.answerErr != nil {
		return types.SessionView{}, m.answerErr
	}
	return types.SessionView{SessionID: id, Index: 1, Total: quiz.QuestionCount}, nil
}

func (m *mockDeps) ResetSession(_ context.Context, id string) (types.SessionView, error) {
	return types.SessionView{SessionID: id, Total: quiz.QuestionCount}, nil
}

func (m *mockDeps) Result(_ context.Context, userID string) (model.Result, error) {
	if m.resultErr != nil {
		return model.Result{}, m.resultErr
	}
	return model.Result{UserID: userID, Dominant: quiz.Harmonious, Percentage: 55}, nil
}

func (m *mockDeps) Profile(_ context.Context, userID string) (model.Profile, error) {
	if userID == "ghost" {
		return model.Profile{}, fmt.Errorf("profile %q: %w", userID, repository.ErrNotFound)
	}
	return model.Profile{UserID: userID, DisplayName: "Asha"}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{}
		stats := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
		mux := http.NewServeMux()
		api.NewServer(deps, stats).Register(context.Background(), mux)

		Convey("When probing health and stats", func() {
			health := do(mux, http.MethodGet, "/healthz", "")
			st := do(mux, http.MethodGet, "/stats", "")

			Convey("Then both answer 200", func() {
				So(health.Code, ShouldEqual, http.StatusOK)
				So(st.Code, ShouldEqual, http.StatusOK)
				So(st.Body.String(), ShouldContainSubstring, `"started":true`)
			})
		})

		Convey("When listing questions", func() {
			w := do(mux, http.MethodGet, "/questions", "")

			Convey("Then the bank is returned without weights", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Count     int `json:"count"`
					Questions []struct {
						ID      string           `json:"id"`
						Answers []map[string]any `json:"answers"`
					} `json:"questions"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Count, ShouldEqual, quiz.QuestionCount)
				So(body.Questions[0].ID, ShouldEqual, "q01")
				_, hasScores := body.Questions[0].Answers[0]["scores"]
				So(hasScores, ShouldBeFalse)
			})
		})

		Convey("When an unknown route is requested", func() {
			w := do(mux, http.MethodGet, "/leaderboard", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a route is called with the wrong method", func() {
			w := do(mux, http.MethodDelete, "/questions", "")

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestSessionsHandler(t *testing.T) {
	Convey("Given the session routes", t, func() {
		deps := &mockDeps{}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When starting a session", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"user_id":"u-1","display_name":"Asha"}`)

			Convey("Then it is created with the first question", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(deps.startUserID, ShouldEqual, "u-1")
				var v types.SessionView
				So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
				So(v.SessionID, ShouldEqual, "s-1")
				So(v.Question.ID, ShouldEqual, "q01")
			})
		})

		Convey("When starting a session without a user id", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"display_name":"Asha"}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
				So(w.Body.String(), ShouldContainSubstring, "missing user_id")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"user_id":`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the email is malformed", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"user_id":"u","email":"nope"}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the service fails internally", func() {
			deps.internalFail = true
			w := do(mux, http.MethodPost, "/sessions", `{"user_id":"u-1"}`)

			Convey("Then the detail is hidden", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(errorCode(w), ShouldEqual, "internal_error")
				So(w.Body.String(), ShouldNotContainSubstring, "disk on fire")
			})
		})

		Convey("When fetching an unknown session", func() {
			deps.sessionErr = fmt.Errorf("session %q: %w", "x", repository.ErrNotFound)
			w := do(mux, http.MethodGet, "/sessions/x", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(errorCode(w), ShouldEqual, "not_found")
			})
		})

		Convey("When answering", func() {
			w := do(mux, http.MethodPost, "/sessions/s-1/answers", `{"answer_id":"q01a","submission_id":" sub-1 "}`)

			Convey("Then the next state is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.submission, ShouldEqual, "sub-1")
				So(w.Body.String(), ShouldContainSubstring, `"index":1`)
			})
		})

		Convey("When answering without an answer id", func() {
			w := do(mux, http.MethodPost, "/sessions/s-1/answers", `{}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the answer does not belong to the question", func() {
			deps.answerErr = fmt.Errorf("%w: q02a on q01", quiz.ErrUnknownAnswer)
			w := do(mux, http.MethodPost, "/sessions/s-1/answers", `{"answer_id":"q02a"}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})

		Convey("When the session is already complete", func() {
			deps.answerErr = session.ErrComplete
			w := do(mux, http.MethodPost, "/sessions/s-1/answers", `{"answer_id":"q01a"}`)

			Convey("Then it conflicts", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(errorCode(w), ShouldEqual, "conflict")
			})
		})

		Convey("When resetting", func() {
			w := do(mux, http.MethodPost, "/sessions/s-1/reset", "")

			Convey("Then the fresh state is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"index":0`)
			})
		})
	})
}

func TestResultsAndCatalogHandlers(t *testing.T) {
	Convey("Given the read routes", t, func() {
		deps := &mockDeps{}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When a stored result exists", func() {
			w := do(mux, http.MethodGet, "/results/u-1", "")

			Convey("Then it is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"dominant":"harmonious"`)
				So(w.Body.String(), ShouldContainSubstring, `"percentage":55`)
			})
		})

		Convey("When no result is stored", func() {
			deps.resultErr = repository.ErrNotFound
			w := do(mux, http.MethodGet, "/results/u-2", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When fetching profiles", func() {
			ok := do(mux, http.MethodGet, "/profiles/u-1", "")
			missing := do(mux, http.MethodGet, "/profiles/ghost", "")

			Convey("Then known users are returned and unknown are not found", func() {
				So(ok.Code, ShouldEqual, http.StatusOK)
				So(ok.Body.String(), ShouldContainSubstring, `"display_name":"Asha"`)
				So(missing.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When fetching an archetype with a name", func() {
			w := do(mux, http.MethodGet, "/archetypes/awakener?name=Mei", "")

			Convey("Then the text is rendered for that name", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Mei")
				So(w.Body.String(), ShouldNotContainSubstring, content.NamePlaceholder)
			})
		})

		Convey("When fetching an unknown archetype", func() {
			w := do(mux, http.MethodGet, "/archetypes/nomad", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStatsWithoutProvider(t *testing.T) {
	Convey("Given a server built without a stats provider", t, func() {
		mux := http.NewServeMux()
		api.NewServer(&mockDeps{}, nil).Register(context.Background(), mux)

		Convey("When stats are requested", func() {
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then it fails as an internal error without detail", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, `"code":"internal_error"`)
				So(w.Body.String(), ShouldNotContainSubstring, "api.stats")
			})
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given an op tagged error", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both kind and cause are matchable", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("And the other constructors format consistently", func() {
			So(api.NewKind("api.op", api.ErrInternal).Error(), ShouldEqual, "api.op: internal error")
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
