package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	app "github.com/okian/soulpath/internal/app"
	"github.com/okian/soulpath/internal/config"
	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/okian/soulpath/internal/domain/types"
	"github.com/okian/soulpath/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestHandlerEndToEnd(t *testing.T) {
	convey.Convey("Given the full HTTP stack on a started service", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithWorkerCount(2))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		srv := httptest.NewServer(newHandler(ctx, svc))

		convey.Reset(func() {
			srv.Close()
			svc.Stop()
		})

		convey.Convey("When a user answers all twenty questions", func() {
			resp := postJSON(t, srv.URL+"/sessions", `{"user_id":"e2e","display_name":"Noor"}`)
			var view types.SessionView
			convey.So(json.NewDecoder(resp.Body).Decode(&view), convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

			for view.Question != nil {
				answer := view.Question.Answers[0].ID
				resp = postJSON(t, srv.URL+"/sessions/"+view.SessionID+"/answers", fmt.Sprintf(`{"answer_id":%q}`, answer))
				view = types.SessionView{}
				convey.So(json.NewDecoder(resp.Body).Decode(&view), convey.ShouldBeNil)
				_ = resp.Body.Close()
			}

			convey.Convey("Then the last response carries the rendered result", func() {
				convey.So(view.Complete, convey.ShouldBeTrue)
				convey.So(view.Index, convey.ShouldEqual, quiz.QuestionCount)
				convey.So(view.Result, convey.ShouldNotBeNil)
				convey.So(view.Result.Percentage, convey.ShouldBeBetweenOrEqual, 0, 100)
			})

			convey.Convey("And the result is eventually served from the store", func() {
				var status int
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					r, err := http.Get(srv.URL + "/results/e2e")
					convey.So(err, convey.ShouldBeNil)
					status = r.StatusCode
					_ = r.Body.Close()
					if status == http.StatusOK {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				convey.So(status, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When the docs and metrics are requested", func() {
			docs, err := http.Get(srv.URL + "/api-docs")
			convey.So(err, convey.ShouldBeNil)
			_ = docs.Body.Close()
			health, err := http.Get(srv.URL + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			_ = health.Body.Close()

			convey.Convey("Then both are served", func() {
				convey.So(docs.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(health.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration on a free port", t, func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		addr := l.Addr().String()
		_ = l.Close()

		cfg := config.New()
		cfg.Addr = addr
		cfg.PersistWorkerCount = 1

		convey.Convey("When run is cancelled after the server is up", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg) }()

			var up bool
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) && !up {
				if r, err := http.Get("http://" + addr + "/questions"); err == nil {
					up = r.StatusCode == http.StatusOK
					_ = r.Body.Close()
				} else {
					time.Sleep(10 * time.Millisecond)
				}
			}
			cancel()

			convey.Convey("Then it served requests and returned cleanly", func() {
				convey.So(up, convey.ShouldBeTrue)
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When the address is already taken", func() {
			busy, err := net.Listen("tcp", "127.0.0.1:0")
			convey.So(err, convey.ShouldBeNil)
			defer busy.Close()
			cfg.Addr = busy.Addr().String()

			err = run(context.Background(), cfg)

			convey.Convey("Then run reports the listener failure", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestUpdaters(t *testing.T) {
	convey.Convey("Given the metric updaters", t, func() {
		svc := app.New()
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then they run without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
