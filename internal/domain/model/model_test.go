package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/smartystreets/goconvey/convey"
)

func TestResult(t *testing.T) {
	convey.Convey("Given a Result with placeholder copy", t, func() {
		res := model.Result{
			UserID:          "user-1",
			SessionID:       "session-1",
			Scores:          quiz.ScoreVector{quiz.Reflective: 44},
			Dominant:        quiz.Reflective,
			Secondary:       quiz.Unbound,
			Percentage:      55,
			DominantTag:     quiz.TagMind,
			Path:            "<p>{{name}}, look inward.</p>",
			Challenges:      "{{name}} {{name}}",
			Recommendations: "no placeholder",
			CompletedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}

		convey.Convey("When rendered with a display name", func() {
			out := res.Rendered("Asha")

			convey.Convey("Then every occurrence is substituted", func() {
				convey.So(out.Path, convey.ShouldEqual, "<p>Asha, look inward.</p>")
				convey.So(out.Challenges, convey.ShouldEqual, "Asha Asha")
				convey.So(out.Recommendations, convey.ShouldEqual, "no placeholder")
			})

			convey.Convey("And the original keeps its markup", func() {
				convey.So(res.Path, convey.ShouldContainSubstring, "{{name}}")
			})
		})

		convey.Convey("When rendered with a blank display name", func() {
			out := res.Rendered("  ")

			convey.Convey("Then the default name is used", func() {
				convey.So(out.Path, convey.ShouldStartWith, "<p>Seeker,")
			})
		})

		convey.Convey("When encoded as JSON", func() {
			raw, err := json.Marshal(res)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then categories and tags use their string keys", func() {
				convey.So(string(raw), convey.ShouldContainSubstring, `"dominant":"reflective"`)
				convey.So(string(raw), convey.ShouldContainSubstring, `"secondary":"unbound"`)
				convey.So(string(raw), convey.ShouldContainSubstring, `"dominant_tag":"mind"`)
			})

			convey.Convey("Then it decodes back to an equal value", func() {
				var back model.Result
				convey.So(json.Unmarshal(raw, &back), convey.ShouldBeNil)
				convey.So(back, convey.ShouldResemble, res)
			})
		})
	})
}

func TestProfile(t *testing.T) {
	convey.Convey("Given a fresh profile", t, func() {
		p := model.Profile{UserID: "user-1", DisplayName: "Asha"}

		convey.Convey("Then optional fields start unset", func() {
			convey.So(p.Email, convey.ShouldBeNil)
			convey.So(p.LastArchetype, convey.ShouldBeNil)
			convey.So(p.LastPercentage, convey.ShouldBeNil)
			convey.So(p.CompletedAt, convey.ShouldBeNil)

			raw, err := json.Marshal(p)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(raw), convey.ShouldNotContainSubstring, "last_archetype")
		})

		convey.Convey("When a result is applied", func() {
			at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
			next := p.WithResult(model.Result{Dominant: quiz.Awakener, Percentage: 70, CompletedAt: at})

			convey.Convey("Then the latest outcome is recorded", func() {
				convey.So(*next.LastArchetype, convey.ShouldEqual, quiz.Awakener)
				convey.So(*next.LastPercentage, convey.ShouldEqual, 70)
				convey.So(*next.CompletedAt, convey.ShouldEqual, at)
				convey.So(next.DisplayName, convey.ShouldEqual, "Asha")
			})

			convey.Convey("And the receiver is untouched", func() {
				convey.So(p.LastArchetype, convey.ShouldBeNil)
			})
		})
	})
}
