// Package scoring accumulates answer score vectors and resolves the final
// archetype of a completed quiz.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/okian/soulpath/internal/domain/content"
	"github.com/okian/soulpath/internal/domain/model"
	"github.com/okian/soulpath/internal/domain/quiz"
)

// Default resolver configuration constants.
const (
	defaultMaxScore    = quiz.MaxPossibleScore
	defaultFallbackTag = quiz.TagMind
	percentScale       = 100
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithMaxScore overrides the percentage denominator.
func WithMaxScore(maxScore int) Option {
	return func(r *Resolver) {
		if maxScore > 0 {
			r.maxScore = maxScore
		}
	}
}

// WithCatalog sets the content catalog used to attach result copy.
func WithCatalog(c *content.Catalog) Option {
	return func(r *Resolver) {
		if c != nil {
			r.catalog = c
		}
	}
}

// WithFallbackTag sets the tag reported when no tags were collected.
func WithFallbackTag(t quiz.Tag) Option {
	return func(r *Resolver) {
		if t != "" {
			r.fallbackTag = t
		}
	}
}

// WithClock overrides the completion timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// Ranked pairs a category with its accumulated score.
type Ranked struct {
	Category quiz.Category
	Score    int
}

// Accumulate returns total plus the chosen answer's vector.
func Accumulate(total, answer quiz.ScoreVector) quiz.ScoreVector {
	return total.Add(answer)
}

// Rank orders categories by score descending. Equal scores keep declaration
// order, so the first-declared category wins a tie.
func Rank(scores quiz.ScoreVector) []Ranked {
	out := make([]Ranked, 0, quiz.CategoryCount)
	for _, c := range quiz.Categories() {
		out = append(out, Ranked{Category: c, Score: scores.Get(c)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Percentage returns round(score / maxScore * 100) clamped to [0,100].
func Percentage(score, maxScore int) int {
	if maxScore <= 0 || score <= 0 {
		return 0
	}
	pct := int(math.Round(float64(score) / float64(maxScore) * percentScale))
	if pct > percentScale {
		return percentScale
	}
	return pct
}

// DominantTag returns the most frequent tag. Ties go to the tag seen first.
// ok is false when tags is empty.
func DominantTag(tags []quiz.Tag) (tag quiz.Tag, ok bool) {
	counts := make(map[quiz.Tag]int, len(tags))
	order := make([]quiz.Tag, 0, len(tags))
	for _, t := range tags {
		if _, seen := counts[t]; !seen {
			order = append(order, t)
		}
		counts[t]++
	}
	best := 0
	for _, t := range order {
		if counts[t] > best {
			best = counts[t]
			tag = t
		}
	}
	return tag, best > 0
}

// Resolver turns final scores and tags into a Result.
type Resolver struct {
	maxScore    int
	fallbackTag quiz.Tag
	catalog     *content.Catalog
	now         func() time.Time
}

// NewResolver creates a resolver with configuration options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		maxScore:    defaultMaxScore,
		fallbackTag: defaultFallbackTag,
		catalog:     content.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxScore returns the configured percentage denominator.
func (r *Resolver) MaxScore() int { return r.maxScore }

// Resolve computes the dominant and secondary categories, percentage and
// dominant tag, then attaches the dominant archetype's copy. UserID and
// SessionID are left for the caller to fill.
func (r *Resolver) Resolve(scores quiz.ScoreVector, tags []quiz.Tag) model.Result {
	ranked := Rank(scores)
	dominant, secondary := ranked[0], ranked[1]

	tag, ok := DominantTag(tags)
	if !ok {
		tag = r.fallbackTag
	}

	arch := r.catalog.MustLookup(dominant.Category)
	return model.Result{
		Scores:          scores,
		Dominant:        dominant.Category,
		Secondary:       secondary.Category,
		Percentage:      Percentage(dominant.Score, r.maxScore),
		DominantTag:     tag,
		Title:           arch.Title,
		SanskritName:    arch.SanskritName,
		Path:            arch.Path,
		Challenges:      arch.Challenges,
		Recommendations: arch.Recommendations,
		Course:          arch.Course,
		CompletedAt:     r.now().UTC(),
	}
}
