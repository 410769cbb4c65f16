// Package content maps each archetype category to its static result copy and
// course recommendation.
package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/soulpath/internal/domain/quiz"
)

// NamePlaceholder marks where the user's display name is substituted.
const NamePlaceholder = "{{name}}"

// DefaultDisplayName is used when a user did not give a name.
const DefaultDisplayName = "Seeker"

// ErrUnknownArchetype is returned by Lookup for keys outside the category set.
var ErrUnknownArchetype = errors.New("unknown archetype")

// Course is an external course recommended for an archetype.
type Course struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Archetype is the static result copy for one category.
type Archetype struct {
	Key             quiz.Category `json:"key"`
	Title           string        `json:"title"`
	SanskritName    string        `json:"sanskrit_name"`
	Path            string        `json:"path"`
	Challenges      string        `json:"challenges"`
	Recommendations string        `json:"recommendations"`
	Course          Course        `json:"course"`
}

// Render returns a copy with the name placeholder replaced in every text block.
func (a Archetype) Render(displayName string) Archetype {
	a.Path = Render(a.Path, displayName)
	a.Challenges = Render(a.Challenges, displayName)
	a.Recommendations = Render(a.Recommendations, displayName)
	return a
}

// Render substitutes displayName for NamePlaceholder in text.
func Render(text, displayName string) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = DefaultDisplayName
	}
	return strings.ReplaceAll(text, NamePlaceholder, name)
}

// Catalog is a closed lookup table from category to archetype copy.
type Catalog struct {
	entries [quiz.CategoryCount]Archetype
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{entries: archetypes}
}

// MustLookup returns the archetype for c. The category set is closed, so an
// out-of-range key is a programming error and panics.
func (c *Catalog) MustLookup(cat quiz.Category) Archetype {
	if !cat.Valid() {
		panic(fmt.Sprintf("content: archetype lookup for %s", cat))
	}
	return c.entries[cat]
}

// Lookup parses a client-supplied key and returns its archetype.
func (c *Catalog) Lookup(key string) (Archetype, error) {
	cat, err := quiz.ParseCategory(strings.ToLower(strings.TrimSpace(key)))
	if err != nil {
		return Archetype{}, fmt.Errorf("%w: %q", ErrUnknownArchetype, key)
	}
	return c.entries[cat], nil
}

// All returns every archetype in category order.
func (c *Catalog) All() []Archetype {
	out := make([]Archetype, 0, quiz.CategoryCount)
	for _, cat := range quiz.Categories() {
		out = append(out, c.entries[cat])
	}
	return out
}

var archetypes = [quiz.CategoryCount]Archetype{
	quiz.Unbound: {
		Key:          quiz.Unbound,
		Title:        "The Unbound Spirit",
		SanskritName: "Mukta",
		Path: "<p>{{name}}, your spirit moves like wind across open country. You sense early that " +
			"every structure is temporary, and you are most alive when nothing is holding you in place.</p>",
		Challenges: "<p>Freedom can turn into flight, {{name}}. When commitments tighten you may leave " +
			"before a lesson has finished teaching you, and control becomes something you resist rather than understand.</p>",
		Recommendations: "<p>Choose one practice, {{name}}, and keep it for forty days. Let a container hold " +
			"you on purpose, and notice that presence can be a wider kind of freedom.</p>",
		Course: Course{
			Title:       "Rooted Freedom",
			Description: "A six-week program that pairs breathwork with daily grounding rituals.",
			URL:         "https://soulpath.example.com/courses/rooted-freedom",
		},
	},
	quiz.Harmonious: {
		Key:          quiz.Harmonious,
		Title:        "The Harmonious Soul",
		SanskritName: "Samatva",
		Path: "<p>{{name}}, you walk the path of connection. You feel the emotional weather of every room " +
			"and you naturally weave people back together.</p>",
		Challenges: "<p>Your gift for harmony can hide your own needs, {{name}}. Keeping the peace " +
			"sometimes means swallowing a truth that wanted to be spoken.</p>",
		Recommendations: "<p>Practice one honest \"no\" each week, {{name}}. Heart-opening meditation paired " +
			"with boundary work will let your care flow without draining you.</p>",
		Course: Course{
			Title:       "The Open Heart",
			Description: "Loving-kindness meditation and boundary practices for natural caregivers.",
			URL:         "https://soulpath.example.com/courses/open-heart",
		},
	},
	quiz.Reflective: {
		Key:          quiz.Reflective,
		Title:        "The Reflective Sage",
		SanskritName: "Dhyani",
		Path: "<p>{{name}}, you are drawn inward. Silence is your teacher and you find meaning by looking " +
			"beneath the surface of experience.</p>",
		Challenges: "<p>The mind that sees deeply can also loop endlessly, {{name}}. Insight may " +
			"stay on the page instead of moving into your life.</p>",
		Recommendations: "<p>Balance contemplation with embodiment, {{name}}. Walking meditation and short " +
			"daily actions will carry your insight out into the world.</p>",
		Course: Course{
			Title:       "Stillness in Motion",
			Description: "A contemplative course that turns insight into daily embodied practice.",
			URL:         "https://soulpath.example.com/courses/stillness-in-motion",
		},
	},
	quiz.Awakener: {
		Key:          quiz.Awakener,
		Title:        "The Awakener",
		SanskritName: "Bodhaka",
		Path: "<p>{{name}}, you carry a fire meant to be shared. You are here to catalyse change and " +
			"others wake up in your presence.</p>",
		Challenges: "<p>A flame that never rests burns out, {{name}}. Purpose can become pressure " +
			"and your energy may spike and crash.</p>",
		Recommendations: "<p>Build rhythms of rest into your mission, {{name}}. Restorative practice keeps " +
			"your fire steady enough to light others for years.</p>",
		Course: Course{
			Title:       "Sustainable Fire",
			Description: "Energy practices and purpose coaching for natural leaders.",
			URL:         "https://soulpath.example.com/courses/sustainable-fire",
		},
	},
	quiz.Emerging: {
		Key:          quiz.Emerging,
		Title:        "The Emerging Seeker",
		SanskritName: "Ankura",
		Path: "<p>{{name}}, you are at the threshold of something new. Like a seed breaking through soil, " +
			"your growth is quiet but unstoppable.</p>",
		Challenges: "<p>Doubt and the wish for approval can slow you, {{name}}. You may wait for " +
			"permission that only you can give.</p>",
		Recommendations: "<p>Start small and stay consistent, {{name}}. Gentle daily journaling and " +
			"a supportive circle will help you trust your own voice.</p>",
		Course: Course{
			Title:       "First Light",
			Description: "A beginner-friendly path to building confidence through daily practice.",
			URL:         "https://soulpath.example.com/courses/first-light",
		},
	},
}
