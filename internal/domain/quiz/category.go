// Package quiz holds the static alignment questionnaire: the closed archetype
// category set, score vectors, pain-point tags and the question bank.
package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Category is one of the five archetype categories. Declaration order is
// significant: it is the tie-break order used when ranking scores.
type Category int

// Archetype categories in declaration order.
const (
	Unbound Category = iota
	Harmonious
	Reflective
	Awakener
	Emerging
)

// CategoryCount is the size of the closed category set.
const CategoryCount = 5

var categoryKeys = [CategoryCount]string{
	Unbound:    "unbound",
	Harmonious: "harmonious",
	Reflective: "reflective",
	Awakener:   "awakener",
	Emerging:   "emerging",
}

// Categories returns all categories in declaration order.
func Categories() []Category {
	return []Category{Unbound, Harmonious, Reflective, Awakener, Emerging}
}

// Valid reports whether c is inside the closed category set.
func (c Category) Valid() bool {
	return c >= 0 && c < CategoryCount
}

// String returns the category key, e.g. "unbound".
func (c Category) String() string {
	if !c.Valid() {
		return "category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryKeys[c]
}

// MarshalText encodes the category as its key.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(categoryKeys[c]), nil
}

// UnmarshalText decodes a category key.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory maps a key such as "harmonious" to its Category.
func ParseCategory(key string) (Category, error) {
	for i, k := range categoryKeys {
		if k == key {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
}

// ScoreVector holds one non-negative score per category, indexed by Category.
// It is a value type; Add never mutates its receiver.
type ScoreVector [CategoryCount]int

// Add returns the elementwise sum of v and other.
func (v ScoreVector) Add(other ScoreVector) ScoreVector {
	var out ScoreVector
	for i := range v {
		out[i] = v[i] + other[i]
	}
	return out
}

// Get returns the score for c.
func (v ScoreVector) Get(c Category) int {
	return v[c]
}

// Max returns the highest single entry.
func (v ScoreVector) Max() int {
	best := 0
	for _, s := range v {
		if s > best {
			best = s
		}
	}
	return best
}

// MarshalJSON encodes the vector as an object with keys in declaration order.
func (v ScoreVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(categoryKeys[i]))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(s))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by category. Missing keys read as zero.
func (v *ScoreVector) UnmarshalJSON(b []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out ScoreVector
	for k, s := range raw {
		c, err := ParseCategory(k)
		if err != nil {
			return err
		}
		if s < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeScore, k, s)
		}
		out[c] = s
	}
	*v = out
	return nil
}

// Tag is a pain-point theme attached to every answer.
type Tag string

// Known pain-point tags.
const (
	TagControl    Tag = "control"
	TagMind       Tag = "mind"
	TagValidation Tag = "validation"
	TagAwareness  Tag = "awareness"
	TagFear       Tag = "fear"
	TagPurpose    Tag = "purpose"
	TagConnection Tag = "connection"
	TagEnergy     Tag = "energy"
)

// Tags returns every known tag.
func Tags() []Tag {
	return []Tag{TagControl, TagMind, TagValidation, TagAwareness, TagFear, TagPurpose, TagConnection, TagEnergy}
}

// Known reports whether t is one of the declared tags.
func (t Tag) Known() bool {
	for _, k := range Tags() {
		if k == t {
			return true
		}
	}
	return false
}
