package quiz

import "fmt"

// Bank shape constants.
const (
	QuestionCount      = 20
	AnswersPerQuestion = 5
	MaxAnswerPoints    = 4
)

// MaxPossibleScore is the per-category ceiling used as the percentage
// denominator: QuestionCount * MaxAnswerPoints. It is kept as a constant;
// DerivedMaxScore recomputes it from the bank and tests keep the two in sync.
const MaxPossibleScore = 80

// Answer is one selectable option of a question.
type Answer struct {
	ID     string      `json:"id"`
	Text   string      `json:"text"`
	Scores ScoreVector `json:"-"`
	Tag    Tag         `json:"-"`
}

// Question is a prompt with exactly AnswersPerQuestion answers.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Answers []Answer `json:"answers"`
}

// FindAnswer returns the answer with the given id.
func (q Question) FindAnswer(id string) (Answer, error) {
	for _, a := range q.Answers {
		if a.ID == id {
			return a, nil
		}
	}
	return Answer{}, fmt.Errorf("%w: %s on %s", ErrUnknownAnswer, id, q.ID)
}

// Bank is the ordered, immutable question table.
type Bank struct {
	questions []Question
}

// DefaultBank returns the alignment questionnaire.
func DefaultBank() *Bank {
	return &Bank{questions: alignmentQuestions}
}

// NewBank builds a bank from questions. Intended for tests and tooling; the
// service always runs on DefaultBank.
func NewBank(questions []Question) *Bank {
	cp := make([]Question, len(questions))
	copy(cp, questions)
	return &Bank{questions: cp}
}

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// Question returns the question at index i.
func (b *Bank) Question(i int) (Question, error) {
	if i < 0 || i >= len(b.questions) {
		return Question{}, fmt.Errorf("%w: index %d", ErrUnknownQuestion, i)
	}
	return b.questions[i], nil
}

// Questions returns a copy of the ordered question list.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// DerivedMaxScore returns, per category, the sum over questions of the best
// single answer value, and then the largest of those sums.
func (b *Bank) DerivedMaxScore() int {
	var ceiling ScoreVector
	for _, q := range b.questions {
		var best ScoreVector
		for _, a := range q.Answers {
			for c, s := range a.Scores {
				if s > best[c] {
					best[c] = s
				}
			}
		}
		ceiling = ceiling.Add(best)
	}
	return ceiling.Max()
}

// Validate checks the structural invariants of the bank.
func (b *Bank) Validate() error {
	seen := make(map[string]struct{})
	for _, q := range b.questions {
		if len(q.Answers) != AnswersPerQuestion {
			return fmt.Errorf("question %s has %d answers, want %d", q.ID, len(q.Answers), AnswersPerQuestion)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate id %s", q.ID)
		}
		seen[q.ID] = struct{}{}
		for _, a := range q.Answers {
			if _, dup := seen[a.ID]; dup {
				return fmt.Errorf("duplicate id %s", a.ID)
			}
			seen[a.ID] = struct{}{}
			if !a.Tag.Known() {
				return fmt.Errorf("answer %s has unknown tag %q", a.ID, a.Tag)
			}
			for c, s := range a.Scores {
				if s < 0 || s > MaxAnswerPoints {
					return fmt.Errorf("answer %s scores %d for %s", a.ID, s, Category(c))
				}
			}
		}
	}
	return nil
}

var alignmentQuestions = []Question{
	{ID: "q01", Prompt: "When you wake up, what is the first thing you notice?", Answers: []Answer{
		{ID: "q01a", Text: "A pull to go somewhere I have never been", Scores: ScoreVector{Unbound: 4, Awakener: 1}, Tag: TagControl},
		{ID: "q01b", Text: "How the people around me are feeling", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q01c", Text: "The dream I just left behind", Scores: ScoreVector{Reflective: 4, Emerging: 1}, Tag: TagMind},
		{ID: "q01d", Text: "A surge of energy to start something", Scores: ScoreVector{Awakener: 4}, Tag: TagEnergy},
		{ID: "q01e", Text: "A quiet unease about the day ahead", Scores: ScoreVector{Emerging: 4}, Tag: TagFear},
	}},
	{ID: "q02", Prompt: "Which place restores you the most?", Answers: []Answer{
		{ID: "q02a", Text: "A garden shared with friends", Scores: ScoreVector{Harmonious: 4, Emerging: 1}, Tag: TagConnection},
		{ID: "q02b", Text: "A library after closing time", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
		{ID: "q02c", Text: "A mountain ridge at sunrise", Scores: ScoreVector{Awakener: 4, Unbound: 2}, Tag: TagPurpose},
		{ID: "q02d", Text: "My own room with the door closed", Scores: ScoreVector{Emerging: 4}, Tag: TagFear},
		{ID: "q02e", Text: "An open road with no destination", Scores: ScoreVector{Unbound: 4}, Tag: TagAwareness},
	}},
	{ID: "q03", Prompt: "How do you usually make big decisions?", Answers: []Answer{
		{ID: "q03a", Text: "I sit with the question until it answers itself", Scores: ScoreVector{Reflective: 4}, Tag: TagAwareness},
		{ID: "q03b", Text: "I follow the spark and adjust on the way", Scores: ScoreVector{Awakener: 4, Unbound: 1}, Tag: TagEnergy},
		{ID: "q03c", Text: "I ask the people I trust first", Scores: ScoreVector{Emerging: 4, Harmonious: 1}, Tag: TagValidation},
		{ID: "q03d", Text: "I choose whatever keeps me free", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q03e", Text: "I look for the option that keeps the peace", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
	}},
	{ID: "q04", Prompt: "What drains your energy fastest?", Answers: []Answer{
		{ID: "q04a", Text: "Repeating the same routine every day", Scores: ScoreVector{Awakener: 4}, Tag: TagEnergy},
		{ID: "q04b", Text: "Being judged by people I care about", Scores: ScoreVector{Emerging: 4}, Tag: TagValidation},
		{ID: "q04c", Text: "Rules that do not make sense to me", Scores: ScoreVector{Unbound: 4, Awakener: 1}, Tag: TagControl},
		{ID: "q04d", Text: "Conflict in my home or at work", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q04e", Text: "Noise that keeps me from thinking", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
	}},
	{ID: "q05", Prompt: "Which phrase feels closest to your truth?", Answers: []Answer{
		{ID: "q05a", Text: "I am still finding my voice", Scores: ScoreVector{Emerging: 4, Reflective: 1}, Tag: TagFear},
		{ID: "q05b", Text: "I belong to no one and everything", Scores: ScoreVector{Unbound: 4}, Tag: TagAwareness},
		{ID: "q05c", Text: "Love is the thread that holds me", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q05d", Text: "Stillness shows me what is real", Scores: ScoreVector{Reflective: 4}, Tag: TagAwareness},
		{ID: "q05e", Text: "I am here to wake something up", Scores: ScoreVector{Awakener: 4, Harmonious: 1}, Tag: TagPurpose},
	}},
	{ID: "q06", Prompt: "When a plan falls apart, you tend to...", Answers: []Answer{
		{ID: "q06a", Text: "Let it go and wander somewhere new", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q06b", Text: "Check that everyone involved is okay", Scores: ScoreVector{Harmonious: 4, Emerging: 1}, Tag: TagConnection},
		{ID: "q06c", Text: "Replay what went wrong in my head", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
		{ID: "q06d", Text: "Turn the setback into a new mission", Scores: ScoreVector{Awakener: 4}, Tag: TagPurpose},
		{ID: "q06e", Text: "Wonder whether I was ever ready", Scores: ScoreVector{Emerging: 4}, Tag: TagValidation},
	}},
	{ID: "q07", Prompt: "What kind of practice calls to you?", Answers: []Answer{
		{ID: "q07a", Text: "Chanting with a group", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q07b", Text: "Silent sitting meditation", Scores: ScoreVector{Reflective: 4, Unbound: 1}, Tag: TagAwareness},
		{ID: "q07c", Text: "Breathwork that lights me up", Scores: ScoreVector{Awakener: 4}, Tag: TagEnergy},
		{ID: "q07d", Text: "Gentle journaling in the evening", Scores: ScoreVector{Emerging: 4, Reflective: 1}, Tag: TagMind},
		{ID: "q07e", Text: "Walking alone with no plan", Scores: ScoreVector{Unbound: 4}, Tag: TagAwareness},
	}},
	{ID: "q08", Prompt: "How do others most often describe you?", Answers: []Answer{
		{ID: "q08a", Text: "Deep and thoughtful", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
		{ID: "q08b", Text: "Inspiring and intense", Scores: ScoreVector{Awakener: 4}, Tag: TagPurpose},
		{ID: "q08c", Text: "Sweet but hard to read", Scores: ScoreVector{Emerging: 4}, Tag: TagFear},
		{ID: "q08d", Text: "Independent and unpredictable", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q08e", Text: "Warm and steady", Scores: ScoreVector{Harmonious: 4, Reflective: 1}, Tag: TagConnection},
	}},
	{ID: "q09", Prompt: "What are you most afraid of losing?", Answers: []Answer{
		{ID: "q09a", Text: "My sense of direction", Scores: ScoreVector{Awakener: 4}, Tag: TagPurpose},
		{ID: "q09b", Text: "The approval of the people I love", Scores: ScoreVector{Emerging: 4, Harmonious: 2}, Tag: TagValidation},
		{ID: "q09c", Text: "My freedom to choose", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q09d", Text: "The bonds I have built", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q09e", Text: "My clarity of mind", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
	}},
	{ID: "q10", Prompt: "Pick the element you feel most drawn to.", Answers: []Answer{
		{ID: "q10a", Text: "Seedlings breaking through soil", Scores: ScoreVector{Emerging: 4}, Tag: TagFear},
		{ID: "q10b", Text: "Wind", Scores: ScoreVector{Unbound: 4, Reflective: 1}, Tag: TagAwareness},
		{ID: "q10c", Text: "Water", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q10d", Text: "Moonlight", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
		{ID: "q10e", Text: "Fire", Scores: ScoreVector{Awakener: 4}, Tag: TagEnergy},
	}},
	{ID: "q11", Prompt: "How do you react when someone asks you for help?", Answers: []Answer{
		{ID: "q11a", Text: "I help, but on my own terms", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q11b", Text: "I drop everything and show up", Scores: ScoreVector{Harmonious: 4}, Tag: TagValidation},
		{ID: "q11c", Text: "I listen carefully before I answer", Scores: ScoreVector{Reflective: 4, Harmonious: 1}, Tag: TagAwareness},
		{ID: "q11d", Text: "I push them to find their own fire", Scores: ScoreVector{Awakener: 4}, Tag: TagPurpose},
		{ID: "q11e", Text: "I worry I will not be enough", Scores: ScoreVector{Emerging: 4}, Tag: TagFear},
	}},
	{ID: "q12", Prompt: "Which of these best describes your inner dialogue?", Answers: []Answer{
		{ID: "q12a", Text: "Kind, but rarely quiet", Scores: ScoreVector{Harmonious: 4}, Tag: TagMind},
		{ID: "q12b", Text: "Curious and full of questions", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
		{ID: "q12c", Text: "Urgent, always pointing forward", Scores: ScoreVector{Awakener: 4, Emerging: 1}, Tag: TagEnergy},
		{ID: "q12d", Text: "Soft and a little uncertain", Scores: ScoreVector{Emerging: 4}, Tag: TagValidation},
		{ID: "q12e", Text: "Mostly silent, like open sky", Scores: ScoreVector{Unbound: 4}, Tag: TagAwareness},
	}},
	{ID: "q13", Prompt: "What would an ideal weekend look like?", Answers: []Answer{
		{ID: "q13a", Text: "A solo retreat with books and tea", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
		{ID: "q13b", Text: "Organizing a community event", Scores: ScoreVector{Awakener: 4, Harmonious: 2}, Tag: TagPurpose},
		{ID: "q13c", Text: "Trying something new in a safe space", Scores: ScoreVector{Emerging: 4}, Tag: TagFear},
		{ID: "q13d", Text: "A last-minute trip", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q13e", Text: "Cooking for the people I love", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
	}},
	{ID: "q14", Prompt: "When you feel stuck, what helps most?", Answers: []Answer{
		{ID: "q14a", Text: "Moving my body hard", Scores: ScoreVector{Awakener: 4}, Tag: TagEnergy},
		{ID: "q14b", Text: "Someone telling me I am on the right path", Scores: ScoreVector{Emerging: 4}, Tag: TagValidation},
		{ID: "q14c", Text: "Changing my surroundings completely", Scores: ScoreVector{Unbound: 4, Awakener: 1}, Tag: TagControl},
		{ID: "q14d", Text: "A long talk with a close friend", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q14e", Text: "Writing until the knot loosens", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
	}},
	{ID: "q15", Prompt: "Which gift would mean the most to you?", Answers: []Answer{
		{ID: "q15a", Text: "Words of encouragement", Scores: ScoreVector{Emerging: 4, Harmonious: 1}, Tag: TagValidation},
		{ID: "q15b", Text: "A one-way ticket", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q15c", Text: "A handmade keepsake", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q15d", Text: "An old book of wisdom", Scores: ScoreVector{Reflective: 4}, Tag: TagAwareness},
		{ID: "q15e", Text: "A mentor who believes in my vision", Scores: ScoreVector{Awakener: 4}, Tag: TagPurpose},
	}},
	{ID: "q16", Prompt: "How do you relate to rules and traditions?", Answers: []Answer{
		{ID: "q16a", Text: "I question every one of them", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q16b", Text: "They help us live well together", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q16c", Text: "I study where they came from", Scores: ScoreVector{Reflective: 4, Awakener: 1}, Tag: TagMind},
		{ID: "q16d", Text: "I break the ones that hold people back", Scores: ScoreVector{Awakener: 4, Unbound: 1}, Tag: TagPurpose},
		{ID: "q16e", Text: "I follow them so I do not stand out", Scores: ScoreVector{Emerging: 4}, Tag: TagFear},
	}},
	{ID: "q17", Prompt: "What does success mean to you?", Answers: []Answer{
		{ID: "q17a", Text: "Peace in my relationships", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q17b", Text: "Understanding myself fully", Scores: ScoreVector{Reflective: 4}, Tag: TagAwareness},
		{ID: "q17c", Text: "Leaving the world changed", Scores: ScoreVector{Awakener: 4}, Tag: TagPurpose},
		{ID: "q17d", Text: "Finally trusting myself", Scores: ScoreVector{Emerging: 4, Reflective: 1}, Tag: TagValidation},
		{ID: "q17e", Text: "Owing nothing to anyone", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
	}},
	{ID: "q18", Prompt: "Which season feels most like you right now?", Answers: []Answer{
		{ID: "q18a", Text: "Winter, turned inward", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
		{ID: "q18b", Text: "Summer, burning bright", Scores: ScoreVector{Awakener: 4}, Tag: TagEnergy},
		{ID: "q18c", Text: "Early spring, just beginning", Scores: ScoreVector{Emerging: 4}, Tag: TagFear},
		{ID: "q18d", Text: "Autumn, letting things fall away", Scores: ScoreVector{Unbound: 4, Reflective: 1}, Tag: TagAwareness},
		{ID: "q18e", Text: "Late spring, everything in bloom together", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
	}},
	{ID: "q19", Prompt: "What do you most want from this journey?", Answers: []Answer{
		{ID: "q19a", Text: "Energy that does not burn out", Scores: ScoreVector{Awakener: 4}, Tag: TagEnergy},
		{ID: "q19b", Text: "Courage to be seen", Scores: ScoreVector{Emerging: 4}, Tag: TagValidation},
		{ID: "q19c", Text: "Release from what still binds me", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q19d", Text: "Deeper connection with others", Scores: ScoreVector{Harmonious: 4, Awakener: 1}, Tag: TagConnection},
		{ID: "q19e", Text: "A quieter, clearer mind", Scores: ScoreVector{Reflective: 4}, Tag: TagMind},
	}},
	{ID: "q20", Prompt: "Finish the sentence: my soul is...", Answers: []Answer{
		{ID: "q20a", Text: "...a seed waiting for light", Scores: ScoreVector{Emerging: 4}, Tag: TagFear},
		{ID: "q20b", Text: "...a bird that will not be caged", Scores: ScoreVector{Unbound: 4}, Tag: TagControl},
		{ID: "q20c", Text: "...a river that joins other rivers", Scores: ScoreVector{Harmonious: 4}, Tag: TagConnection},
		{ID: "q20d", Text: "...a still lake reflecting the sky", Scores: ScoreVector{Reflective: 4}, Tag: TagAwareness},
		{ID: "q20e", Text: "...a flame that lights other flames", Scores: ScoreVector{Awakener: 4, Emerging: 1}, Tag: TagPurpose},
	}},
}
