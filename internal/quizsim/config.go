package quizsim

import (
	"time"

	"github.com/okian/soulpath/internal/domain/quiz"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Users       int           // Number of simulated users
	Workers     int           // Number of concurrent players
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Seed for answer choices; runs with the same seed pick the same answers
	PersistWait time.Duration // How long to wait for each result to be stored
	OutputFile  string        // Transcript file
	Verbose     bool          // Log every completed session
}

// Outcome is the comparable part of a resolved result.
type Outcome struct {
	Scores      quiz.ScoreVector `json:"scores"`
	Dominant    quiz.Category    `json:"dominant"`
	Secondary   quiz.Category    `json:"secondary"`
	Percentage  int              `json:"percentage"`
	DominantTag quiz.Tag         `json:"dominant_tag"`
}

// Transcript records one simulated user's pass through the quiz.
type Transcript struct {
	UserID    string   `json:"user_id"`
	SessionID string   `json:"session_id"`
	AnswerIDs []string `json:"answer_ids"`
	Server    Outcome  `json:"server"`
	Local     Outcome  `json:"local"`
	Match     bool     `json:"match"`
	Persisted bool     `json:"persisted"`
	Error     string   `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Users      int
	Completed  int
	Mismatched int
	Failed     int
	Persisted  int
	Archetypes map[quiz.Category]int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
