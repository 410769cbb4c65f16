// Package quizsim drives simulated users through the quiz HTTP API and
// checks every server result against a local replay of the same answers.
package quizsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/soulpath/internal/domain/quiz"
	"github.com/okian/soulpath/pkg/logger"
)

// ErrMismatch is returned when any server result differs from its local replay.
var ErrMismatch = errors.New("server and local results differ")

// Run executes a complete simulation.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		Users:      config.Users,
		Archetypes: make(map[quiz.Category]int),
		StartTime:  time.Now(),
	}
	log := logger.Get().Named("quiz-sim")

	log.Info(ctx, "starting quiz simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("users", config.Users),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Any("seed", config.Seed),
	)

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Play every user concurrently
	transcripts := playAll(ctx, config, newPlayer(client, config.Seed))

	// Step 3: Tally
	for i := range transcripts {
		t := &transcripts[i]
		switch {
		case t.Error != "":
			stats.Failed++
			log.Warn(ctx, "session failed", logger.String("user_id", t.UserID), logger.String("error", t.Error))
		case !t.Match:
			stats.Completed++
			stats.Mismatched++
			log.Error(ctx, "result mismatch",
				logger.String("user_id", t.UserID),
				logger.Any("server", t.Server),
				logger.Any("local", t.Local),
			)
		default:
			stats.Completed++
			stats.Archetypes[t.Server.Dominant]++
		}
		if t.Persisted {
			stats.Persisted++
		}
		if config.Verbose && t.Error == "" {
			log.Info(ctx, "session completed",
				logger.String("user_id", t.UserID),
				logger.String("archetype", t.Server.Dominant.String()),
				logger.Int("percentage", t.Server.Percentage),
				logger.Bool("persisted", t.Persisted),
			)
		}
	}

	// Step 4: Save transcripts
	if err := saveTranscripts(ctx, config.OutputFile, transcripts); err != nil {
		log.Warn(ctx, "failed to save transcripts", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrMismatch, stats.Mismatched, stats.Completed)
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// playAll runs config.Users sessions over a pool of config.Workers players.
func playAll(ctx context.Context, config *Config, p *player) []Transcript {
	transcripts := make([]Transcript, config.Users)
	work := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range work {
				t := p.play(ctx, n)
				if t.Error == "" && config.PersistWait > 0 {
					p.awaitPersisted(ctx, &t, config.PersistWait)
				}
				transcripts[n] = t
			}
		}()
	}

	go func() {
		defer close(work)
		for n := 0; n < config.Users; n++ {
			select {
			case <-ctx.Done():
				return
			case work <- n:
			}
		}
	}()

	wg.Wait()
	return transcripts
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	var qs struct {
		Count int `json:"count"`
	}
	if err := client.Get(ctx, "/questions", &qs); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if qs.Count != quiz.QuestionCount {
		return fmt.Errorf("service serves %d questions, want %d", qs.Count, quiz.QuestionCount)
	}
	return nil
}

// saveTranscripts writes transcripts as a JSON array.
func saveTranscripts(ctx context.Context, filename string, transcripts []Transcript) error {
	if filename == "" {
		filename = "quiz_sim_" + time.Now().Format("20060102_150405") + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(transcripts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcripts: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write transcripts: %w", err)
	}

	logger.Get().Info(ctx, "transcripts saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, sessionsPerSecond float64
	if stats.Users > 0 {
		successRate = float64(stats.Completed-stats.Mismatched) / float64(stats.Users) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		sessionsPerSecond = float64(stats.Completed) / stats.Duration.Seconds()
	}

	fields := []logger.Field{
		logger.Int("users", stats.Users),
		logger.Int("completed", stats.Completed),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("failed", stats.Failed),
		logger.Int("persisted", stats.Persisted),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("sessionsPerSecond", sessionsPerSecond),
	}
	for _, c := range quiz.Categories() {
		fields = append(fields, logger.Int(c.String(), stats.Archetypes[c]))
	}
	logger.Get().Info(ctx, "final statistics", fields...)
}
