package quizsim

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/soulpath/pkg/logger"
)

// SetupLogging initializes the logger to write to stdout and, when logFile is
// set, to that file as well.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithWriter(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Soulpath Quiz Simulator
=======================

Plays simulated users through the quiz HTTP API with random answers and
checks every result the server returns against a local replay.

Usage:
  go run ./cmd/quiz-sim [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -users int
        Number of simulated users (default 200)
  -workers int
        Number of concurrent players (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -seed uint
        Seed for answer choices (default: current time)
  -persist-wait duration
        How long to wait for each result to be stored; 0 skips the check (default 2s)
  -output string
        Transcript file (default: quiz_sim_TIMESTAMP.json)
  -log string
        Also write logs to this file
  -verbose
        Log every completed session
  -help
        Show this help message

Examples:
  go run ./cmd/quiz-sim -users 1000 -workers 32
  go run ./cmd/quiz-sim -seed 42 -output runs/seed42.json
`)
}
