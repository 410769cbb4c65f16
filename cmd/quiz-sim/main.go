package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/soulpath/internal/quizsim"
)

// Default configuration constants.
const (
	defaultUsers       = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultPersistWait = 2 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		users       = flag.Int("users", defaultUsers, "Number of simulated users")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent players")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed        = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for answer choices")
		persistWait = flag.Duration("persist-wait", defaultPersistWait, "How long to wait for each result to be stored")
		outputFile  = flag.String("output", "", "Transcript file (default: quiz_sim_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Also write logs to this file")
		verbose     = flag.Bool("verbose", false, "Log every completed session")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		quizsim.ShowHelp()
		return
	}

	if err := quizsim.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &quizsim.Config{
		BaseURL:     *baseURL,
		Users:       *users,
		Workers:     max(*workers, 1),
		Timeout:     *timeout,
		Seed:        *seed,
		PersistWait: *persistWait,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}

	if _, err := quizsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
