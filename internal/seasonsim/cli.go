package seasonsim

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fieldline/standee/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "season_sim_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the season simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Standee Season Simulator
========================

A concurrent tool that drives a running Standee instance through a full
season of standings views and verifies the ranking contract end to end.

Usage:
  go run cmd/season-sim/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -games int
        Number of games to simulate (default 10)
  -season int
        Season year used for every view (default current year)
  -weeks int
        Number of weekly views per game, plus one season view each (default 14)
  -checks int
        Rank spot checks per standings view (default 3)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for fetched standings (default: season_boards_TIMESTAMP.json)
  -log string
        Log file for simulation output (default: season_sim_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/season-sim/main.go

  # Simulate a bigger league against a remote instance
  go run cmd/season-sim/main.go -games 50 -weeks 18 -url http://localhost:8080

  # Simulate with verbose output
  go run cmd/season-sim/main.go -verbose -games 5

  # Simulate with a custom log file
  go run cmd/season-sim/main.go -games 20 -log my_sim.log
`)
}
