package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/fieldline/standee/internal/seasonsim"
)

// Default configuration constants.
const (
	defaultGames      = 10
	defaultWeeks      = 14
	defaultChecks     = 3
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultSimTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		games      = flag.Int("games", defaultGames, "Number of games to simulate")
		season     = flag.Int("season", time.Now().Year(), "Season year used for every view")
		weeks      = flag.Int("weeks", defaultWeeks, "Number of weekly views per game")
		checks     = flag.Int("checks", defaultChecks, "Rank spot checks per standings view")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for fetched standings (default: season_boards_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for simulation output (default: season_sim_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seasonsim.ShowHelp()
		return
	}

	// Setup logging
	if err := seasonsim.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSimTimeout)
	defer cancel()

	// Create simulation configuration
	config := &seasonsim.Config{
		BaseURL:    *baseURL,
		Games:      *games,
		Season:     *season,
		Weeks:      *weeks,
		Checks:     *checks,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	// Run the simulation
	if err := seasonsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
