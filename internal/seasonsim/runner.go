package seasonsim

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldline/standee/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete season simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting standee season simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("games", config.Games),
		logger.Int("season", config.Season),
		logger.Int("weeks", config.Weeks),
		logger.Int("checks", config.Checks),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Enumerate standings views
	views, err := enumerateViews(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("view enumeration failed: %w", err)
	}

	// Step 3: Fetch boards concurrently
	boards, err := fetchBoards(ctx, config, views, stats)
	if err != nil {
		return fmt.Errorf("board fetch failed: %w", err)
	}

	// Step 4: Spot check individual ranks
	if err := spotCheckRanks(ctx, config, boards, stats); err != nil {
		return fmt.Errorf("rank spot check failed: %w", err)
	}

	// Step 5: Replay views through the batch endpoint
	if err := compareBatches(ctx, config, boards, stats); err != nil {
		return fmt.Errorf("batch comparison failed: %w", err)
	}

	// Step 6: Verify the ranking contract
	if err := verifyResults(ctx, config, boards, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Report service counters
	if err := reportServiceStats(ctx, config); err != nil {
		logger.Get().Warn(ctx, "failed to read service stats", logger.Error(err))
	}

	// Step 8: Save boards to file
	if err := saveBoardsToFile(ctx, config, boards); err != nil {
		logger.Get().Warn(ctx, "failed to save boards to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// reportServiceStats reads the service stats endpoint and logs the
// computation counters the simulation drove up.
func reportServiceStats(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/stats"

	body, err := getJSON(ctx, client, url)
	if err != nil {
		return err
	}

	var serviceStats map[string]interface{}
	if err := unmarshalJSON(body, &serviceStats); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	logger.Get().Info(ctx, "service counters after simulation",
		logger.Any("computations", serviceStats["computations"]),
		logger.Any("computationErrors", serviceStats["computationErrors"]),
		logger.Any("batches", serviceStats["batches"]),
		logger.Any("uptimeSeconds", serviceStats["uptimeSeconds"]))
	return nil
}

// saveBoardsToFile saves the fetched boards to a JSON file.
func saveBoardsToFile(ctx context.Context, config *Config, boards []Board) error {
	if len(boards) == 0 {
		return fmt.Errorf("no boards to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "season_boards_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write boards to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, board := range boards {
		jsonData, err := marshalJSON(board)
		if err != nil {
			return fmt.Errorf("failed to marshal board %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write board %d: %w", i, err)
		}

		// Add comma except for last board
		if i < len(boards)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "boards saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var fetchRate, viewsPerSecond float64

	if stats.ViewsPlanned > 0 {
		fetchRate = float64(stats.BoardsFetched) / float64(stats.ViewsPlanned) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		viewsPerSecond = float64(stats.BoardsFetched) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("viewsPlanned", stats.ViewsPlanned),
		logger.Int("boardsFetched", stats.BoardsFetched),
		logger.Int("boardsFailed", stats.BoardsFailed),
		logger.Int("rowsFetched", stats.RowsFetched),
		logger.Int("rankChecks", stats.RankChecks),
		logger.Int("rankMismatches", stats.RankMismatches),
		logger.Int("batchViews", stats.BatchViews),
		logger.Int("batchMismatches", stats.BatchMismatches),
		logger.Int("violationsFound", stats.ViolationsFound),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("fetchRate", fetchRate),
		logger.Float64("viewsPerSecond", viewsPerSecond))
}
