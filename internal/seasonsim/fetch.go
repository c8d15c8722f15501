package seasonsim

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// fetchBoards retrieves standings and summaries for all views concurrently.
func fetchBoards(ctx context.Context, config *Config, views []View, stats *Stats) ([]Board, error) {
	log.Printf("📥 Fetching %d standings views with %d workers...", len(views), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage
	boards := make([]Board, len(views))
	var (
		fetched int64
		failed  int64
	)

	// Progress reporting
	var lastReportNanos int64
	reportInterval := 1 * time.Second

	// Create worker pool
	viewChan := make(chan int, config.Workers*WorkerChannelMultiplier) // Send indices instead of views
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for index := range viewChan {
				select {
				case <-ctx.Done():
					return
				default:
					view := views[index]
					board, err := fetchSingleBoard(ctx, client, config.BaseURL, view)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to fetch %s: %v", viewLabel(view), err)
						}
					} else {
						boards[index] = board
						atomic.AddInt64(&fetched, 1)
					}

					// Progress reporting
					now := time.Now().UnixNano()
					last := atomic.LoadInt64(&lastReportNanos)
					if now-last >= int64(reportInterval) && atomic.CompareAndSwapInt64(&lastReportNanos, last, now) {
						total := atomic.LoadInt64(&fetched) + atomic.LoadInt64(&failed)
						ok := atomic.LoadInt64(&fetched)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Fetch progress: %d/%d views (success: %d, failed: %d)",
								total, len(views), ok, fail)
						} else {
							fmt.Printf("\r📥 Fetched: %d/%d views (success: %d, failed: %d)",
								total, len(views), ok, fail)
						}
					}
				}
			}
		}(i)
	}

	// Send view indices to workers
	go func() {
		defer close(viewChan)
		for i := range views {
			select {
			case <-ctx.Done():
				return
			case viewChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Filter out empty boards (failed fetches)
	validBoards := make([]Board, 0, len(boards))
	rows := 0
	for _, board := range boards {
		if board.View.GameID != "" { // Empty game id indicates failed fetch
			validBoards = append(validBoards, board)
			rows += len(board.Rows)
		}
	}

	// Update stats
	stats.BoardsFetched = len(validBoards)
	stats.BoardsFailed = int(atomic.LoadInt64(&failed))
	stats.RowsFetched = rows

	log.Printf(`✅ Board fetch completed:
   Fetched: %d
   Failed: %d
   Rows: %d
`, len(validBoards), stats.BoardsFailed, rows)

	return validBoards, nil
}

// fetchSingleBoard retrieves the standings and summary for a single view.
func fetchSingleBoard(ctx context.Context, client *HTTPClient, baseURL string, view View) (Board, error) {
	rows, err := fetchStandings(ctx, client, baseURL, view)
	if err != nil {
		return Board{}, fmt.Errorf("standings: %w", err)
	}

	summary, err := fetchSummary(ctx, client, baseURL, view)
	if err != nil {
		return Board{}, fmt.Errorf("summary: %w", err)
	}

	return Board{View: view, Rows: rows, Summary: summary}, nil
}

// fetchStandings retrieves the ranked rows for a single view.
func fetchStandings(ctx context.Context, client *HTTPClient, baseURL string, view View) ([]Row, error) {
	url := fmt.Sprintf("%s/standings?%s", baseURL, viewQuery(view))

	body, err := getJSON(ctx, client, url)
	if err != nil {
		return nil, err
	}

	var rows []Row
	if err := unmarshalJSON(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return rows, nil
}

// fetchSummary retrieves the cohort statistics for a single view.
func fetchSummary(ctx context.Context, client *HTTPClient, baseURL string, view View) (Summary, error) {
	url := fmt.Sprintf("%s/standings/summary?%s", baseURL, viewQuery(view))

	body, err := getJSON(ctx, client, url)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	if err := unmarshalJSON(body, &summary); err != nil {
		return Summary{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return summary, nil
}

// getJSON performs a GET request and returns the body of a 200 response.
func getJSON(ctx context.Context, client *HTTPClient, url string) ([]byte, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}
