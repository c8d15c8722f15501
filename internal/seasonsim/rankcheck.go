package seasonsim

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// rankCheck pairs a fetched board row with the view it came from.
type rankCheck struct {
	view View
	want Row
}

// spotCheckRanks re-requests individual rows through the rank endpoint and
// compares them against the fetched boards. Checks run concurrently.
func spotCheckRanks(ctx context.Context, config *Config, boards []Board, stats *Stats) error {
	checks := buildRankChecks(boards, config.Checks)
	if len(checks) == 0 {
		log.Println("🏅 No rows to spot check, skipping")
		return nil
	}

	log.Printf("🏅 Spot checking %d ranks with %d workers...", len(checks), config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		checked    int64
		mismatched int64
	)

	// Progress reporting
	var lastReportNanos int64
	reportInterval := 1 * time.Second

	// Create worker pool
	checkChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for index := range checkChan {
				select {
				case <-ctx.Done():
					return
				default:
					check := checks[index]
					got, err := fetchSingleRank(ctx, client, config.BaseURL, check.view, check.want.UserID)

					atomic.AddInt64(&checked, 1)
					switch {
					case err != nil:
						atomic.AddInt64(&mismatched, 1)
						if config.Verbose {
							log.Printf("⚠️  Rank lookup failed for %s in %s: %v",
								check.want.UserID, viewLabel(check.view), err)
						}
					case !rowsEqual(got, check.want):
						atomic.AddInt64(&mismatched, 1)
						log.Printf("⚠️  Rank mismatch for %s in %s: board rank %d, endpoint rank %d",
							check.want.UserID, viewLabel(check.view), check.want.Rank, got.Rank)
					}

					// Progress reporting
					now := time.Now().UnixNano()
					last := atomic.LoadInt64(&lastReportNanos)
					if now-last >= int64(reportInterval) && atomic.CompareAndSwapInt64(&lastReportNanos, last, now) {
						total := atomic.LoadInt64(&checked)
						bad := atomic.LoadInt64(&mismatched)

						if config.Verbose {
							log.Printf("📊 Spot check progress: %d/%d checks (mismatched: %d)",
								total, len(checks), bad)
						} else {
							fmt.Printf("\r🏅 Checked: %d/%d ranks (mismatched: %d)",
								total, len(checks), bad)
						}
					}
				}
			}
		}(i)
	}

	// Send check indices to workers
	go func() {
		defer close(checkChan)
		for i := range checks {
			select {
			case <-ctx.Done():
				return
			case checkChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.RankChecks = int(atomic.LoadInt64(&checked))
	stats.RankMismatches = int(atomic.LoadInt64(&mismatched))

	log.Printf(`✅ Rank spot check completed:
   Checked: %d
   Mismatched: %d
`, stats.RankChecks, stats.RankMismatches)

	if stats.RankMismatches > 0 {
		return fmt.Errorf("%d of %d rank spot checks disagreed with the boards", stats.RankMismatches, stats.RankChecks)
	}
	return nil
}

// buildRankChecks samples up to perBoard rows from each board, spread
// evenly so the first, middle, and last ranks are all covered.
func buildRankChecks(boards []Board, perBoard int) []rankCheck {
	checks := make([]rankCheck, 0, len(boards)*perBoard)
	for _, board := range boards {
		if len(board.Rows) == 0 || perBoard < 1 {
			continue
		}

		sample := minInt(perBoard, len(board.Rows))
		for i := 0; i < sample; i++ {
			index := i * (len(board.Rows) - 1) / maxInt(sample-1, 1)
			checks = append(checks, rankCheck{view: board.View, want: board.Rows[index]})
		}
	}
	return checks
}

// fetchSingleRank retrieves one user's standing through the rank endpoint.
func fetchSingleRank(ctx context.Context, client *HTTPClient, baseURL string, view View, userID string) (Row, error) {
	url := fmt.Sprintf("%s/standings/rank?%s&user_id=%s", baseURL, viewQuery(view), userID)

	body, err := getJSON(ctx, client, url)
	if err != nil {
		return Row{}, err
	}

	var row Row
	if err := unmarshalJSON(body, &row); err != nil {
		return Row{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return row, nil
}

// rowsEqual reports whether two rows agree on identity, counts, and rank.
func rowsEqual(a, b Row) bool {
	return a.UserID == b.UserID &&
		a.TotalPicks == b.TotalPicks &&
		a.CorrectPicks == b.CorrectPicks &&
		a.PickPercentage == b.PickPercentage &&
		a.Rank == b.Rank &&
		a.Tied == b.Tied
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// maxInt returns the maximum of two integers.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
