package seasonsim

import (
	"context"
	"fmt"
	"log"
)

// compareBatches replays the fetched views through the batch endpoint in
// chunks and compares every result against the individually fetched board.
// Results must come back in request order with identical rows and summary.
func compareBatches(ctx context.Context, config *Config, boards []Board, stats *Stats) error {
	if len(boards) == 0 {
		log.Println("📦 No boards to replay, skipping batch comparison")
		return nil
	}

	log.Printf("📦 Replaying %d views through the batch endpoint in chunks of %d...", len(boards), batchChunkSize)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/standings/batch"

	var (
		compared   int
		mismatched int
		failed     int
	)

	for start := 0; start < len(boards); start += batchChunkSize {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during batch comparison: %w", ctx.Err())
		default:
		}

		end := minInt(start+batchChunkSize, len(boards))
		chunk := boards[start:end]

		results, err := postBatch(ctx, client, url, chunk)
		if err != nil {
			failed += len(chunk)
			log.Printf("⚠️  Batch request for views %d..%d failed: %v", start, end-1, err)
			continue
		}

		if len(results) != len(chunk) {
			failed += len(chunk)
			log.Printf("⚠️  Batch returned %d results for %d views", len(results), len(chunk))
			continue
		}

		for i, result := range results {
			compared++
			board := chunk[i]

			if diff := diffBatchResult(board, result); diff != "" {
				mismatched++
				log.Printf("⚠️  Batch mismatch for %s: %s", viewLabel(board.View), diff)
			}
		}
	}

	// Update stats
	stats.BatchViews = compared
	stats.BatchMismatches = mismatched
	stats.BatchFailed = failed

	log.Printf(`✅ Batch comparison completed:
   Compared: %d
   Mismatched: %d
   Failed: %d
`, compared, mismatched, failed)

	if mismatched > 0 || failed > 0 {
		return fmt.Errorf("batch endpoint disagreed on %d views (%d requests failed)", mismatched, failed)
	}
	return nil
}

// postBatch submits one chunk of views and returns the parsed results.
func postBatch(ctx context.Context, client *HTTPClient, url string, chunk []Board) ([]BatchResult, error) {
	views := make([]View, len(chunk))
	for i, board := range chunk {
		views[i] = board.View
	}

	resp, err := client.Post(ctx, url, BatchRequest{Views: views})
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

	var envelope BatchEnvelope
	if err := unmarshalJSON(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return envelope.Results, nil
}

// diffBatchResult compares one batch result against the board fetched for
// the same view. An empty string means they agree.
func diffBatchResult(board Board, result BatchResult) string {
	if result.View != board.View {
		return fmt.Sprintf("view %s out of order", viewLabel(result.View))
	}
	if result.Error != "" {
		return fmt.Sprintf("batch error %q", result.Error)
	}
	if len(result.Standings) != len(board.Rows) {
		return fmt.Sprintf("row count %d, board has %d", len(result.Standings), len(board.Rows))
	}
	for i, row := range result.Standings {
		if !rowsEqual(row, board.Rows[i]) {
			return fmt.Sprintf("row %d (%s) differs from board", i, row.UserID)
		}
	}
	if result.Summary == nil {
		return "missing summary"
	}
	if !summariesEqual(*result.Summary, board.Summary) {
		return "summary differs from board"
	}
	return ""
}

// summariesEqual reports whether two cohort summaries agree.
func summariesEqual(a, b Summary) bool {
	if a.ParticipantCount != b.ParticipantCount {
		return false
	}
	if a.AverageCorrectPicks != b.AverageCorrectPicks {
		return false
	}
	if (a.Leader == nil) != (b.Leader == nil) {
		return false
	}
	if a.Leader != nil && !rowsEqual(*a.Leader, *b.Leader) {
		return false
	}
	return true
}
