package seasonsim

import (
	"context"
	"fmt"
	"log"
	"math"
)

// Display constants.
const (
	displayedLeaders = 10
)

// verifyResults checks every fetched board against the ranking contract:
// ordering, competition ranks, tie flags, percentage consistency, and
// agreement between the rows and the cohort summary.
func verifyResults(ctx context.Context, config *Config, boards []Board, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(boards) == 0 {
		return fmt.Errorf("no boards to verify")
	}

	violations := 0
	for _, board := range boards {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during verification: %w", ctx.Err())
		default:
		}

		for _, problem := range verifyBoard(board) {
			violations++
			log.Printf("⚠️  %s: %s", viewLabel(board.View), problem)
		}
	}

	stats.ViolationsFound = violations

	// Display leaders
	displayLeaders(boards, config.Verbose)

	if violations > 0 {
		return fmt.Errorf("%d contract violations across %d boards", violations, len(boards))
	}

	log.Println("✅ Result verification completed")
	return nil
}

// verifyBoard collects every contract violation on one board.
func verifyBoard(board Board) []string {
	problems := verifyRows(board.Rows)
	problems = append(problems, verifyRanking(board.Rows)...)
	problems = append(problems, verifySummary(board)...)
	return problems
}

// verifyRows checks per-row count and percentage consistency.
func verifyRows(rows []Row) []string {
	var problems []string
	for i, row := range rows {
		if row.UserID == "" {
			problems = append(problems, fmt.Sprintf("row %d has an empty user id", i))
		}
		if row.CorrectPicks < 0 || row.TotalPicks < 0 {
			problems = append(problems, fmt.Sprintf("row %d (%s) has negative counts", i, row.UserID))
		}
		if row.CorrectPicks > row.TotalPicks {
			problems = append(problems, fmt.Sprintf("row %d (%s) has correct_picks %d above total_picks %d",
				i, row.UserID, row.CorrectPicks, row.TotalPicks))
		}

		expected := 0.0
		if row.TotalPicks > 0 {
			expected = float64(row.CorrectPicks) / float64(row.TotalPicks) * PercentageMultiplier
		}
		if math.Abs(row.PickPercentage-expected) > floatTolerance {
			problems = append(problems, fmt.Sprintf("row %d (%s) has pick_percentage %.6f, counts imply %.6f",
				i, row.UserID, row.PickPercentage, expected))
		}
	}
	return problems
}

// verifyRanking checks the ordering, competition ranks, and tie flags of a
// ranked board. Ties share a rank and the next distinct row resumes at its
// 1-based position.
func verifyRanking(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}

	var problems []string
	if rows[0].Rank != 1 {
		problems = append(problems, fmt.Sprintf("first row (%s) has rank %d, want 1", rows[0].UserID, rows[0].Rank))
	}

	for i := 1; i < len(rows); i++ {
		prev, row := rows[i-1], rows[i]

		if rowBefore(row, prev) {
			problems = append(problems, fmt.Sprintf("row %d (%s) sorts ahead of row %d (%s)",
				i, row.UserID, i-1, prev.UserID))
		}

		wantRank := i + 1
		if sameRankKey(row, prev) {
			wantRank = prev.Rank
		}
		if row.Rank != wantRank {
			problems = append(problems, fmt.Sprintf("row %d (%s) has rank %d, want %d",
				i, row.UserID, row.Rank, wantRank))
		}
	}

	for i, row := range rows {
		tied := (i > 0 && sameRankKey(row, rows[i-1])) ||
			(i < len(rows)-1 && sameRankKey(row, rows[i+1]))
		if row.Tied != tied {
			problems = append(problems, fmt.Sprintf("row %d (%s) has tied=%t, want %t",
				i, row.UserID, row.Tied, tied))
		}
	}

	return problems
}

// verifySummary checks that the cohort summary agrees with the rows it
// summarizes.
func verifySummary(board Board) []string {
	var problems []string
	rows, summary := board.Rows, board.Summary

	if summary.ParticipantCount != len(rows) {
		problems = append(problems, fmt.Sprintf("summary reports %d participants, board has %d",
			summary.ParticipantCount, len(rows)))
	}

	if len(rows) == 0 {
		if summary.Leader != nil {
			problems = append(problems, "summary has a leader for an empty board")
		}
		if summary.AverageCorrectPicks != 0 {
			problems = append(problems, fmt.Sprintf("summary has average %.6f for an empty board",
				summary.AverageCorrectPicks))
		}
		return problems
	}

	switch {
	case summary.Leader == nil:
		problems = append(problems, "summary is missing the leader")
	case !rowsEqual(*summary.Leader, rows[0]):
		problems = append(problems, fmt.Sprintf("summary leader %s does not match first row %s",
			summary.Leader.UserID, rows[0].UserID))
	}

	total := 0
	for _, row := range rows {
		total += row.CorrectPicks
	}
	average := float64(total) / float64(len(rows))
	if math.Abs(summary.AverageCorrectPicks-average) > floatTolerance {
		problems = append(problems, fmt.Sprintf("summary average %.6f, rows imply %.6f",
			summary.AverageCorrectPicks, average))
	}

	return problems
}

// rowBefore reports whether a ranks strictly ahead of b: more correct
// picks, then a higher percentage, then more total picks.
func rowBefore(a, b Row) bool {
	if a.CorrectPicks != b.CorrectPicks {
		return a.CorrectPicks > b.CorrectPicks
	}
	if a.PickPercentage != b.PickPercentage {
		return a.PickPercentage > b.PickPercentage
	}
	return a.TotalPicks > b.TotalPicks
}

// sameRankKey reports whether two rows tie for a rank. Total picks breaks
// display order between them but not the rank itself.
func sameRankKey(a, b Row) bool {
	return a.CorrectPicks == b.CorrectPicks && a.PickPercentage == b.PickPercentage
}

// displayLeaders shows the leader of each view, up to a fixed count.
func displayLeaders(boards []Board, verbose bool) {
	shown := minInt(displayedLeaders, len(boards))

	log.Printf("🏆 Leaders across %d views (showing %d):", len(boards), shown)
	for i := 0; i < shown; i++ {
		board := boards[i]
		if len(board.Rows) == 0 {
			log.Printf("   %s - no participants", viewLabel(board.View))
			continue
		}
		leader := board.Rows[0]
		log.Printf("   %s - %s (%d/%d, %.1f%%)",
			viewLabel(board.View), leader.DisplayName, leader.CorrectPicks, leader.TotalPicks, leader.PickPercentage)
	}

	if verbose {
		// Show some statistics
		totalRows := 0
		totalCorrect := 0
		bestCorrect := 0
		for _, board := range boards {
			for _, row := range board.Rows {
				totalRows++
				totalCorrect += row.CorrectPicks
				if row.CorrectPicks > bestCorrect {
					bestCorrect = row.CorrectPicks
				}
			}
		}

		if totalRows > 0 {
			log.Printf(`📊 Row statistics:
   Rows: %d
   Average correct: %.3f
   Best correct: %d
`, totalRows, float64(totalCorrect)/float64(totalRows), bestCorrect)
		}
	}
}
