package seasonsim

import (
	"context"
	"strings"
	"testing"

	"github.com/fieldline/standee/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func simRow(userID string, correct, total, rank int, tied bool) Row {
	pct := 0.0
	if total > 0 {
		pct = float64(correct) / float64(total) * 100
	}
	return Row{
		UserID:         userID,
		DisplayName:    userID,
		TotalPicks:     total,
		CorrectPicks:   correct,
		PickPercentage: pct,
		Rank:           rank,
		Tied:           tied,
	}
}

func rankedBoard() Board {
	rows := []Row{
		simRow("u-1", 9, 10, 1, false),
		simRow("u-2", 8, 10, 2, true),
		simRow("u-3", 8, 10, 2, true),
		simRow("u-4", 5, 10, 4, false),
	}
	return Board{
		View: View{GameID: "sim-g-1", Season: 2026, Week: 3},
		Rows: rows,
		Summary: Summary{
			Leader:              &rows[0],
			AverageCorrectPicks: 7.5,
			ParticipantCount:    4,
		},
	}
}

func TestVerifyBoardCleanBoard(t *testing.T) {
	if problems := verifyBoard(rankedBoard()); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestVerifyBoardEmptyBoard(t *testing.T) {
	board := Board{View: View{GameID: "sim-g-1", Season: 2026}}
	if problems := verifyBoard(board); len(problems) != 0 {
		t.Errorf("expected empty board to pass, got %v", problems)
	}
}

func TestVerifyRankingViolations(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Board)
		want   string
	}{
		"first rank not one": {
			mutate: func(b *Board) { b.Rows[0].Rank = 2 },
			want:   "want 1",
		},
		"tie does not share rank": {
			mutate: func(b *Board) { b.Rows[2].Rank = 3 },
			want:   "has rank 3, want 2",
		},
		"rank does not resume at position": {
			mutate: func(b *Board) { b.Rows[3].Rank = 3 },
			want:   "has rank 3, want 4",
		},
		"tied flag missing": {
			mutate: func(b *Board) { b.Rows[1].Tied = false },
			want:   "tied=false, want true",
		},
		"tied flag on untied row": {
			mutate: func(b *Board) { b.Rows[3].Tied = true },
			want:   "tied=true, want false",
		},
		"rows out of order": {
			mutate: func(b *Board) { b.Rows[0], b.Rows[3] = b.Rows[3], b.Rows[0] },
			want:   "sorts ahead of",
		},
	}

	for name, tc := range cases {
		board := rankedBoard()
		tc.mutate(&board)

		problems := verifyRanking(board.Rows)
		if len(problems) == 0 {
			t.Errorf("%s: expected a violation", name)
			continue
		}
		if !containsSubstring(problems, tc.want) {
			t.Errorf("%s: no problem mentions %q: %v", name, tc.want, problems)
		}
	}
}

func TestVerifyRankingPercentageBreaksTie(t *testing.T) {
	// Same correct picks but different percentages is a rank boundary,
	// not a tie.
	rows := []Row{
		simRow("u-1", 6, 8, 1, false),
		simRow("u-2", 6, 10, 2, false),
	}
	if problems := verifyRanking(rows); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestVerifyRowsViolations(t *testing.T) {
	rows := []Row{simRow("u-1", 3, 10, 1, false)}
	rows[0].PickPercentage = 35.0
	problems := verifyRows(rows)
	if !containsSubstring(problems, "counts imply") {
		t.Errorf("expected a percentage problem, got %v", problems)
	}

	rows = []Row{simRow("u-1", 11, 10, 1, false)}
	problems = verifyRows(rows)
	if !containsSubstring(problems, "above total_picks") {
		t.Errorf("expected a count problem, got %v", problems)
	}

	rows = []Row{simRow("", 2, 4, 1, false)}
	problems = verifyRows(rows)
	if !containsSubstring(problems, "empty user id") {
		t.Errorf("expected an identity problem, got %v", problems)
	}
}

func TestVerifySummaryViolations(t *testing.T) {
	board := rankedBoard()
	board.Summary.ParticipantCount = 3
	if problems := verifySummary(board); !containsSubstring(problems, "participants") {
		t.Errorf("expected a count problem, got %v", problems)
	}

	board = rankedBoard()
	board.Summary.Leader = nil
	if problems := verifySummary(board); !containsSubstring(problems, "missing the leader") {
		t.Errorf("expected a leader problem, got %v", problems)
	}

	board = rankedBoard()
	wrong := simRow("u-2", 8, 10, 2, true)
	board.Summary.Leader = &wrong
	if problems := verifySummary(board); !containsSubstring(problems, "does not match first row") {
		t.Errorf("expected a leader mismatch, got %v", problems)
	}

	board = rankedBoard()
	board.Summary.AverageCorrectPicks = 6.0
	if problems := verifySummary(board); !containsSubstring(problems, "rows imply") {
		t.Errorf("expected an average problem, got %v", problems)
	}

	board = Board{View: View{GameID: "sim-g-1", Season: 2026}}
	leader := simRow("u-1", 1, 2, 1, false)
	board.Summary.Leader = &leader
	if problems := verifySummary(board); !containsSubstring(problems, "empty board") {
		t.Errorf("expected an empty-board problem, got %v", problems)
	}
}

func TestVerifyResultsReportsViolations(t *testing.T) {
	ctx := context.Background()
	config := &Config{}
	stats := &Stats{}

	clean := rankedBoard()
	if err := verifyResults(ctx, config, []Board{clean}, stats); err != nil {
		t.Errorf("expected clean board to verify, got %v", err)
	}

	broken := rankedBoard()
	broken.Rows[0].Rank = 7
	stats = &Stats{}
	err := verifyResults(ctx, config, []Board{broken}, stats)
	if err == nil {
		t.Fatal("expected verification to fail")
	}
	if stats.ViolationsFound == 0 {
		t.Error("expected violations to be counted")
	}

	if err := verifyResults(ctx, config, nil, stats); err == nil {
		t.Error("expected an error for zero boards")
	}
}

func TestBuildRankChecksSpreadsSamples(t *testing.T) {
	rows := make([]Row, 9)
	for i := range rows {
		rows[i] = simRow("u-"+string(rune('a'+i)), 9-i, 10, i+1, false)
	}
	board := Board{View: View{GameID: "sim-g-1", Season: 2026, Week: 1}, Rows: rows}

	checks := buildRankChecks([]Board{board}, 3)
	if len(checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(checks))
	}
	if checks[0].want.UserID != rows[0].UserID {
		t.Errorf("expected first check on the leader, got %s", checks[0].want.UserID)
	}
	if checks[2].want.UserID != rows[8].UserID {
		t.Errorf("expected last check on the final row, got %s", checks[2].want.UserID)
	}
}

func TestBuildRankChecksSmallBoards(t *testing.T) {
	single := Board{
		View: View{GameID: "sim-g-1", Season: 2026, Week: 1},
		Rows: []Row{simRow("u-1", 4, 8, 1, false)},
	}
	empty := Board{View: View{GameID: "sim-g-2", Season: 2026, Week: 1}}

	checks := buildRankChecks([]Board{single, empty}, 5)
	if len(checks) != 1 {
		t.Fatalf("expected 1 check, got %d", len(checks))
	}
	if checks[0].view.GameID != "sim-g-1" {
		t.Errorf("expected the check to target the populated board, got %s", checks[0].view.GameID)
	}

	if checks := buildRankChecks([]Board{single}, 0); len(checks) != 0 {
		t.Errorf("expected no checks for a zero budget, got %d", len(checks))
	}
}

func TestDiffBatchResult(t *testing.T) {
	board := rankedBoard()

	match := BatchResult{
		View:      board.View,
		Standings: board.Rows,
		Summary:   &board.Summary,
	}
	if diff := diffBatchResult(board, match); diff != "" {
		t.Errorf("expected agreement, got %q", diff)
	}

	wrongView := match
	wrongView.View = View{GameID: "sim-g-9", Season: 2026, Week: 3}
	if diff := diffBatchResult(board, wrongView); !strings.Contains(diff, "out of order") {
		t.Errorf("expected an order diff, got %q", diff)
	}

	withError := match
	withError.Error = "upstream fetch failed"
	if diff := diffBatchResult(board, withError); !strings.Contains(diff, "batch error") {
		t.Errorf("expected an error diff, got %q", diff)
	}

	fewerRows := match
	fewerRows.Standings = board.Rows[:2]
	if diff := diffBatchResult(board, fewerRows); !strings.Contains(diff, "row count") {
		t.Errorf("expected a count diff, got %q", diff)
	}

	changedRow := match
	changedRow.Standings = append([]Row(nil), board.Rows...)
	changedRow.Standings[1].CorrectPicks = 7
	if diff := diffBatchResult(board, changedRow); !strings.Contains(diff, "differs from board") {
		t.Errorf("expected a row diff, got %q", diff)
	}

	noSummary := match
	noSummary.Summary = nil
	if diff := diffBatchResult(board, noSummary); !strings.Contains(diff, "missing summary") {
		t.Errorf("expected a summary diff, got %q", diff)
	}

	changedSummary := match
	other := board.Summary
	other.AverageCorrectPicks = 1.0
	changedSummary.Summary = &other
	if diff := diffBatchResult(board, changedSummary); !strings.Contains(diff, "summary differs") {
		t.Errorf("expected a summary diff, got %q", diff)
	}
}

func TestEnumerateViews(t *testing.T) {
	ctx := context.Background()
	config := &Config{Games: 2, Season: 2026, Weeks: 3}
	stats := &Stats{}

	views, err := enumerateViews(ctx, config, stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Three weekly views plus one season view per game
	if len(views) != 8 {
		t.Fatalf("expected 8 views, got %d", len(views))
	}
	if stats.ViewsPlanned != 8 {
		t.Errorf("expected 8 planned views, got %d", stats.ViewsPlanned)
	}

	seasonViews := 0
	for _, v := range views {
		if v.Season != 2026 {
			t.Errorf("unexpected season %d", v.Season)
		}
		if v.Week == 0 {
			seasonViews++
		}
	}
	if seasonViews != 2 {
		t.Errorf("expected one season view per game, got %d", seasonViews)
	}

	if _, err := enumerateViews(ctx, &Config{Games: 0, Season: 2026, Weeks: 3}, &Stats{}); err == nil {
		t.Error("expected an error for zero games")
	}
	if _, err := enumerateViews(ctx, &Config{Games: 1, Season: 2026, Weeks: 0}, &Stats{}); err == nil {
		t.Error("expected an error for zero weeks")
	}
}

func TestViewQueryAndLabel(t *testing.T) {
	weekly := View{GameID: "sim-g-4", Season: 2026, Week: 5}
	if got := viewQuery(weekly); got != "game_id=sim-g-4&season=2026&week=5" {
		t.Errorf("unexpected query %q", got)
	}
	if got := viewLabel(weekly); got != "sim-g-4/2026/w5" {
		t.Errorf("unexpected label %q", got)
	}

	season := View{GameID: "sim-g-4", Season: 2026}
	if got := viewQuery(season); got != "game_id=sim-g-4&season=2026" {
		t.Errorf("unexpected query %q", got)
	}
	if got := viewLabel(season); got != "sim-g-4/2026/season" {
		t.Errorf("unexpected label %q", got)
	}
}

func containsSubstring(problems []string, want string) bool {
	for _, p := range problems {
		if strings.Contains(p, want) {
			return true
		}
	}
	return false
}
