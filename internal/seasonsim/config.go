package seasonsim

import "time"

// Config holds configuration for the season simulation
type Config struct {
	BaseURL    string        // Base URL of the service
	Games      int           // Number of games to simulate
	Season     int           // Season year for every view
	Weeks      int           // Number of weekly views per game
	Checks     int           // Rank spot checks per standings view
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for fetched standings
	LogFile    string        // Log file for simulation output
	Verbose    bool          // Enable verbose logging
}

// View identifies one standings view to request
type View struct {
	GameID string `json:"game_id"`
	Season int    `json:"season"`
	Week   int    `json:"week,omitempty"`
}

// Row represents one ranked standings entry
type Row struct {
	UserID         string  `json:"user_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	DisplayName    string  `json:"display_name"`
	TotalPicks     int     `json:"total_picks"`
	CorrectPicks   int     `json:"correct_picks"`
	PickPercentage float64 `json:"pick_percentage"`
	Rank           int     `json:"rank"`
	Tied           bool    `json:"tied"`
}

// Summary represents the cohort statistics for one view
type Summary struct {
	Leader              *Row    `json:"leader,omitempty"`
	AverageCorrectPicks float64 `json:"average_correct_picks"`
	ParticipantCount    int     `json:"participant_count"`
}

// Board bundles everything fetched for one view
type Board struct {
	View    View    `json:"view"`
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
}

// BatchRequest represents the batch request body
type BatchRequest struct {
	Views []View `json:"views"`
}

// BatchResult represents one entry of the batch response
type BatchResult struct {
	View      View     `json:"view"`
	Standings []Row    `json:"standings,omitempty"`
	Summary   *Summary `json:"summary,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// BatchEnvelope represents the full batch response
type BatchEnvelope struct {
	Results []BatchResult `json:"results"`
}

// Stats holds simulation statistics
type Stats struct {
	ViewsPlanned    int
	BoardsFetched   int
	BoardsFailed    int
	RowsFetched     int
	RankChecks      int
	RankMismatches  int
	BatchViews      int
	BatchMismatches int
	BatchFailed     int
	ViolationsFound int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
