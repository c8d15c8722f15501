// Package types contains the engine-owned types shared across the application.
package types

import "fmt"

// PlayerStanding is one ranked row of a standings view.
type PlayerStanding struct {
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

// CohortStatistics summarizes a completed standings view.
// Leader is nil when the view has no participants.
type CohortStatistics struct {
	Leader              *PlayerStanding `json:"leader,omitempty"`
	AverageCorrectPicks float64         `json:"average_correct_picks"`
	ParticipantCount    int             `json:"participant_count"`
}

// ViewKey identifies one standings view. Week 0 means season to date.
type ViewKey struct {
	GameID string `json:"game_id"`
	Season int    `json:"season"`
	Week   int    `json:"week,omitempty"`
}

// String renders the key for logs, e.g. "g-12/2025/w3" or "g-12/2025/season".
func (k ViewKey) String() string {
	if k.Week == 0 {
		return fmt.Sprintf("%s/%d/season", k.GameID, k.Season)
	}
	return fmt.Sprintf("%s/%d/w%d", k.GameID, k.Season, k.Week)
}
