// Package model contains the external record contracts consumed by the engine.
package model

import "fmt"

// ParticipantRecord identifies one player in a game.
// Fields mirror the game-membership payload for participants-for-game.
type ParticipantRecord struct {
	UserID      string // stable identifier, unique per game
	FirstName   string
	LastName    string
	DisplayName string
}

// Validate reports whether the record is structurally usable.
func (p ParticipantRecord) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("%w: participant with empty user id", ErrMalformed)
	}
	return nil
}

// PickSummary carries one user's pick accuracy for a (game, season) pair,
// aggregated across all weeks up to and including the requested week.
// Fields mirror the pick-scoring payload for picks-summary-for-game-and-season.
type PickSummary struct {
	UserID         string
	TotalPicks     int
	CorrectPicks   int
	PickPercentage float64 // correct/total x 100, 0 when total is 0
}

// Validate enforces the count and percentage invariants. Violations are
// rejected rather than clamped; clamping would corrupt ranking order
// invisibly.
func (s PickSummary) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("%w: pick summary with empty user id", ErrMalformed)
	}
	if s.TotalPicks < 0 {
		return fmt.Errorf("%w: user %s has negative total_picks %d", ErrInvariant, s.UserID, s.TotalPicks)
	}
	if s.CorrectPicks < 0 {
		return fmt.Errorf("%w: user %s has negative correct_picks %d", ErrInvariant, s.UserID, s.CorrectPicks)
	}
	if s.CorrectPicks > s.TotalPicks {
		return fmt.Errorf("%w: user %s has correct_picks %d exceeding total_picks %d",
			ErrInvariant, s.UserID, s.CorrectPicks, s.TotalPicks)
	}
	if s.PickPercentage < 0 || s.PickPercentage > 100 {
		return fmt.Errorf("%w: user %s has pick_percentage %.3f outside [0,100]",
			ErrInvariant, s.UserID, s.PickPercentage)
	}
	return nil
}
