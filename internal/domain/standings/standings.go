// Package standings implements the standings aggregation and ranking engine.
//
// The engine is pure: it performs no I/O, holds no state between calls, and
// never mutates its inputs. Computations for different views can run
// concurrently without coordination.
package standings

import (
	"github.com/fieldline/standee/internal/domain/model"
	"github.com/fieldline/standee/internal/domain/types"
)

// Aggregate merges the participant roster with the pick summaries into one
// PlayerStanding per participant. A participant without a matching summary
// is included with zero picks; a participant who has not yet picked must
// appear in standings, not be silently dropped. When the summary source
// violates its at-most-one-per-user contract, the first match wins.
//
// The result is unranked; order is unspecified until Rank runs.
func Aggregate(participants []model.ParticipantRecord, summaries []model.PickSummary) []types.PlayerStanding {
	byUser := make(map[string]model.PickSummary, len(summaries))
	for _, s := range summaries {
		if _, ok := byUser[s.UserID]; !ok {
			byUser[s.UserID] = s
		}
	}

	out := make([]types.PlayerStanding, 0, len(participants))
	for _, p := range participants {
		standing := types.PlayerStanding{
			UserID:      p.UserID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DisplayName: p.DisplayName,
		}
		if s, ok := byUser[p.UserID]; ok {
			standing.TotalPicks = s.TotalPicks
			standing.CorrectPicks = s.CorrectPicks
			standing.PickPercentage = s.PickPercentage
		}
		out = append(out, standing)
	}
	return out
}

// Compute runs the full pipeline: boundary validation, aggregation, ranking
// and cohort statistics. Zero participants is not an error; it yields an
// empty, trivially ranked list and a cohort summary with no leader.
func Compute(participants []model.ParticipantRecord, summaries []model.PickSummary) ([]types.PlayerStanding, types.CohortStatistics, error) {
	if err := ValidateInputs(participants, summaries); err != nil {
		return nil, types.CohortStatistics{}, err
	}
	ranked := Rank(Aggregate(participants, summaries))
	return ranked, Cohort(ranked), nil
}
