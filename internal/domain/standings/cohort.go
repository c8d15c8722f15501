// Package standings implements the standings aggregation and ranking engine.
package standings

import (
	"github.com/fieldline/standee/internal/domain/types"
)

// Cohort derives the summary statistics for a ranked list: the rank-1
// leader (absent for an empty cohort), the mean of correct picks, and the
// participant count. The leader is a copy; mutating it cannot reach the
// ranked list.
func Cohort(ranked []types.PlayerStanding) types.CohortStatistics {
	stats := types.CohortStatistics{
		ParticipantCount: len(ranked),
	}
	if len(ranked) == 0 {
		return stats
	}

	leader := ranked[0]
	stats.Leader = &leader

	total := 0
	for _, s := range ranked {
		total += s.CorrectPicks
	}
	stats.AverageCorrectPicks = float64(total) / float64(len(ranked))
	return stats
}

// FindUser returns the standing for userID within a ranked list.
func FindUser(ranked []types.PlayerStanding, userID string) (types.PlayerStanding, error) {
	for _, s := range ranked {
		if s.UserID == userID {
			return s, nil
		}
	}
	return types.PlayerStanding{}, ErrUserNotFound
}
