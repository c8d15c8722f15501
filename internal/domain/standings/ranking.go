// Package standings implements the standings aggregation and ranking engine.
package standings

import (
	"sort"

	"github.com/fieldline/standee/internal/domain/types"
)

// Rank returns a new slice ordered by the comparison key with rank and tied
// populated on every element. The input is left untouched; any rank or tied
// values already present on it are ignored and recomputed.
func Rank(list []types.PlayerStanding) []types.PlayerStanding {
	out := make([]types.PlayerStanding, len(list))
	copy(out, list)

	// Stable keeps input order for records equal on all three keys; such
	// records are tied, so relative order between them cannot affect ranks.
	sort.SliceStable(out, func(i, j int) bool {
		return keyLess(out[i], out[j])
	})

	assignRanks(out)
	return out
}

// keyLess reports whether a ranks strictly ahead of b.
// Priority: correct picks, then pick percentage, then total picks, all
// descending. The percentage breaks correct-pick ties so that a player with
// fewer picks but a higher hit rate ranks ahead; total picks rewards
// participation when both are equal.
func keyLess(a, b types.PlayerStanding) bool {
	if a.CorrectPicks != b.CorrectPicks {
		return a.CorrectPicks > b.CorrectPicks
	}
	if a.PickPercentage != b.PickPercentage {
		return a.PickPercentage > b.PickPercentage
	}
	return a.TotalPicks > b.TotalPicks
}

// assignRanks walks a sorted list and assigns competition ranks: tied
// entries share a rank and the next distinct entry gets its 1-based
// position, skipping positions consumed by the tie. Two entries are tied
// when correct picks and pick percentage both match; total picks separates
// order among such entries without constituting a tie.
//
// Tie marking is pairwise against the predecessor and relies on tied
// entries being contiguous, which the sort in Rank guarantees.
func assignRanks(list []types.PlayerStanding) {
	if len(list) == 0 {
		return
	}

	for i := range list {
		list[i].Tied = false
	}

	list[0].Rank = 1
	for i := 1; i < len(list); i++ {
		if list[i].CorrectPicks == list[i-1].CorrectPicks &&
			list[i].PickPercentage == list[i-1].PickPercentage {
			list[i].Rank = list[i-1].Rank
			list[i].Tied = true
			list[i-1].Tied = true
			continue
		}
		list[i].Rank = i + 1
	}
}
