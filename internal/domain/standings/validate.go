// Package standings implements the standings aggregation and ranking engine.
package standings

import (
	"fmt"

	"github.com/fieldline/standee/internal/domain/model"
)

// ValidateInputs checks both record sets before the engine runs. Participant
// records must be structurally sound with unique user ids; every pick
// summary must satisfy the count and percentage invariants. Duplicate
// summaries for one user are tolerated here and resolved by Aggregate's
// first-match rule.
func ValidateInputs(participants []model.ParticipantRecord, summaries []model.PickSummary) error {
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.UserID]; dup {
			return fmt.Errorf("%w: duplicate participant user id %q", model.ErrMalformed, p.UserID)
		}
		seen[p.UserID] = struct{}{}
	}

	for _, s := range summaries {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
