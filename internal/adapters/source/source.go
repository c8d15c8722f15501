// Package source defines the upstream data source interface and errors.
package source

import (
	"context"
	"fmt"

	model "github.com/fieldline/standee/internal/domain/model"
	types "github.com/fieldline/standee/internal/domain/types"
)

// Source provides the two upstream feeds a standings computation needs:
// the game roster from the membership subsystem and per-user pick
// summaries from the scoring subsystem.
type Source interface {
	// Participants returns the roster of the game identified by gameID.
	// The roster is a property of the game alone; it does not vary with
	// season or week.
	Participants(ctx context.Context, gameID string) ([]model.ParticipantRecord, error)

	// Summaries returns season-to-date pick summaries for the view key.
	// A week on the key narrows the summary window to that week.
	// Users without picks may be absent from the result entirely.
	Summaries(ctx context.Context, key types.ViewKey) ([]model.PickSummary, error)
}

// validateKey rejects keys no upstream could answer.
func validateKey(key types.ViewKey) error {
	if key.GameID == "" {
		return fmt.Errorf("%w: empty game id", ErrInvalidKey)
	}
	if key.Season <= 0 {
		return fmt.Errorf("%w: season %d", ErrInvalidKey, key.Season)
	}
	if key.Week < 0 {
		return fmt.Errorf("%w: week %d", ErrInvalidKey, key.Week)
	}
	return nil
}
