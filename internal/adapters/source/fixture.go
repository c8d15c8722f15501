// Package source defines the upstream data source interface and errors.
package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	model "github.com/fieldline/standee/internal/domain/model"
	types "github.com/fieldline/standee/internal/domain/types"
)

// Default fixture configuration constants.
const (
	defaultMinRoster       = 8
	defaultMaxRoster       = 32
	defaultSummaryCoverage = 0.85
	defaultSeasonWeeks     = 14
	picksPerWeek           = 16
)

var fixtureFirstNames = []string{
	"Ava", "Ben", "Cora", "Dev", "Elena", "Frank", "Gia", "Hector",
	"Iris", "Jonas", "Kira", "Liam", "Mona", "Nils", "Opal", "Pete",
	"Quinn", "Rosa", "Sam", "Tessa",
}

var fixtureLastNames = []string{
	"Alvarez", "Brooks", "Chen", "Dawson", "Ellis", "Ferrara", "Grant",
	"Hale", "Ibarra", "Jensen", "Kovacs", "Lund", "Marsh", "Novak",
	"Ortega", "Price", "Reyes", "Stone", "Tran", "Ueda",
}

// Fixture implements Source with data generated deterministically from
// the request itself. The same game id always yields the same roster and
// the same view key always yields the same summaries, across calls and
// across processes, so demos and simulator runs are reproducible.
type Fixture struct {
	minRoster  int
	maxRoster  int
	coverage   float64
	minLatency time.Duration
	maxLatency time.Duration
}

// NewFixture creates a deterministic in-process source.
func NewFixture(opts ...FixtureOption) *Fixture {
	f := &Fixture{
		minRoster: defaultMinRoster,
		maxRoster: defaultMaxRoster,
		coverage:  defaultSummaryCoverage,
	}

	// Apply all options
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Participants generates the roster for a game.
func (f *Fixture) Participants(ctx context.Context, gameID string) ([]model.ParticipantRecord, error) {
	if gameID == "" {
		return nil, fmt.Errorf("%w: empty game id", ErrInvalidKey)
	}

	seed := fixtureSeed(gameID)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	if err := f.wait(ctx, r); err != nil {
		return nil, err
	}

	return f.roster(gameID), nil
}

// Summaries generates pick summaries for the roster of the keyed game.
// A portion of the roster has no summary at all, the way users who never
// picked are absent from the scoring feed.
func (f *Fixture) Summaries(ctx context.Context, key types.ViewKey) ([]model.PickSummary, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	seed := fixtureSeed(key.GameID, strconv.Itoa(key.Season), strconv.Itoa(key.Week))
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	if err := f.wait(ctx, r); err != nil {
		return nil, err
	}

	window := picksPerWeek
	if key.Week == 0 {
		window = picksPerWeek * defaultSeasonWeeks
	}

	roster := f.roster(key.GameID)
	out := make([]model.PickSummary, 0, len(roster))
	for _, p := range roster {
		if r.Float64() >= f.coverage {
			continue
		}
		total := r.IntN(window + 1)
		correct := 0
		if total > 0 {
			correct = r.IntN(total + 1)
		}
		pct := 0.0
		if total > 0 {
			pct = float64(correct) / float64(total) * 100.0
		}
		out = append(out, model.PickSummary{
			UserID:         p.UserID,
			TotalPicks:     total,
			CorrectPicks:   correct,
			PickPercentage: pct,
		})
	}
	return out, nil
}

// roster generates the stable per-game participant list. Seeded by the
// game id alone so every season and week of a game shares one roster.
func (f *Fixture) roster(gameID string) []model.ParticipantRecord {
	seed := fixtureSeed(gameID)
	r := rand.New(rand.NewPCG(seed, seed^0xd1b54a32d192ed03))

	size := f.minRoster + r.IntN(f.maxRoster-f.minRoster+1)
	out := make([]model.ParticipantRecord, 0, size)
	for i := 0; i < size; i++ {
		first := fixtureFirstNames[r.IntN(len(fixtureFirstNames))]
		last := fixtureLastNames[r.IntN(len(fixtureLastNames))]
		out = append(out, model.ParticipantRecord{
			UserID:      fmt.Sprintf("u-%06x-%02d", seed&0xffffff, i),
			FirstName:   first,
			LastName:    last,
			DisplayName: fmt.Sprintf("%s%d", strings.ToLower(first), i),
		})
	}
	return out
}

// wait simulates upstream latency when a range is configured and honors
// cancellation either way.
func (f *Fixture) wait(ctx context.Context, r *rand.Rand) error {
	if f.maxLatency <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrFetch, err)
		}
		return nil
	}

	delay := f.minLatency + time.Duration(r.Int64N(int64(f.maxLatency-f.minLatency)+1))
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrFetch, ctx.Err())
	case <-time.After(delay):
		return nil
	}
}

// fixtureSeed hashes key parts into a PRNG seed.
func fixtureSeed(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
