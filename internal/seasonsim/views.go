package seasonsim

import (
	"context"
	"fmt"

	"github.com/fieldline/standee/pkg/logger"
)

// Game identifier constants.
const (
	gameIDPrefix = "sim-g-"
)

// enumerateViews builds the full list of standings views for the simulated
// season: one view per game and week, plus one season-to-date view per game.
// Week 0 is the season view and is requested without a week parameter.
func enumerateViews(ctx context.Context, config *Config, stats *Stats) ([]View, error) {
	logger.Get().Info(ctx, "enumerating standings views",
		logger.Int("games", config.Games),
		logger.Int("weeks", config.Weeks),
		logger.Int("season", config.Season))

	if config.Games < 1 {
		return nil, fmt.Errorf("at least one game is required, got %d", config.Games)
	}
	if config.Weeks < 1 {
		return nil, fmt.Errorf("at least one week is required, got %d", config.Weeks)
	}

	views := make([]View, 0, config.Games*(config.Weeks+1))
	for game := 1; game <= config.Games; game++ {
		gameID := fmt.Sprintf("%s%d", gameIDPrefix, game)
		for week := 1; week <= config.Weeks; week++ {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during view enumeration: %w", ctx.Err())
			default:
			}
			views = append(views, View{GameID: gameID, Season: config.Season, Week: week})
		}
		views = append(views, View{GameID: gameID, Season: config.Season, Week: 0})
	}

	stats.ViewsPlanned = len(views)
	logger.Get().Info(ctx, "enumerated views successfully", logger.Int("count", len(views)))

	return views, nil
}

// viewQuery renders the query string that addresses a view. The week
// parameter is omitted for season views.
func viewQuery(v View) string {
	query := fmt.Sprintf("game_id=%s&season=%d", v.GameID, v.Season)
	if v.Week > 0 {
		query += fmt.Sprintf("&week=%d", v.Week)
	}
	return query
}

// viewLabel renders a view for log lines, e.g. "sim-g-3/2026/w4".
func viewLabel(v View) string {
	if v.Week == 0 {
		return fmt.Sprintf("%s/%d/season", v.GameID, v.Season)
	}
	return fmt.Sprintf("%s/%d/w%d", v.GameID, v.Season, v.Week)
}
