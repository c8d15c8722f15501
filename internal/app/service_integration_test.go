package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fieldline/standee/internal/adapters/source"
	"github.com/fieldline/standee/internal/app"
	"github.com/fieldline/standee/internal/domain/standings"
	"github.com/fieldline/standee/internal/domain/types"
	"github.com/fieldline/standee/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by the fixture source", t, func() {
		svc := app.New(
			app.WithSource(source.NewFixture()),
			app.WithSourceMode("fixture"),
			app.WithWorkerCount(4),
			app.WithQueueSize(64),
			app.WithBatchMaxViews(8),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)

		key := types.ViewKey{GameID: "game-1", Season: 2025, Week: 3}

		Convey("When computing standings for a view", func() {
			ranked, err := svc.Standings(ctx, key)
			So(err, ShouldBeNil)
			So(len(ranked), ShouldBeGreaterThan, 0)

			Convey("Then ranks are monotone and start at one", func() {
				So(ranked[0].Rank, ShouldEqual, 1)
				for i := 1; i < len(ranked); i++ {
					So(ranked[i].Rank, ShouldBeGreaterThanOrEqualTo, ranked[i-1].Rank)
					So(ranked[i].Rank, ShouldBeLessThanOrEqualTo, i+1)
				}
			})

			Convey("And the response is a fixed point of the ranking engine", func() {
				So(standings.Rank(ranked), ShouldResemble, ranked)
			})

			Convey("And repeating the computation yields identical data", func() {
				again, aerr := svc.Standings(ctx, key)
				So(aerr, ShouldBeNil)
				So(again, ShouldResemble, ranked)
			})

			Convey("And the cohort statistics agree with the list", func() {
				stats, serr := svc.Cohort(ctx, key)
				So(serr, ShouldBeNil)
				So(stats.ParticipantCount, ShouldEqual, len(ranked))
				So(stats.Leader, ShouldNotBeNil)
				So(*stats.Leader, ShouldResemble, ranked[0])

				var total int
				for _, s := range ranked {
					total += s.CorrectPicks
				}
				So(stats.AverageCorrectPicks, ShouldAlmostEqual, float64(total)/float64(len(ranked)))
			})

			Convey("And listed players resolve through the rank lookup", func() {
				for _, want := range ranked[:3] {
					got, gerr := svc.PlayerRank(ctx, key, want.UserID)
					So(gerr, ShouldBeNil)
					So(got, ShouldResemble, want)
				}
			})
		})

		Convey("When submitting a mixed batch", func() {
			keys := []types.ViewKey{
				{GameID: "game-1", Season: 2025, Week: 1},
				{GameID: "game-2", Season: 2025, Week: 1},
				{GameID: "game-1", Season: 2025, Week: 1},
				{GameID: "game-1", Season: 2025},
			}
			results, err := svc.Batch(ctx, keys)
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 4)

			Convey("Then results line up with their requested views", func() {
				for i, k := range keys {
					So(results[i].Key, ShouldResemble, k)
					So(results[i].Err, ShouldBeNil)
				}
				So(results[2], ShouldResemble, results[0])
			})

			Convey("And each batch result matches its synchronous twin", func() {
				for _, res := range results {
					direct, derr := svc.Standings(ctx, res.Key)
					So(derr, ShouldBeNil)
					So(res.Standings, ShouldResemble, direct)
				}
			})

			Convey("And distinct games produce distinct cohorts", func() {
				So(results[0].Standings, ShouldNotResemble, results[1].Standings)
			})
		})

		Convey("When many clients compute concurrently", func() {
			const clients = 8
			var wg sync.WaitGroup
			failures := make(chan error, clients)

			wg.Add(clients)
			for i := 0; i < clients; i++ {
				go func(week int) {
					defer wg.Done()
					k := types.ViewKey{GameID: "game-9", Season: 2025, Week: week%4 + 1}
					if _, err := svc.Standings(ctx, k); err != nil {
						failures <- err
						return
					}
					if _, err := svc.Cohort(ctx, k); err != nil {
						failures <- err
					}
				}(i)
			}
			wg.Wait()
			close(failures)

			Convey("Then no computation fails", func() {
				So(len(failures), ShouldEqual, 0)
			})
		})

		Convey("When reading stats after traffic", func() {
			_, err := svc.Standings(ctx, key)
			So(err, ShouldBeNil)

			stats := svc.Stats(ctx)

			Convey("Then the snapshot reports a running service", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["source"], ShouldEqual, "fixture")
				So(stats["workers"], ShouldEqual, 4)
			})
		})
	})
}
