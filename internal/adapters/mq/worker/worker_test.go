package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/fieldline/standee/internal/adapters/mq/queue"
	worker "github.com/fieldline/standee/internal/adapters/mq/worker"
	types "github.com/fieldline/standee/internal/domain/types"
	logging "github.com/fieldline/standee/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobChan chan worker.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		jobChan: make(chan worker.Job, 10),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan worker.Job {
	return mq.jobChan
}

func (mq *mockQueue) Close() error {
	close(mq.jobChan)
	return nil
}

func (mq *mockQueue) addJob(job worker.Job) {
	mq.jobChan <- job
}

type mockComputer struct {
	standings map[types.ViewKey][]types.PlayerStanding
	stats     map[types.ViewKey]types.CohortStatistics
	errors    map[types.ViewKey]error
	mu        sync.RWMutex
}

func newMockComputer() *mockComputer {
	return &mockComputer{
		standings: make(map[types.ViewKey][]types.PlayerStanding),
		stats:     make(map[types.ViewKey]types.CohortStatistics),
		errors:    make(map[types.ViewKey]error),
	}
}

func (mc *mockComputer) ComputeView(ctx context.Context, key types.ViewKey) ([]types.PlayerStanding, types.CohortStatistics, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if err, exists := mc.errors[key]; exists {
		return nil, types.CohortStatistics{}, err
	}
	return mc.standings[key], mc.stats[key], nil
}

func (mc *mockComputer) setResult(key types.ViewKey, list []types.PlayerStanding, stats types.CohortStatistics) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.standings[key] = list
	mc.stats[key] = stats
}

func (mc *mockComputer) setError(key types.ViewKey, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errors[key] = err
}

func waitOutcome(reply <-chan queue.Outcome) (queue.Outcome, bool) {
	select {
	case out := <-reply:
		return out, true
	case <-time.After(time.Second):
		return queue.Outcome{}, false
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		mq := newMockQueue()
		computer := newMockComputer()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewInMemoryWorker(mq, computer)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(
				mq, computer,
				worker.WithName("test-worker"),
				worker.WithLogger(logging.Get().Named("test")),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(mq, computer)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)

			key := types.ViewKey{GameID: "g-1", Season: 2025, Week: 3}

			convey.Convey("And a computation succeeds", func() {
				ranked := []types.PlayerStanding{
					{UserID: "u-1", CorrectPicks: 5, TotalPicks: 10, PickPercentage: 50.0, Rank: 1},
				}
				stats := types.CohortStatistics{AverageCorrectPicks: 5.0, ParticipantCount: 1}
				computer.setResult(key, ranked, stats)

				reply := make(chan queue.Outcome, 1)
				mq.addJob(worker.Job{ID: "job-1", Key: key, Reply: reply})

				convey.Convey("Then the outcome arrives on the reply channel", func() {
					out, ok := waitOutcome(reply)
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(out.Err, convey.ShouldBeNil)
					convey.So(out.Key, convey.ShouldResemble, key)
					convey.So(out.Standings, convey.ShouldResemble, ranked)
					convey.So(out.Stats.ParticipantCount, convey.ShouldEqual, 1)
				})
			})

			convey.Convey("And a computation fails", func() {
				wantErr := errors.New("membership unreachable")
				computer.setError(key, wantErr)

				reply := make(chan queue.Outcome, 1)
				mq.addJob(worker.Job{ID: "job-2", Key: key, Reply: reply})

				convey.Convey("Then the outcome carries the error", func() {
					out, ok := waitOutcome(reply)
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(out.Err, convey.ShouldEqual, wantErr)
					convey.So(out.Standings, convey.ShouldBeNil)
				})
			})

			convey.Convey("And a job arrives without a reply channel", func() {
				mq.addJob(worker.Job{ID: "job-3", Key: key})

				followUp := types.ViewKey{GameID: "g-2", Season: 2025}
				reply := make(chan queue.Outcome, 1)
				mq.addJob(worker.Job{ID: "job-4", Key: followUp, Reply: reply})

				convey.Convey("Then the worker is not wedged by it", func() {
					out, ok := waitOutcome(reply)
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(out.Key, convey.ShouldResemble, followUp)
				})
			})

			convey.Convey("And the queue closes", func() {
				_ = mq.Close()

				convey.Convey("Then shutdown completes promptly", func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
					defer shutdownCancel()
					convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When shutting down a worker that never ran", func() {
			w := worker.NewInMemoryWorker(mq, computer)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer shutdownCancel()
			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then shutdown reports the timeout", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "timed out")
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()

		computer := newMockComputer()

		convey.Convey("When creating a pool with an explicit size", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(16))
			pool := worker.NewPool(3, q, computer)

			convey.Convey("Then it has that many workers", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When creating a pool with an invalid size", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(16))
			pool := worker.NewPool(0, q, computer)

			convey.Convey("Then it falls back to a CPU-derived size", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When a pool drains a batch of jobs", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(16))
			pool := worker.NewPool(3, q, computer)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			const jobs = 5
			keys := make([]types.ViewKey, 0, jobs)
			reply := make(chan queue.Outcome, jobs)
			for i := 0; i < jobs; i++ {
				key := types.ViewKey{GameID: fmt.Sprintf("g-%d", i), Season: 2025, Week: 1}
				keys = append(keys, key)
				computer.setResult(key, []types.PlayerStanding{{UserID: fmt.Sprintf("u-%d", i), Rank: 1}}, types.CohortStatistics{ParticipantCount: 1})
				ok := q.Enqueue(ctx, queue.Job{ID: fmt.Sprintf("job-%d", i), Key: key, Reply: reply})
				convey.So(ok, convey.ShouldBeTrue)
			}

			convey.Convey("Then every key gets exactly one outcome", func() {
				got := map[types.ViewKey]int{}
				for i := 0; i < jobs; i++ {
					out, ok := waitOutcome(reply)
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(out.Err, convey.ShouldBeNil)
					got[out.Key]++
				}
				for _, key := range keys {
					convey.So(got[key], convey.ShouldEqual, 1)
				}
			})

			convey.Convey("And shutting down closes the queue and stops the workers", func() {
				err := pool.Shutdown(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Enqueue(context.Background(), queue.Job{ID: "late", Key: keys[0], Reply: reply}), convey.ShouldBeFalse)
			})
		})
	})
}
