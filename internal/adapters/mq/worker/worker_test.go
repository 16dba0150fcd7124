package worker_test

import (
	"context"
	"strings"
	"testing"
	"time"

	queue "github.com/okian/impact/internal/adapters/mq/queue"
	worker "github.com/okian/impact/internal/adapters/mq/worker"
	model "github.com/okian/impact/internal/domain/model"
	logging "github.com/okian/impact/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	tasks chan queue.Task
}

func newMockQueue() *mockQueue {
	return &mockQueue{tasks: make(chan queue.Task, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Task { return mq.tasks }

func (mq *mockQueue) Close() error {
	close(mq.tasks)
	return nil
}

// mockScorer scores by headline length and panics on headlines containing "boom".
type mockScorer struct{}

func (mockScorer) ScoreItem(_ context.Context, item model.ConsolidatedItem, weights model.WeightTable) model.ScoredResult {
	if strings.Contains(item.Headline, "boom") {
		panic("scorer exploded")
	}
	return model.ScoredResult{
		Stock:          item.Stock,
		Headline:       item.Headline,
		CategoryWeight: weights["generic"],
		RawScore:       float64(len(item.Headline)),
	}
}

func newTask(index int, headline string, reply chan model.TaskResult) queue.Task {
	return model.Task{
		PassID:  "pass-1",
		Index:   index,
		Item:    model.ConsolidatedItem{Stock: "INFY", Headline: headline, Sources: []string{"s"}},
		Weights: model.WeightTable{"generic": 4},
		Reply:   reply,
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, mockScorer{}, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		reply := make(chan model.TaskResult, 4)

		convey.Convey("When a task is queued", func() {
			q.tasks <- newTask(3, "Infosys bags order", reply)

			convey.Convey("Then the scored result is sent back with its index", func() {
				select {
				case res := <-reply:
					convey.So(res.Err, convey.ShouldBeNil)
					convey.So(res.Index, convey.ShouldEqual, 3)
					convey.So(res.Result.RawScore, convey.ShouldEqual, 18)
					convey.So(res.Result.CategoryWeight, convey.ShouldEqual, 4)
				case <-time.After(time.Second):
					convey.So("no reply", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When the scorer panics", func() {
			q.tasks <- newTask(1, "boom", reply)
			q.tasks <- newTask(2, "after", reply)

			convey.Convey("Then the task is answered with an error and the worker keeps going", func() {
				first := <-reply
				second := <-reply
				convey.So(first.Index, convey.ShouldEqual, 1)
				convey.So(first.Err, convey.ShouldNotBeNil)
				convey.So(second.Index, convey.ShouldEqual, 2)
				convey.So(second.Err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
			defer stop()

			convey.Convey("Then it stops cleanly", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})

			convey.Convey("Then a second shutdown is a no-op", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(func() { _ = w.Shutdown(shutdownCtx) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		pool := worker.NewPool(4, q, mockScorer{})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many tasks are enqueued", func() {
			reply := make(chan model.TaskResult, 50)
			for i := 0; i < 50; i++ {
				convey.So(q.Enqueue(ctx, newTask(i, strings.Repeat("x", i+1), reply)), convey.ShouldBeNil)
			}

			convey.Convey("Then every task is answered exactly once", func() {
				seen := make(map[int]bool)
				for i := 0; i < 50; i++ {
					select {
					case res := <-reply:
						convey.So(seen[res.Index], convey.ShouldBeFalse)
						seen[res.Index] = true
						convey.So(res.Result.RawScore, convey.ShouldEqual, float64(res.Index+1))
					case <-time.After(2 * time.Second):
						t.Fatal("timed out waiting for replies")
					}
				}
				convey.So(seen, convey.ShouldHaveLength, 50)
			})
		})

		convey.Convey("When the pool is shut down", func() {
			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue is closed and workers stop", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})

			convey.Convey("Then shutting down again does not panic", func() {
				var again error
				convey.So(func() { again = pool.Shutdown(context.Background()) }, convey.ShouldNotPanic)
				convey.So(again, convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a pool with no explicit size", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), mockScorer{})

		convey.Convey("Then it sizes itself from the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
