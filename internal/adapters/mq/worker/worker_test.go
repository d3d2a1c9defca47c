package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/urchin/internal/adapters/mq/queue"
	worker "github.com/okian/urchin/internal/adapters/mq/worker"
	timeline "github.com/okian/urchin/internal/domain/timeline"
	logging "github.com/okian/urchin/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	updateChan chan queue.Update
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		updateChan: make(chan queue.Update, 10),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Update {
	return mq.updateChan
}

func (mq *mockQueue) Close() error {
	close(mq.updateChan)
	return nil
}

func (mq *mockQueue) addUpdate(u queue.Update) {
	mq.updateChan <- u
}

type mockApplier struct {
	applied []string
	errors  map[string]error
	mu      sync.RWMutex
}

func newMockApplier() *mockApplier {
	return &mockApplier{
		errors: make(map[string]error),
	}
}

func (ma *mockApplier) Apply(ctx context.Context, u queue.Update) error {
	ma.mu.Lock()
	defer ma.mu.Unlock()

	if err, exists := ma.errors[u.Source]; exists {
		return err
	}
	ma.applied = append(ma.applied, u.Source)
	return nil
}

func (ma *mockApplier) setError(source string, err error) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.errors[source] = err
}

func (ma *mockApplier) appliedSources() []string {
	ma.mu.RLock()
	defer ma.mu.RUnlock()
	return append([]string(nil), ma.applied...)
}

func scheduleUpdate(source string) queue.Update {
	return queue.Update{
		Schedule: &timeline.Schedule{
			Events: []timeline.Event{{Label: "Work", Start: "09:00", End: "17:00"}},
		},
		Source:     source,
		ReceivedAt: time.Now(),
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		mq := newMockQueue()
		applier := newMockApplier()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewInMemoryWorker(mq, applier)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(
				mq, applier,
				worker.WithName("test-worker"),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(mq, applier)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Start worker in goroutine
			go w.Run(ctx)

			// Give worker time to start
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And when processing updates", func() {
				mq.addUpdate(scheduleUpdate("http"))

				// Give worker time to process
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the update should reach the applier", func() {
					sources := applier.appliedSources()
					convey.So(sources, convey.ShouldContain, "http")
				})
			})

			convey.Convey("And when applying fails", func() {
				applier.setError("broken", errors.New("apply error"))
				mq.addUpdate(scheduleUpdate("broken"))

				// Give worker time to process
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the update should not be recorded as applied", func() {
					sources := applier.appliedSources()
					convey.So(sources, convey.ShouldNotContain, "broken")
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()

				err := w.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When context is cancelled", func() {
			w := worker.NewInMemoryWorker(mq, applier)
			ctx, cancel := context.WithCancel(context.Background())

			// Start worker in goroutine
			go w.Run(ctx)

			// Give worker time to start
			time.Sleep(10 * time.Millisecond)

			// Cancel context
			cancel()

			// Give worker time to stop
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then enqueued updates should no longer be applied", func() {
				mq.addUpdate(scheduleUpdate("late"))
				time.Sleep(50 * time.Millisecond)
				convey.So(applier.appliedSources(), convey.ShouldNotContain, "late")
			})
		})

		convey.Convey("When the queue channel is closed", func() {
			w := worker.NewInMemoryWorker(mq, applier)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			_ = mq.Close()
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then shutdown should return promptly", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerSerialization(t *testing.T) {
	convey.Convey("Given a single worker and concurrent producers", t, func() {
		_ = logging.Init()

		mq := newMockQueue()
		applier := newMockApplier()

		w := worker.NewInMemoryWorker(mq, applier)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go w.Run(ctx)
		time.Sleep(10 * time.Millisecond)

		convey.Convey("When many producers enqueue at once", func() {
			var wg sync.WaitGroup
			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					mq.addUpdate(scheduleUpdate("producer"))
				}(i)
			}
			wg.Wait()
			time.Sleep(100 * time.Millisecond)

			convey.Convey("Then every update is applied exactly once", func() {
				convey.So(len(applier.appliedSources()), convey.ShouldEqual, 5)
			})
		})
	})
}
