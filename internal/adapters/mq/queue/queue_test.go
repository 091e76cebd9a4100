package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func noop() {}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))

		convey.Convey("It starts empty and open", func() {
			convey.So(q.Len(), convey.ShouldEqual, 0)
			convey.So(q.IsClosed(), convey.ShouldBeFalse)
		})

		convey.Convey("Tasks come out in the order they went in", func() {
			convey.So(q.Enqueue(ctx, Task{Name: "a", Run: noop}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, Task{Name: "b", Run: noop}), convey.ShouldBeNil)
			convey.So(q.Len(), convey.ShouldEqual, 2)

			ch := q.Dequeue()
			convey.So((<-ch).Name, convey.ShouldEqual, "a")
			convey.So((<-ch).Name, convey.ShouldEqual, "b")
			convey.So(q.Len(), convey.ShouldEqual, 0)
		})

		convey.Convey("A full queue rejects with ErrFull", func() {
			convey.So(q.Enqueue(ctx, Task{Run: noop}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, Task{Run: noop}), convey.ShouldBeNil)
			convey.So(errors.Is(q.Enqueue(ctx, Task{Run: noop}), ErrFull), convey.ShouldBeTrue)
		})

		convey.Convey("A cancelled context is rejected", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			convey.So(errors.Is(q.Enqueue(cctx, Task{Run: noop}), context.Canceled), convey.ShouldBeTrue)
			convey.So(q.Len(), convey.ShouldEqual, 0)
		})

		convey.Convey("Close drains queued tasks then closes the channel", func() {
			convey.So(q.Enqueue(ctx, Task{Name: "last", Run: noop}), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
			convey.So(errors.Is(q.Enqueue(ctx, Task{Run: noop}), ErrClosed), convey.ShouldBeTrue)

			ch := q.Dequeue()
			task, ok := <-ch
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(task.Name, convey.ShouldEqual, "last")
			_, ok = <-ch
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestInMemoryQueueConcurrentEnqueueAndClose(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = q.Enqueue(ctx, Task{Run: noop})
			}
		}()
	}
	go func() { _ = q.Close() }()
	wg.Wait()

	if !q.IsClosed() {
		_ = q.Close()
	}
	n := 0
	for range q.Dequeue() {
		n++
	}
	if n > 1000 {
		t.Fatalf("drained %d tasks, more than were enqueued", n)
	}
}
