package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func named(name string) Command {
	return Command{Name: name, Run: func(context.Context) {}}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue of capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		ctx := context.Background()
		So(q.Capacity(), ShouldEqual, 2)
		So(q.Len(ctx), ShouldEqual, 0)

		Convey("Commands come out in order", func() {
			So(q.Enqueue(ctx, named("a")), ShouldBeNil)
			So(q.Enqueue(ctx, named("b")), ShouldBeNil)
			So(q.Len(ctx), ShouldEqual, 2)

			dctx, cancel := context.WithCancel(ctx)
			defer cancel()
			out := q.Dequeue(dctx)
			So((<-out).Name, ShouldEqual, "a")
			So((<-out).Name, ShouldEqual, "b")
		})

		Convey("A full queue rejects without blocking", func() {
			So(q.Enqueue(ctx, named("a")), ShouldBeNil)
			So(q.Enqueue(ctx, named("b")), ShouldBeNil)
			So(q.Enqueue(ctx, named("c")), ShouldEqual, ErrFull)
		})

		Convey("A cancelled context is reported", func() {
			So(q.Enqueue(ctx, named("a")), ShouldBeNil)
			So(q.Enqueue(ctx, named("b")), ShouldBeNil)
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := q.Enqueue(cctx, named("c"))
			So(err, ShouldNotBeNil)
			So(errors.Is(err, context.Canceled) || errors.Is(err, ErrFull), ShouldBeTrue)
		})

		Convey("Closing drains then closes the dequeue channel", func() {
			So(q.Enqueue(ctx, named("a")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)
			So(q.Enqueue(ctx, named("b")), ShouldEqual, ErrClosed)

			out := q.Dequeue(ctx)
			So((<-out).Name, ShouldEqual, "a")
			select {
			case _, ok := <-out:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				So("dequeue channel not closed", ShouldBeEmpty)
			}
		})
	})
}
