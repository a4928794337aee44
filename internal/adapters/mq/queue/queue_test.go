package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/reten/internal/adapters/mq/queue"
	"github.com/okian/reten/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with capacity 2", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("When profiles fit within capacity", func() {
			So(q.Enqueue(ctx, model.Profile{ID: "a"}), ShouldBeTrue)
			So(q.Enqueue(ctx, model.Profile{ID: "b"}), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			Convey("Then a third enqueue is refused", func() {
				So(q.Enqueue(ctx, model.Profile{ID: "c"}), ShouldBeFalse)
			})

			Convey("Then dequeue drains in order", func() {
				out := q.Dequeue(ctx)
				first := <-out
				second := <-out
				So(first.ID, ShouldEqual, "a")
				So(second.ID, ShouldEqual, "b")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, model.Profile{ID: "a"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue is refused", func() {
				So(q.Enqueue(ctx, model.Profile{ID: "b"}), ShouldBeFalse)
			})

			Convey("Then dequeue drains the remainder and then closes", func() {
				out := q.Dequeue(ctx)
				p, ok := <-out
				So(ok, ShouldBeTrue)
				So(p.ID, ShouldEqual, "a")

				select {
				case _, ok := <-out:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel did not close")
				}
			})

			Convey("Then closing twice is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
