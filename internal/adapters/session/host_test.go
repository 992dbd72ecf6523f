package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/okian/qte/internal/domain/input"
	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/qte"
	"github.com/okian/qte/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

func startHost(opts ...Option) (*Host, context.CancelFunc) {
	mapper := input.NewMapper()
	mapper.AddContext(input.NewMappingContext("default").Bind("interact", "e", "f"), 0)
	policy := qte.DefaultPolicy()
	policy.GlobalIgnoredKeys = []model.Key{"mouse_x"}
	h := New(policy, mapper, append([]Option{WithManualTime()}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	return h, cancel
}

func request(owner string, priority int, key model.Key) StartRequest {
	return StartRequest{
		Owner:    owner,
		Priority: priority,
		Definition: model.Definition{
			Settings:   model.Settings{Duration: 2 * time.Second, PerfectRangeMin: 0.8, PerfectRangeMax: 1},
			Input:      model.InputSpec{TargetKey: key, WrongInputFails: true},
			Identifier: "prompt-" + string(key),
		},
	}
}

func TestHost(t *testing.T) {
	Convey("Given a running host with manual time", t, func() {
		h, cancel := startHost()
		defer cancel()
		ctx := context.Background()

		Convey("A started QTE is listed and times out at its duration", func() {
			snap, err := h.Start(ctx, request("", 0, "e"))
			So(err, ShouldBeNil)
			So(snap.Owner, ShouldEqual, DefaultOwner)
			So(snap.State, ShouldEqual, "active")
			So(snap.Target, ShouldEqual, "e")

			active, err := h.Active(ctx)
			So(err, ShouldBeNil)
			So(active, ShouldHaveLength, 1)

			So(h.Step(ctx, 1200*time.Millisecond), ShouldBeNil)
			got, err := h.Get(ctx, snap.ID)
			So(err, ShouldBeNil)
			So(got.Elapsed, ShouldEqual, 1200*time.Millisecond)
			So(got.Debug, ShouldEqual, "QuickTimeEvent: prompt-e | Time: 1.20/2.00 | Perfect: NO")

			So(h.Step(ctx, 800*time.Millisecond), ShouldBeNil)
			got, err = h.Get(ctx, snap.ID)
			So(err, ShouldBeNil)
			So(got.State, ShouldEqual, "resolved")
			So(got.Outcome, ShouldNotBeNil)
			So(got.Outcome.TimedOut, ShouldBeTrue)

			stats, err := h.Stats(ctx)
			So(err, ShouldBeNil)
			So(stats.Started, ShouldEqual, 1)
			So(stats.TimedOut, ShouldEqual, 1)
			So(stats.Active, ShouldEqual, 0)
			So(stats.Now, ShouldEqual, 2*time.Second)
		})

		Convey("Key presses go to the highest priority QTE", func() {
			low, _ := h.Start(ctx, request("npc", 5, "e"))
			high, _ := h.Start(ctx, request("player", 10, "e"))
			So(h.Step(ctx, 1900*time.Millisecond), ShouldBeNil)

			consumed, err := h.PressKey(ctx, "e")
			So(err, ShouldBeNil)
			So(consumed, ShouldBeTrue)

			got, _ := h.Get(ctx, high.ID)
			So(got.Outcome.Success, ShouldBeTrue)
			So(got.Outcome.Perfect, ShouldBeTrue)
			got, _ = h.Get(ctx, low.ID)
			So(got.State, ShouldEqual, "active")

			consumed, _ = h.PressKey(ctx, "mouse_x")
			So(consumed, ShouldBeFalse)
			got, _ = h.Get(ctx, low.ID)
			So(got.State, ShouldEqual, "active")

			stats, _ := h.Stats(ctx)
			So(stats.Presses, ShouldEqual, 2)
			So(stats.Consumed, ShouldEqual, 1)
			So(stats.Succeeded, ShouldEqual, 1)
			So(stats.Perfect, ShouldEqual, 1)
			So(stats.Owners, ShouldEqual, 2)
		})

		Convey("Action targets resolve through the mapper", func() {
			req := request("", 0, model.NoKey)
			req.Definition.Input.TargetAction = "interact"
			snap, err := h.Start(ctx, req)
			So(err, ShouldBeNil)
			So(snap.Target, ShouldEqual, "action:interact")

			consumed, _ := h.PressKey(ctx, "f")
			So(consumed, ShouldBeTrue)
		})

		Convey("Invalid definitions are rejected", func() {
			req := request("", 0, "e")
			req.Definition.Settings.Duration = -time.Second
			_, err := h.Start(ctx, req)
			So(errors.Is(err, qte.ErrInvalidDefinition), ShouldBeTrue)
		})

		Convey("Cancelling reports unknown ids", func() {
			snap, _ := h.Start(ctx, request("", 0, "e"))
			So(h.Cancel(ctx, snap.ID), ShouldBeNil)
			So(errors.Is(h.Cancel(ctx, snap.ID), ErrNotFound), ShouldBeTrue)

			got, err := h.Get(ctx, snap.ID)
			So(err, ShouldBeNil)
			So(got.State, ShouldEqual, "cancelled")
			So(got.Outcome, ShouldBeNil)

			_, err = h.Get(ctx, "missing")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("CancelAll and DestroyOwner cancel silently", func() {
			for p := 0; p < 3; p++ {
				_, err := h.Start(ctx, request("player", p, "e"))
				So(err, ShouldBeNil)
			}
			_, _ = h.Start(ctx, request("npc", 0, "e"))

			n, err := h.DestroyOwner(ctx, "npc")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			_, err = h.DestroyOwner(ctx, "npc")
			So(errors.Is(err, ErrNoOwner), ShouldBeTrue)

			n, err = h.CancelAll(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)

			So(h.Step(ctx, 5*time.Second), ShouldBeNil)
			stats, _ := h.Stats(ctx)
			So(stats.Cancelled, ShouldEqual, 4)
			So(stats.Succeeded+stats.WrongInput+stats.TimedOut, ShouldEqual, 0)
		})

		Convey("Subscribers see the lifecycle", func() {
			events, stop := h.Subscribe()
			defer stop()

			snap, _ := h.Start(ctx, request("", 0, "e"))
			_, _ = h.PressKey(ctx, "x")

			first := <-events
			So(first.Type, ShouldEqual, NotifyRegistered)
			So(first.Snapshot.ID, ShouldEqual, snap.ID)
			second := <-events
			So(second.Type, ShouldEqual, NotifyResolved)
			So(second.Snapshot.Outcome.Reason(), ShouldEqual, model.ReasonWrongInput)

			stop()
			_, open := <-events
			So(open, ShouldBeFalse)
		})

		Convey("After shutdown calls fail and running QTEs are cancelled", func() {
			events, _ := h.Subscribe()
			_, _ = h.Start(ctx, request("", 0, "e"))
			<-events

			sctx, scancel := context.WithTimeout(ctx, time.Second)
			defer scancel()
			So(h.Shutdown(sctx), ShouldBeNil)
			So(h.Shutdown(sctx), ShouldBeNil)

			n := <-events
			So(n.Type, ShouldEqual, NotifyCancelled)
			_, open := <-events
			So(open, ShouldBeFalse)

			_, err := h.Start(ctx, request("", 0, "e"))
			So(errors.Is(err, ErrStopped), ShouldBeTrue)

			late, _ := h.Subscribe()
			_, open = <-late
			So(open, ShouldBeFalse)
		})
	})

	Convey("Given a host whose loop is not running", t, func() {
		h := New(qte.DefaultPolicy(), nil, WithManualTime(), WithQueueCapacity(1))

		Convey("A full command queue reports backpressure", func() {
			tctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err := h.Stats(tctx)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)

			_, err = h.Stats(context.Background())
			So(err, ShouldEqual, ErrBackpressure)
		})
	})
}
