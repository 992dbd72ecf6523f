package drill

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	service "github.com/okian/qte/internal/app"
	"github.com/okian/qte/internal/config"
	"github.com/okian/qte/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

func TestPlan(t *testing.T) {
	Convey("Given a plan of prompts", t, func() {
		prompts := plan(50, 4)

		Convey("Then every prompt has its own key and press id", func() {
			keys := map[string]bool{}
			ids := map[string]bool{}
			for _, p := range prompts {
				keys[p.Key] = true
				ids[p.PressID] = true
				So(p.Priority, ShouldBeBetweenOrEqual, 0, maxPriority-1)
				So(p.Action, ShouldBeLessThan, actionCount)
			}
			So(keys, ShouldHaveLength, 50)
			So(ids, ShouldHaveLength, 50)
		})

		Convey("Then owners are spread round robin", func() {
			So(prompts[0].Owner, ShouldEqual, "drill-owner-0")
			So(prompts[5].Owner, ShouldEqual, "drill-owner-1")
		})

		Convey("Then counting covers every prompt", func() {
			total := 0
			for _, n := range count(prompts) {
				total += n
			}
			So(total, ShouldEqual, 50)
		})
	})
}

func TestVerifyResults(t *testing.T) {
	Convey("Given a report", t, func() {
		r := &Report{
			Planned: map[Action]int{ActionHit: 2, ActionHitTwice: 1, ActionCancel: 1, ActionMiss: 1},
			Started: 5,
			Before:  ServiceStats{Started: 10, Succeeded: 4, Consumed: 4},
			After:   ServiceStats{Started: 15, Succeeded: 7, Consumed: 7, Cancelled: 1, TimedOut: 1},
		}

		Convey("When the counters match the plan", func() {
			So(verifyResults(r), ShouldBeNil)
		})

		Convey("When a timeout is missing", func() {
			r.After.TimedOut = 0
			err := verifyResults(r)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "timed_out moved by 0, want 1")
		})

		Convey("When prompts failed", func() {
			r.Failed = 1
			So(verifyResults(r), ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running QTE service", t, func() {
		cfg := config.New(context.Background())
		cfg.TickInterval = 5 * time.Millisecond
		cfg.InputRateLimit = 10000
		cfg.InputBurst = 1000

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		svc := service.New(service.WithConfig(cfg))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		So(svc.Register(ctx, mux), ShouldBeNil)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When a drill is played against it", func() {
			var out bytes.Buffer
			report, err := Run(ctx, &Config{
				BaseURL:        srv.URL,
				Prompts:        40,
				Owners:         3,
				Workers:        4,
				Timeout:        5 * time.Second,
				PromptDuration: 2 * time.Second,
				Out:            &out,
			})

			Convey("Then the service counters match the plan", func() {
				So(err, ShouldBeNil)
				So(report.Started, ShouldEqual, 40)
				So(report.Failed, ShouldEqual, 0)
				So(report.Duplicates, ShouldEqual, report.Planned[ActionHitTwice])
				So(report.After.Started-report.Before.Started, ShouldEqual, 40)
				So(out.String(), ShouldContainSubstring, "Drill summary")
			})
		})
	})

	Convey("Given no service", t, func() {
		_, err := Run(context.Background(), &Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

		Convey("Then the health check fails", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "service health check failed")
		})
	})
}
