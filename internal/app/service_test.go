package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	service "github.com/okian/qte/internal/app"
	"github.com/okian/qte/internal/config"
	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

func TestService_FromConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New(context.Background())

		Convey("Then the policy mirrors it", func() {
			p := service.PolicyFromConfig(cfg)
			So(p.GlobalIgnoredKeys, ShouldResemble, []model.Key{"mouse_x", "mouse_y"})
			So(p.DefaultSettings.Duration, ShouldEqual, 2*time.Second)
			So(p.DefaultSettings.PerfectRangeMin, ShouldEqual, 0.8)
			So(p.DebugLogging, ShouldBeTrue)
		})

		Convey("Then the mapper resolves configured actions", func() {
			m := service.MapperFromConfig(cfg)
			So(m.ResolveActionToKeys("interact"), ShouldResemble, []model.Key{"e", "f"})
			So(m.ResolveActionToKeys("jump"), ShouldResemble, []model.Key{"space"})
		})

		Convey("Then no bindings means an empty mapper", func() {
			cfg.ActionBindings = nil
			So(service.MapperFromConfig(cfg).ResolveActionToKeys("interact"), ShouldBeEmpty)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithManualTime())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Convey("When it has not started", func() {
			_, err := svc.Session()
			So(err, ShouldEqual, service.ErrNotStarted)
			So(svc.Register(ctx, http.NewServeMux()), ShouldEqual, service.ErrNotStarted)
			So(svc.Stop(ctx), ShouldBeNil)
		})

		Convey("When it starts", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			Reset(func() {
				_ = svc.Stop(ctx)
			})

			host, err := svc.Session()
			So(err, ShouldBeNil)

			mux := http.NewServeMux()
			So(svc.Register(ctx, mux), ShouldBeNil)
			srv := httptest.NewServer(mux)
			defer srv.Close()

			Convey("Then a QTE runs end to end over HTTP", func() {
				resp, err := http.Post(srv.URL+"/events", "application/json",
					strings.NewReader(`{"identifier":"door","target_action":"interact"}`))
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				_ = resp.Body.Close()

				So(host.Step(ctx, 1900*time.Millisecond), ShouldBeNil)

				resp, err = http.Post(srv.URL+"/input", "application/json", strings.NewReader(`{"key":"f"}`))
				So(err, ShouldBeNil)
				var press map[string]any
				_ = json.NewDecoder(resp.Body).Decode(&press)
				_ = resp.Body.Close()
				So(press["consumed"], ShouldEqual, true)

				st, err := host.Stats(ctx)
				So(err, ShouldBeNil)
				So(st.Succeeded, ShouldEqual, 1)
				So(st.Perfect, ShouldEqual, 1)
			})

			Convey("Then the docs are served", func() {
				resp, err := http.Get(srv.URL + "/openapi.yaml")
				So(err, ShouldBeNil)
				_ = resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})

			Convey("Then stopping shuts the session down", func() {
				So(svc.Stop(ctx), ShouldBeNil)
				_, err := host.Stats(ctx)
				So(err, ShouldNotBeNil)
				_, err = svc.Session()
				So(err, ShouldEqual, service.ErrNotStarted)
			})
		})
	})

	Convey("Given an invalid configuration", t, func() {
		cfg := config.New(context.Background())
		cfg.DefaultPerfectMin = 2
		svc := service.New(service.WithConfig(cfg))

		Convey("Then Start fails validation", func() {
			So(svc.Start(context.Background()), ShouldWrap, config.ErrInvalidConfig)
		})
	})
}
