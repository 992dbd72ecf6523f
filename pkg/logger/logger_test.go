package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		ctx := context.Background()

		Convey("Info records carry fields and source", func() {
			Get().Info(ctx, "qte started",
				String("id", "abc"),
				Int("priority", 10),
				Bool("perfect", true),
				Duration("elapsed", 1200*time.Millisecond),
				Float64("ratio", 0.6),
			)
			out := buf.String()
			So(out, ShouldContainSubstring, "qte started")
			So(out, ShouldContainSubstring, "id=abc")
			So(out, ShouldContainSubstring, "priority=10")
			So(out, ShouldContainSubstring, "perfect=true")
			So(out, ShouldContainSubstring, "elapsed=1.2s")
			So(out, ShouldContainSubstring, "source=")
		})

		Convey("Debug is dropped at info level", func() {
			Get().Debug(ctx, "hidden")
			So(buf.String(), ShouldNotContainSubstring, "hidden")
		})

		Convey("SetLevelString enables debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			Get().Debug(ctx, "visible")
			So(buf.String(), ShouldContainSubstring, "visible")
			SetLevel(slog.LevelInfo)
		})

		Convey("Named loggers group their fields", func() {
			Named("dispatcher").Warn(ctx, "duplicate", String("id", "x"))
			So(buf.String(), ShouldContainSubstring, "dispatcher.id=x")
		})

		Convey("Error fields are keyed as error", func() {
			Get().Error(ctx, "failed", Error(errors.New("boom")))
			So(buf.String(), ShouldContainSubstring, "error=boom")
		})

		Convey("A nil context is tolerated", func() {
			//nolint:staticcheck // exercising the nil guard
			Get().Info(nil, "nil ctx")
			So(buf.String(), ShouldContainSubstring, "nil ctx")
		})
	})

	Convey("Unknown levels are rejected", t, func() {
		So(SetLevelString("verbose"), ShouldNotBeNil)
		So(SetLevelString("warning"), ShouldBeNil)
		So(SetLevelString(""), ShouldBeNil)
	})

	Convey("InitWithWriter rejects a nil writer", t, func() {
		So(InitWithWriter(nil), ShouldNotBeNil)
	})
}
