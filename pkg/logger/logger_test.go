package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stadio-ml/stadio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger_Init(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		err := logger.Init()
		So(err, ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			// Should not panic at any level.
			l.Debug(context.Background(), "debug message", logger.String("k", "v"))
			l.Info(context.Background(), "info message", logger.Int("n", 1))
			l.Warn(context.Background(), "warn message")
			l.Error(context.Background(), "error message", logger.Error(nil))
		})

		Convey("Then Named returns a scoped logger", func() {
			l := logger.Named("ledger")
			So(l, ShouldNotBeNil)
			l.Info(context.Background(), "named message")
		})
	})
}

func TestLogger_SetLevelString(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When setting known levels", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When setting an unknown level", func() {
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})

		Convey("When setting a level directly", func() {
			logger.SetLevel(slog.LevelWarn)
			logger.Get().Info(context.Background(), "suppressed at warn level")
		})
	})
}
