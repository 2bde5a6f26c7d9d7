package logger

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
)

func TestNewAppLogger(t *testing.T) {
	convey.Convey("Get a logger", t, func() {
		log := NewAppLogger("test")
		convey.So(log, convey.ShouldNotBeNil)
	})
}

func TestParseLevel(t *testing.T) {
	convey.Convey("Parse log levels", t, func() {
		convey.Convey("info", func() {
			convey.So(parseLevel(InfoLevel), convey.ShouldEqual, zap.InfoLevel)
		})
		convey.Convey("debug", func() {
			convey.So(parseLevel(DebugLevel), convey.ShouldEqual, zap.DebugLevel)
		})
		convey.Convey("error", func() {
			convey.So(parseLevel(ErrorLevel), convey.ShouldEqual, zap.ErrorLevel)
		})
		convey.Convey("unrecognized defaults to info", func() {
			convey.So(parseLevel("trace"), convey.ShouldEqual, zap.InfoLevel)
		})
	})
}

func TestNopLogger(t *testing.T) {
	convey.Convey("Nop logger accepts all calls", t, func() {
		ctx := context.Background()
		log := Nop()
		convey.So(log, convey.ShouldNotBeNil)
		log.Info(ctx, "ignored", map[string]interface{}{"k": "v"})
		log.Error(ctx, "ignored", nil, nil)
		convey.So(log.WithFields(map[string]interface{}{"k": "v"}), convey.ShouldNotBeNil)
	})
}

func TestStdLogger(t *testing.T) {
	convey.Convey("StdLogger honors the debug flag and field merging", t, func() {
		ctx := context.Background()

		log := NewStdLogger(false)
		convey.So(log, convey.ShouldNotBeNil)
		log.Info(ctx, "hello", map[string]interface{}{"k": "v"})
		log.Debug(ctx, "hidden at info level", nil)
		log.Error(ctx, "boom", context.DeadlineExceeded, nil)

		derived := log.WithFields(map[string]interface{}{"execution_id": "exec-1"})
		convey.So(derived, convey.ShouldNotBeNil)
		convey.So(derived, convey.ShouldNotEqual, log)
	})
}

func TestWithFields(t *testing.T) {
	convey.Convey("WithFields returns an independent logger", t, func() {
		base := NewAppLogger("test")
		derived := base.WithFields(map[string]interface{}{"execution_id": "exec-1"})
		convey.So(derived, convey.ShouldNotBeNil)
		convey.So(derived, convey.ShouldNotEqual, base)
	})
}
