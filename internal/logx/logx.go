// Package logx is the module's shared structured-logging wrapper, grounded
// on pkg/util/log's wrapping of go-kit/log + go-kit/log/level throughout the
// teacher module (e.g. modules/backendscheduler's level.Info(log.Logger).Log(...)
// call sites).
package logx

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is the process-wide base logger. SetLevel may replace it before
// any other package starts logging; it is not safe to swap
// concurrently with logging calls.
var Logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))

// SetLevel filters Logger to the named level ("debug", "info", "warn",
// "error"); unrecognized names are treated as "info".
func SetLevel(name string) {
	var opt level.Option
	switch name {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	Logger = level.NewFilter(Logger, opt)
}

func Debug(msg string, keyvals ...any) {
	level.Debug(Logger).Log(append([]any{"msg", msg}, keyvals...)...)
}

func Info(msg string, keyvals ...any) {
	level.Info(Logger).Log(append([]any{"msg", msg}, keyvals...)...)
}

func Warn(msg string, keyvals ...any) {
	level.Warn(Logger).Log(append([]any{"msg", msg}, keyvals...)...)
}

func Error(msg string, keyvals ...any) {
	level.Error(Logger).Log(append([]any{"msg", msg}, keyvals...)...)
}
