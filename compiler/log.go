// Package compiler wires passes 0 through 6, time topology, SCC
// validation, and schedule construction into a single Compile entry point
// (§4, §5, §4.12), plus the fluent Builder a caller configures it with.
package compiler

import (
	"context"
	"log/slog"
)

// LevelTrace is a log level below Debug, the same spacing the teacher
// reserves above Info for its own Trace level (core/util.go).
const LevelTrace slog.Level = slog.LevelDebug - 1

var defaultLogger = slog.Default()

// SetLogger installs the *slog.Logger every Compile call logs through, the
// process-wide touchpoint the teacher's test mains set up once via
// slog.SetDefault before running a kernel.
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

func trace(msg string, args ...any) {
	defaultLogger.Log(context.Background(), LevelTrace, msg, args...)
}
