// Package logger is the process-wide structured logger.
//
// Entries are logfmt lines on stderr; stdout is reserved for the metadata
// directives consumed by the host build coordinator.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stderr
	filter           = level.AllowInfo()
	base   log.Logger
)

func init() {
	rebuild()
}

func rebuild() {
	l := log.NewLogfmtLogger(log.NewSyncWriter(out))
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.Caller(6))
	base = level.NewFilter(l, filter)
}

// SetOutput redirects log entries to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	rebuild()
}

// SetLevel applies the minimum level: "debug", "info", "warn", "error" or
// "all". Unknown names select "info".
func SetLevel(lvl string) {
	mu.Lock()
	defer mu.Unlock()
	switch lvl {
	case "debug":
		filter = level.AllowDebug()
	case "warn":
		filter = level.AllowWarn()
	case "error":
		filter = level.AllowError()
	case "all":
		filter = level.AllowAll()
	default:
		filter = level.AllowInfo()
	}
	rebuild()
}

func current() log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debug adds a log entry w/ Debug level
func Debug(keyvals ...interface{}) {
	level.Debug(current()).Log(keyvals...)
}

// Info adds a log entry w/ Info level
func Info(keyvals ...interface{}) {
	level.Info(current()).Log(keyvals...)
}

// Warn adds a log entry w/ Warn level
func Warn(keyvals ...interface{}) {
	level.Warn(current()).Log(keyvals...)
}

// Error adds a log entry w/ Error level
func Error(keyvals ...interface{}) {
	level.Error(current()).Log(keyvals...)
}
