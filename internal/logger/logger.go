package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	current  atomic.Pointer[slog.Logger]
	initOnce sync.Once
)

func init() {
	current.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Logger returns the process-wide logger. It discards output until
// InitLogger runs, so packages can log unconditionally in tests.
// Safe for concurrent use with InitLogger.
func Logger() *slog.Logger {
	return current.Load()
}

// InitLogger configures the process-wide logger once; later calls are ignored.
func InitLogger(logLevel string) {
	initOnce.Do(func() {
		current.Store(New(os.Stderr, logLevel))
	})
}

// New builds a text logger writing to w at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, logLevel string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(logLevel),
	}))
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
