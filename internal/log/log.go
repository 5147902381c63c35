// ABOUTME: Leveled logging wrapper around slog; global level via SetLevel
// ABOUTME: Writes to stderr by default; the TUI redirects output with SetOutput

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level  atomic.Int64
	mu     sync.Mutex
	logger *slog.Logger
)

func init() {
	level.Store(int64(LevelInfo))
	SetOutput(os.Stderr)
}

// levelVar reads the global gate so handler and helpers agree.
type levelVar struct{}

func (levelVar) Level() slog.Level { return slog.Level(level.Load()) }

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar{}})
	mu.Lock()
	logger = slog.New(h)
	mu.Unlock()
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Store(int64(l))
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return slog.Level(level.Load())
}

// ParseLevel maps "debug", "info", "warn" and "error" to a level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return LevelInfo, fmt.Errorf("parsing log level %q: %w", s, err)
	}
	return l, nil
}

func emit(l slog.Level, format string, args ...any) {
	if slog.Level(level.Load()) > l {
		return
	}
	mu.Lock()
	lg := logger
	mu.Unlock()
	lg.Log(context.Background(), l, fmt.Sprintf(format, args...))
}

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) { emit(LevelDebug, format, args...) }

// Info logs an info message if the level allows it.
func Info(format string, args ...any) { emit(LevelInfo, format, args...) }

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) { emit(LevelWarn, format, args...) }

// Error logs an error message.
func Error(format string, args ...any) { emit(LevelError, format, args...) }

// Component prefixes messages with a component name. It satisfies the
// Logger interfaces of the composer packages.
type Component string

// Warn implements the composer Logger interface.
func (c Component) Warn(format string, args ...any) {
	Warn(string(c)+": "+format, args...)
}

// Debug logs at debug level with the component prefix.
func (c Component) Debug(format string, args ...any) {
	Debug(string(c)+": "+format, args...)
}
