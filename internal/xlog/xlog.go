// Package xlog provides the aggregator's structured logger.
//
// It is a thin wrapper around log/slog with a terminal handler in the
// common Go node-daemon style ("LVL [date|time] msg  key=val ...") and a
// package-level root logger reached through free functions, so call sites
// read as log.Info("message", "key", value, ...) throughout the codebase.
package xlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level mirrors slog.Level with geth's naming.
type Level = slog.Level

const (
	LevelTrace Level = slog.Level(-8)
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
	LevelCrit  Level = slog.Level(12)
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelCrit:  "CRIT",
}

// Logger is the interface every component logs through.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any) // logs then os.Exit(1)
	New(ctx ...any) Logger
}

type logger struct {
	inner *slog.Logger
}

// NewTerminalHandler returns a handler that writes human-readable,
// colorless lines to w.
func NewTerminalHandler(w io.Writer, minLevel Level) slog.Handler {
	return &termHandler{w: w, minLevel: minLevel}
}

type termHandler struct {
	w        io.Writer
	minLevel Level
	attrs    []slog.Attr
}

func (h *termHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

func (h *termHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	name := levelNames[r.Level]
	if name == "" {
		name = r.Level.String()
	}
	fmt.Fprintf(&b, "%-5s [%s] %s", name, r.Time.Format("01-02|15:04:05.000"), r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	})
	b.WriteByte('\n')
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *termHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := &termHandler{w: h.w, minLevel: h.minLevel}
	n.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return n
}

func (h *termHandler) WithGroup(_ string) slog.Handler { return h }

// JSONHandler returns a handler emitting one JSON object per line, for
// production/structured collection.
func JSONHandler(w io.Writer, minLevel Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: minLevel})
}

// NewLogger builds a Logger around an slog.Handler.
func NewLogger(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

func (l *logger) log(level Level, msg string, ctx []any) {
	if level == LevelCrit {
		l.inner.Log(context.Background(), slog.LevelError, msg, ctx...)
		os.Exit(1)
	}
	l.inner.Log(context.Background(), level, msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...any)  { l.log(LevelCrit, msg, ctx) }

func (l *logger) New(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

var root atomic.Pointer[logger]

func init() {
	SetDefault(NewLogger(NewTerminalHandler(os.Stderr, LevelInfo)))
}

// SetDefault installs l as the process-wide root logger. Only Loggers
// built by NewLogger are installed as given; any other Logger
// implementation is replaced by a logger around slog.Default().
func SetDefault(l Logger) {
	lg, ok := l.(*logger)
	if !ok {
		lg = &logger{inner: slog.Default()}
	}
	root.Store(lg)
}

// Root returns the process-wide root logger.
func Root() Logger { return root.Load() }

func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { Root().Crit(msg, ctx...) }

// New returns a child of the root logger with the given context attached.
func New(ctx ...any) Logger { return Root().New(ctx...) }

// ParseLevel parses a level name, case-insensitively, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "crit":
		return LevelCrit
	default:
		return LevelInfo
	}
}

// Elapsed formats the time since the given instant, rounded to the
// millisecond, for duration-valued log fields.
func Elapsed(since time.Time) string { return time.Since(since).Round(time.Millisecond).String() }
