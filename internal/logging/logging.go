// Package logging owns the process-wide slog logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey struct{}

var (
	once sync.Once
	base *slog.Logger

	stdout io.Writer = os.Stdout
)

// Options configures the global logger.
type Options struct {
	Level string // debug, info, warn or error
	File  string // rotated log file; stdout only when empty
}

// Init configures the global logger exactly once.
func Init(component string, opts Options) *slog.Logger {
	once.Do(func() {
		w := stdout
		if opts.File != "" {
			_ = os.MkdirAll(filepath.Dir(opts.File), 0o755)
			rot := &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    50, // MB
				MaxBackups: 3,
				MaxAge:     7, // days
			}
			w = io.MultiWriter(stdout, rot)
		}
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
		base = slog.New(h).With("component", component)
	})
	return base
}

// Base returns the global logger, initialising a stdout logger if needed.
func Base() *slog.Logger {
	return Init("app", Options{})
}

// New returns a child of the global logger tagged with module. The process
// component set by Init is kept.
func New(module string) *slog.Logger {
	return Base().With("module", module)
}

// WithCtx stores l in ctx.
func WithCtx(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromCtx returns the request-scoped logger or the global one.
func FromCtx(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return Base()
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
