// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the structured logger shared by every daemon
// component. It wraps log/slog so call sites stay terse ("component",
// key-value pairs) while the backing handler (text or JSON, stdout or
// syslog) is swapped centrally.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Format selects the slog handler used by New.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Config controls how a Logger renders records.
type Config struct {
	Level     slog.Level
	Format    Format
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns the daemon's baseline logging configuration:
// human-readable text at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// Logger is a thin wrapper around *slog.Logger that tracks the component
// name it was derived from via WithComponent, so callers don't repeat
// "component" at every call site.
type Logger struct {
	inner     *slog.Logger
	component string
}

// New constructs a Logger from cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var h slog.Handler
	switch cfg.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(out, opts)
	default:
		h = slog.NewTextHandler(out, opts)
	}
	return &Logger{inner: slog.New(h)}
}

var defaultLogger atomic.Pointer[Logger]
var defaultOnce sync.Once

// Default returns the process-wide default Logger, lazily built from
// DefaultConfig on first use. SetDefault replaces it (e.g. once the config
// file has been loaded and a different level/format is known).
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger.Store(New(DefaultConfig()))
	})
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide default Logger.
func SetDefault(l *Logger) {
	defaultOnce.Do(func() {})
	defaultLogger.Store(l)
}

// WithComponent returns a derived Logger that tags every record with
// component=name, e.g. logging.WithComponent("exchange").
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{inner: l.inner.With("component", name), component: name}
}

// With returns a derived Logger with the given key-value pairs attached to
// every subsequent record.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{inner: l.inner.With(kv...), component: l.component}
}

func (l *Logger) Debug(msg string, kv ...any) { l.log(slog.LevelDebug, msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(slog.LevelInfo, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(slog.LevelWarn, msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.log(slog.LevelError, msg, kv...) }

func (l *Logger) log(level slog.Level, msg string, kv ...any) {
	l.inner.Log(context.Background(), level, msg, kv...)
}

// Slog exposes the underlying *slog.Logger for callers that need it
// directly (e.g. to pass into a library that accepts a *slog.Logger).
func (l *Logger) Slog() *slog.Logger { return l.inner }
