// Package logging builds the process logger: an in-memory ring of recent
// records, optionally teed to a size-rotated JSON log file.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Defaults applied by Setup for zero Config fields.
const (
	DefaultBufferSize = 1000
	DefaultMaxSizeMB  = 10
	DefaultMaxFiles   = 5
)

// Config describes the logger. File is optional.
type Config struct {
	Level      slog.Level
	File       string
	MaxSizeMB  int
	MaxFiles   int // negative selects DefaultMaxFiles; zero keeps no backups
	BufferSize int
}

// ParseLevel parses debug, info, warn or error. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Logger bundles the configured slog.Logger with the ring it writes to.
type Logger struct {
	*slog.Logger
	Ring *RingHandler
	file io.Closer
}

// Setup builds a Logger from cfg.
func Setup(cfg Config) (*Logger, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	ring := NewRingHandler(cfg.BufferSize, cfg.Level)
	l := &Logger{Ring: ring}

	var handler slog.Handler = ring
	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = DefaultMaxSizeMB
		}
		maxFiles := cfg.MaxFiles
		if maxFiles < 0 {
			maxFiles = DefaultMaxFiles
		}
		w, err := NewRotatingFileWriter(cfg.File, maxSize, maxFiles)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		l.file = w
		handler = teeHandler{ring, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level})}
	}

	l.Logger = slog.New(handler)
	return l, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// teeHandler fans records out to several handlers.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
