// internal/obslog/log.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package obslog provides the planner's structured logging wrapper.
// Core planner code never requires a logger: every method here is safe
// to call on a nil *Logger, so callers that don't want logging pass nil.
package obslog

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps *slog.Logger with call-stack enrichment and a nil-receiver
// contract: a nil *Logger silently discards Debug/Info and falls back to
// the default slog logger for Warn/Error, matching the convention that a
// caller who doesn't supply a logger still sees things that went wrong.
type Logger struct {
	*slog.Logger
	LogFile string
	Start   time.Time
}

// New creates a file-backed Logger that rotates via lumberjack. dir is
// the directory the log file lives in; filename is the base name (e.g.
// "aerosweep.log").
func New(dir, filename, level string) *Logger {
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, filename),
		MaxSize:    32, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}

	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{
		Logger:  slog.New(h),
		LogFile: w.Filename,
		Start:   time.Now(),
	}
}

// Debug logs at debug level with a call stack, discarding the call
// entirely on a nil receiver.
func (l *Logger) Debug(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, slog.LevelDebug) {
		args = append([]any{slog.Any("callstack", callstack())}, args...)
		l.Logger.Debug(msg, args...)
	}
}

// Debugf is a printf-style convenience wrapper around Debug.
func (l *Logger) Debugf(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, slog.LevelDebug) {
		l.Logger.Debug(fmt.Sprintf(msg, args...), slog.Any("callstack", callstack()))
	}
}

// Info logs at info level, discarding the call entirely on a nil receiver.
func (l *Logger) Info(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, slog.LevelInfo) {
		args = append([]any{slog.Any("callstack", callstack())}, args...)
		l.Logger.Info(msg, args...)
	}
}

// Infof is a printf-style convenience wrapper around Info.
func (l *Logger) Infof(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(nil, slog.LevelInfo) {
		l.Logger.Info(fmt.Sprintf(msg, args...), slog.Any("callstack", callstack()))
	}
}

// Warn logs at warn level. On a nil receiver it falls through to the
// package-level slog default so warnings are never silently dropped.
func (l *Logger) Warn(msg string, args ...any) {
	args = append([]any{slog.Any("callstack", callstack())}, args...)
	if l == nil {
		slog.Warn(msg, args...)
	} else {
		l.Logger.Warn(msg, args...)
	}
}

// Warnf is a printf-style convenience wrapper around Warn.
func (l *Logger) Warnf(msg string, args ...any) {
	if l == nil {
		slog.Warn(fmt.Sprintf(msg, args...), slog.Any("callstack", callstack()))
	} else {
		l.Logger.Warn(fmt.Sprintf(msg, args...), slog.Any("callstack", callstack()))
	}
}

// Error logs at error level on both the receiver (if non-nil) and the
// package-level default logger, so errors always reach somewhere.
func (l *Logger) Error(msg string, args ...any) {
	args = append([]any{slog.Any("callstack", callstack())}, args...)
	slog.Error(msg, args...)
	if l != nil {
		l.Logger.Error(msg, args...)
	}
}

// Errorf is a printf-style convenience wrapper around Error.
func (l *Logger) Errorf(msg string, args ...any) {
	slog.Error(fmt.Sprintf(msg, args...), slog.Any("callstack", callstack()))
	if l != nil {
		l.Logger.Error(fmt.Sprintf(msg, args...), slog.Any("callstack", callstack()))
	}
}

// With returns a Logger with the given structured attributes attached to
// every subsequent record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		Logger:  l.Logger.With(args...),
		LogFile: l.LogFile,
		Start:   l.Start,
	}
}

func callstack() []string {
	var pcs [8]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var out []string
	for {
		frame, more := frames.Next()
		fn := strings.TrimPrefix(frame.Function, "github.com/skylinesurvey/aerosweep/")
		out = append(out, fmt.Sprintf("%s:%d:%s", filepath.Base(frame.File), frame.Line, fn))
		if !more || len(out) >= 8 {
			break
		}
	}
	return out
}
