// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger wraps log/slog with the severity vocabulary every command
// handler and collaborator in this repository logs through: TRACE, DEBUG,
// INFO, WARNING, ERROR, and OFF, rendered as either JSON or key=value text.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Custom severities. slog's built-in levels (Debug=-4..Error=8) don't carry
// a TRACE level below Debug or an OFF sentinel above Error, so both are
// defined relative to them.
const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
	LevelOff   slog.Level = 1 << 20
)

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARNING",
	LevelError: "ERROR",
}

// ParseLevel maps a severity name (case-insensitive) to its slog.Level.
// Unrecognized names fall back to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARNING", "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

type factory struct {
	levelVar *slog.LevelVar
	format   string // "json" or "text"
	writer   io.Writer
}

var defaultFactory = &factory{
	levelVar: func() *slog.LevelVar { v := new(slog.LevelVar); v.Set(LevelInfo); return v }(),
	format:   "text",
	writer:   os.Stderr,
}

var defaultLogger = slog.New(defaultFactory.handler())

func (f *factory) handler() slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey {
			level := a.Value.Any().(slog.Level)
			name, ok := levelNames[level]
			if !ok {
				name = level.String()
			}
			return slog.String("severity", name)
		}
		return a
	}

	opts := &slog.HandlerOptions{Level: f.levelVar, ReplaceAttr: replace}

	if f.format == "json" {
		return slog.NewJSONHandler(f.writer, opts)
	}
	return slog.NewTextHandler(f.writer, opts)
}

// SetFormat switches the default logger between "text" and "json" output.
func SetFormat(format string) {
	defaultFactory.format = format
	defaultLogger = slog.New(defaultFactory.handler())
}

// SetLevel sets the minimum severity the default logger emits.
func SetLevel(level slog.Level) {
	defaultFactory.levelVar.Set(level)
}

// SetOutput redirects the default logger's writer, primarily for tests.
func SetOutput(w io.Writer) {
	defaultFactory.writer = w
	defaultLogger = slog.New(defaultFactory.handler())
}

func logf(level slog.Level, format string, args ...any) {
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	defaultLogger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

func Tracef(format string, args ...any) { logf(LevelTrace, format, args...) }
func Debugf(format string, args ...any) { logf(LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(LevelError, format, args...) }
