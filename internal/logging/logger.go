// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging builds the process-wide structured logger.
//
// Diagnostic output always stays on stderr so it never interleaves with
// the agent's terminal report on stdout. When a log directory is
// configured, the same records are additionally appended to a daily
// JSON file for later inspection of an agent run.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config controls the logger's destinations and verbosity.
type Config struct {
	// Level is the minimum level emitted.
	Level slog.Level

	// LogDir, when non-empty, enables JSON file logging under this
	// directory. A leading ~ expands to the user's home directory.
	LogDir string

	// Service tags every record, and names the log file.
	Service string
}

// Logger wraps slog.Logger with the optional file destination's
// lifetime. Close releases the file handle; a stderr-only logger's
// Close is a no-op.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates a Logger writing to stderr and, when cfg.LogDir is set
// and writable, to {service}_{date}.log inside it. File setup failures
// are silently degraded to stderr-only: a debugging agent must never
// refuse to run because its own log file could not be opened.
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	handlers := []slog.Handler{slog.NewTextHandler(os.Stderr, opts)}

	l := &Logger{}
	if cfg.LogDir != "" {
		if file := openLogFile(cfg); file != nil {
			l.file = file
			handlers = append(handlers, slog.NewJSONHandler(file, opts))
		}
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = &multiHandler{handlers: handlers}
	}
	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	l.Logger = slog.New(handler)
	return l
}

// Close flushes and releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func openLogFile(cfg Config) *os.File {
	dir := expandPath(cfg.LogDir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil
	}
	service := cfg.Service
	if service == "" {
		service = "cognitrace"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil
	}
	return file
}

func expandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// multiHandler fans each record out to every destination.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}
