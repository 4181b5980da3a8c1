// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package snapshot turns an opaque execution frame into a bounded,
// serializable diagnostic record.
//
// The builder's single guarantee is that Capture never fails: any field it
// cannot resolve degrades to a placeholder, and every rendered string
// respects the configured length bound no matter what the underlying
// runtime values look like.
package snapshot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/cognitrace/internal/debug"
)

// windowRadius is how many lines the source window extends on each side
// of the current line (11 lines total).
const windowRadius = 5

// Builder captures frames into Snapshots.
//
// The truncation limit is injected explicitly through NewBuilder; there is
// no ambient configuration lookup and no silent fallback limit.
type Builder struct {
	maxVarLen int
	cache     *SourceCache
	logger    *slog.Logger
}

// NewBuilder creates a Builder with the given truncation limit.
//
// Inputs:
//
//	maxVarLen - Hard cap for every rendered string field. Must be > 0;
//	            non-positive values are rejected.
//
// Outputs:
//
//	*Builder - The configured builder.
//	error - Non-nil if maxVarLen is not positive.
func NewBuilder(maxVarLen int, logger *slog.Logger) (*Builder, error) {
	if maxVarLen <= 0 {
		return nil, fmt.Errorf("snapshot: maxVarLen must be positive, got %d", maxVarLen)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		maxVarLen: maxVarLen,
		cache:     NewSourceCache(),
		logger:    logger,
	}, nil
}

// Capture produces the bounded diagnostic record for one frame.
//
// Description:
//
//	Capture never fails. A nil frame, unreadable source, or a value
//	whose rendering panics all degrade the affected field to a
//	placeholder after logging a warning; the remaining fields are still
//	captured. Side effects: none beyond the source line cache.
//
// Inputs:
//
//	frame - The frame to capture. May be nil.
//	failure - The active failure for post-mortem captures, or nil at a
//	          live breakpoint.
//
// Outputs:
//
//	Snapshot - The captured record.
func (b *Builder) Capture(frame debug.Frame, failure *debug.Failure) Snapshot {
	snap := Snapshot{Exception: NoException}
	if failure != nil {
		snap.Exception = clamp(failure.Summary(), b.maxVarLen)
	}

	if frame == nil {
		b.logger.Warn("snapshot capture without a frame, degrading to placeholders")
		snap.Function = "<unknown>"
		snap.Line = 1
		snap.Source = []SourceLine{{Number: 1, Text: "<Source not available>", Current: true}}
		return snap
	}

	snap.Function = clamp(frame.Function(), b.maxVarLen)
	snap.Line = frame.Line()
	if snap.Line < 1 {
		snap.Line = 1
	}

	snap.Variables = b.captureLocals(frame)
	snap.Source = b.sourceWindow(frame.File(), snap.Line)
	return snap
}

// captureLocals renders each binding within the length bound. A panic
// while rendering one value (hostile Stringer, bad reflection edge case)
// degrades that one variable, not the capture.
func (b *Builder) captureLocals(frame debug.Frame) Variables {
	locals := frame.Locals()
	vars := make(Variables, 0, len(locals))
	for _, binding := range locals {
		vars = append(vars, Variable{
			Name: binding.Name,
			Repr: b.safeRepr(binding.Name, binding.Value),
		})
	}
	return vars
}

func (b *Builder) safeRepr(name string, value any) (repr string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("variable rendering panicked, substituting placeholder",
				slog.String("variable", name),
				slog.Any("panic", r),
			)
			repr = clamp("<unrenderable>", b.maxVarLen)
		}
	}()
	return reprValue(value, b.maxVarLen)
}

// sourceWindow resolves the 11 lines centered on lineno. Source retrieval
// failure must never abort the snapshot, so an unresolvable file yields a
// single explanatory placeholder line.
func (b *Builder) sourceWindow(path string, lineno int) []SourceLine {
	start := lineno - windowRadius
	if start < 1 {
		start = 1
	}

	var window []SourceLine
	hasCurrent := false
	for i := start; i <= lineno+windowRadius; i++ {
		text, ok := b.cache.Line(path, i)
		if !ok {
			continue
		}
		if i == lineno {
			hasCurrent = true
		}
		window = append(window, SourceLine{
			Number:  i,
			Text:    clamp(strings.TrimRight(text, " \t\r\n"), b.maxVarLen),
			Current: i == lineno,
		})
	}

	// A window that misses the current line (stale cache, file shorter
	// than the reported location) is as useless as no window at all.
	if len(window) == 0 || !hasCurrent {
		b.logger.Warn("could not resolve source, substituting placeholder",
			slog.String("file", path),
			slog.Int("line", lineno),
		)
		return []SourceLine{{
			Number:  lineno,
			Text:    clamp(fmt.Sprintf("<Source not available for %s>", path), b.maxVarLen),
			Current: true,
		}}
	}
	return window
}
