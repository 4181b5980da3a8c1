// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/cognitrace/internal/debug"
)

// writeSource writes a numbered source file with n lines and returns its
// path. Line i reads "line i".
func writeSource(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(500, nil)
	require.NoError(t, err)
	return b
}

func TestNewBuilder_RejectsNonPositiveLimit(t *testing.T) {
	_, err := NewBuilder(0, nil)
	assert.Error(t, err)
	_, err = NewBuilder(-5, nil)
	assert.Error(t, err)
}

func TestCapture_BreakpointScenario(t *testing.T) {
	// Frame with locals {x: 10, y: 0}, no active exception.
	path := writeSource(t, 80)
	frame := &debug.StaticFrame{
		Func:     "riskyDivision",
		Filename: path,
		Lineno:   42,
		Bindings: []debug.Binding{
			{Name: "x", Value: 10},
			{Name: "y", Value: 0},
		},
	}

	b := newTestBuilder(t)
	snap := b.Capture(frame, nil)

	assert.Equal(t, NoException, snap.Exception)
	assert.Equal(t, "riskyDivision", snap.Function)
	assert.Equal(t, 42, snap.Line)
	require.Len(t, snap.Variables, 2)
	assert.Equal(t, Variable{Name: "x", Repr: "10"}, snap.Variables[0])
	assert.Equal(t, Variable{Name: "y", Repr: "0"}, snap.Variables[1])
}

func TestCapture_PostMortemScenario(t *testing.T) {
	path := writeSource(t, 80)
	frame := &debug.StaticFrame{
		Func:     "riskyDivision",
		Filename: path,
		Lineno:   42,
		Bindings: []debug.Binding{
			{Name: "x", Value: 10},
			{Name: "y", Value: 0},
		},
	}

	divide := func(x, y int) (result int, failure *debug.Failure) {
		defer func() {
			failure = debug.FailureFromPanic(recover())
		}()
		return x / y, nil
	}
	_, failure := divide(10, 0)
	require.NotNil(t, failure)

	b := newTestBuilder(t)
	snap := b.Capture(frame, failure)

	assert.Contains(t, snap.Exception, "divide by zero")
	assert.NotEqual(t, NoException, snap.Exception)
}

func TestCapture_SourceWindowCenter(t *testing.T) {
	path := writeSource(t, 100)
	frame := &debug.StaticFrame{Func: "f", Filename: path, Lineno: 42}

	snap := newTestBuilder(t).Capture(frame, nil)

	require.Len(t, snap.Source, 11)
	assert.Equal(t, 37, snap.Source[0].Number)
	assert.Equal(t, 47, snap.Source[10].Number)

	current := 0
	for _, l := range snap.Source {
		if l.Current {
			current++
			assert.Equal(t, 42, l.Number)
			assert.Equal(t, "--> 42: line 42", l.String())
		} else {
			assert.True(t, strings.HasPrefix(l.String(), "    "))
		}
	}
	assert.Equal(t, 1, current)
}

func TestCapture_SourceWindowClampsAtLineOne(t *testing.T) {
	path := writeSource(t, 100)
	frame := &debug.StaticFrame{Func: "f", Filename: path, Lineno: 2}

	snap := newTestBuilder(t).Capture(frame, nil)

	// Lines 1..7: clamped low end, nothing below line 1 requested.
	require.Len(t, snap.Source, 7)
	assert.Equal(t, 1, snap.Source[0].Number)
	assert.True(t, snap.Source[1].Current)
}

func TestCapture_SourceWindowAtEOF(t *testing.T) {
	path := writeSource(t, 44)
	frame := &debug.StaticFrame{Func: "f", Filename: path, Lineno: 42}

	snap := newTestBuilder(t).Capture(frame, nil)

	// Lines 37..44 only; the window never exceeds 11 lines.
	require.Len(t, snap.Source, 8)
	assert.Equal(t, 44, snap.Source[7].Number)
}

func TestCapture_MissingSourceDegrades(t *testing.T) {
	frame := &debug.StaticFrame{
		Func:     "ghost",
		Filename: "/no/such/file.go",
		Lineno:   10,
	}

	snap := newTestBuilder(t).Capture(frame, nil)

	require.Len(t, snap.Source, 1)
	assert.True(t, snap.Source[0].Current)
	assert.Contains(t, snap.Source[0].Text, "<Source not available for /no/such/file.go>")
}

func TestCapture_NilFrameDegrades(t *testing.T) {
	snap := newTestBuilder(t).Capture(nil, debug.FailureFromError(errors.New("boom")))

	assert.Equal(t, "<unknown>", snap.Function)
	assert.Equal(t, 1, snap.Line)
	require.Len(t, snap.Source, 1)
	assert.Contains(t, snap.Exception, "boom")
}

func TestCapture_VariablesRespectBound(t *testing.T) {
	frame := &debug.StaticFrame{
		Func:   "bulk",
		Lineno: 1,
		Bindings: []debug.Binding{
			{Name: "blob", Value: strings.Repeat("z", 1<<16)},
			{Name: "rows", Value: make([]int, 100000)},
		},
	}

	b, err := NewBuilder(120, nil)
	require.NoError(t, err)
	snap := b.Capture(frame, nil)

	for _, v := range snap.Variables {
		assert.LessOrEqual(t, len(v.Repr), 120, "variable %s", v.Name)
	}
}

func TestVariables_MarshalPreservesOrder(t *testing.T) {
	vars := Variables{
		{Name: "zeta", Repr: "1"},
		{Name: "alpha", Repr: "2"},
	}

	data, err := vars.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":"2"}`, string(data))
}
