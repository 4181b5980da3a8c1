// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package debug defines the capability surface CogniTrace requires from an
// interactive debugger runtime.
//
// The agent never depends on a concrete debugger implementation. Any
// runtime that can expose its current frame, execute one command string,
// and reset/start an interaction is substitutable. The package also ships
// ScriptedSession, a minimal in-process implementation used by the demo
// binary and the tests.
package debug

import (
	"fmt"
	"runtime"
)

// Binding is one named local value visible in a frame. Bindings are
// ordered; the order is the frame's declaration order and is preserved
// all the way into the snapshot.
type Binding struct {
	Name  string
	Value any
}

// Frame is the runtime representation of one active function invocation.
type Frame interface {
	// Function returns the name of the function owning the frame.
	Function() string

	// File returns the source file path, or "" when unknown.
	File() string

	// Line returns the 1-based current line number.
	Line() int

	// Locals returns the visible local bindings in declaration order.
	Locals() []Binding
}

// Failure describes an in-flight error or panic being analyzed
// post-mortem.
type Failure struct {
	// Type is the failure's type name (e.g. "runtime.Error").
	Type string

	// Message is the failure's message text.
	Message string
}

// Summary renders the one-line TYPE: MESSAGE form used in snapshots.
func (f *Failure) Summary() string {
	return fmt.Sprintf("%s: %s", f.Type, f.Message)
}

// FailureFromError builds a Failure from an error value.
func FailureFromError(err error) *Failure {
	if err == nil {
		return nil
	}
	return &Failure{Type: fmt.Sprintf("%T", err), Message: err.Error()}
}

// FailureFromPanic builds a Failure from a recovered panic value.
//
// Errors keep their dynamic type name; any other value is reported as a
// generic panic with its formatted content.
func FailureFromPanic(v any) *Failure {
	if v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		return FailureFromError(err)
	}
	return &Failure{Type: "panic", Message: fmt.Sprint(v)}
}

// Session is the command-execution capability of the external interactive
// debugger. Its command results and side effects are opaque to the agent.
//
// Session implementations are not required to be safe for concurrent use;
// the whole analyze/report/drive cycle runs on the one goroutine that owns
// the session.
type Session interface {
	// CurrentFrame returns the frame the session is stopped at.
	CurrentFrame() Frame

	// Exec runs one command string against live session state.
	Exec(command string) error

	// Reset restores the session to a clean state before a new
	// interaction (post-mortem entry uses this).
	Reset()

	// Interact opens the interactive loop rooted at the given frame,
	// with failure non-nil for post-mortem sessions.
	Interact(frame Frame, failure *Failure) error
}

// StaticFrame is a concrete Frame backed by plain values. It is produced
// by CaptureFrame and by debugger runtimes that materialize frames ahead
// of time.
type StaticFrame struct {
	Func     string
	Filename string
	Lineno   int
	Bindings []Binding
}

func (f *StaticFrame) Function() string  { return f.Func }
func (f *StaticFrame) File() string      { return f.Filename }
func (f *StaticFrame) Line() int         { return f.Lineno }
func (f *StaticFrame) Locals() []Binding { return f.Bindings }

// WithLocals returns a copy of the frame carrying the given bindings.
// Go cannot introspect another function's locals, so callers hand the
// agent the values they want visible.
func (f *StaticFrame) WithLocals(bindings ...Binding) *StaticFrame {
	clone := *f
	clone.Bindings = bindings
	return &clone
}

// CaptureFrame snapshots the caller's code location as a StaticFrame.
//
// Inputs:
//
//	skip - Stack frames to skip above the caller (0 = the direct caller).
//
// Outputs:
//
//	*StaticFrame - The captured frame. Never nil; unknown locations
//	               degrade to "<unknown>" with line 1.
func CaptureFrame(skip int) *StaticFrame {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return &StaticFrame{Func: "<unknown>", Lineno: 1}
	}
	fn := runtime.FuncForPC(pc)
	name := "<unknown>"
	if fn != nil {
		name = fn.Name()
	}
	return &StaticFrame{Func: name, Filename: file, Lineno: line}
}
