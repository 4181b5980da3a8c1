// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package debug

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrUnknownCommand is returned by ScriptedSession.Exec for commands
// outside its small built-in set.
var ErrUnknownCommand = errors.New("unknown debugger command")

// ScriptedSession is a minimal in-process Session implementation.
//
// Description:
//
//	ScriptedSession holds a single materialized frame and answers the
//	handful of inspection commands the agent's demo needs: "p NAME"
//	prints a binding, "locals" prints them all, "where" prints the
//	location. Everything else fails with ErrUnknownCommand, which
//	exercises the driver's abort-on-failure path.
//
//	OnInteract, when set, is invoked by Interact; the demo wires it to
//	the session controller's analysis cycle.
type ScriptedSession struct {
	// Out receives command output. Defaults to io.Discard when nil.
	Out io.Writer

	// OnInteract is called when the interactive loop opens.
	OnInteract func(frame Frame, failure *Failure) error

	// Executed records every command run through Exec, in order.
	Executed []string

	frame Frame
}

// NewScriptedSession creates a session stopped at the given frame.
func NewScriptedSession(frame Frame, out io.Writer) *ScriptedSession {
	if out == nil {
		out = io.Discard
	}
	return &ScriptedSession{Out: out, frame: frame}
}

// CurrentFrame implements Session.
func (s *ScriptedSession) CurrentFrame() Frame { return s.frame }

// Reset implements Session. It clears the command history so a new
// interaction starts clean.
func (s *ScriptedSession) Reset() {
	s.Executed = nil
}

// Interact implements Session.
func (s *ScriptedSession) Interact(frame Frame, failure *Failure) error {
	s.frame = frame
	if s.OnInteract == nil {
		slog.Warn("ScriptedSession.Interact called without a handler")
		return nil
	}
	return s.OnInteract(frame, failure)
}

// Exec implements Session.
func (s *ScriptedSession) Exec(command string) error {
	s.Executed = append(s.Executed, command)

	name, arg := splitCommand(command)
	switch name {
	case "p", "print":
		return s.printBinding(arg)
	case "locals":
		for _, b := range s.frame.Locals() {
			fmt.Fprintf(s.Out, "%s = %v\n", b.Name, b.Value)
		}
		return nil
	case "where", "w":
		fmt.Fprintf(s.Out, "%s at %s:%d\n", s.frame.Function(), s.frame.File(), s.frame.Line())
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

func (s *ScriptedSession) printBinding(name string) error {
	for _, b := range s.frame.Locals() {
		if b.Name == name {
			fmt.Fprintf(s.Out, "%v\n", b.Value)
			return nil
		}
	}
	return fmt.Errorf("%w: no local named %q", ErrUnknownCommand, name)
}

func splitCommand(command string) (name, arg string) {
	name, arg, _ = strings.Cut(strings.TrimSpace(command), " ")
	return name, strings.TrimSpace(arg)
}
