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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NoException is the Exception sentinel for snapshots captured at a live
// breakpoint rather than post-mortem.
const NoException = "Breakpoint (No Exception)"

// SourceLine is one annotated line of the source window.
type SourceLine struct {
	// Number is the 1-based line number.
	Number int

	// Text is the raw source text, trailing whitespace removed.
	Text string

	// Current marks the line the frame is stopped at.
	Current bool
}

// String renders the line the way it appears in prompts:
// "--> 42: total / threshold" for the current line, four spaces otherwise.
func (l SourceLine) String() string {
	prefix := "    "
	if l.Current {
		prefix = "--> "
	}
	return fmt.Sprintf("%s%d: %s", prefix, l.Number, l.Text)
}

// Variable is one captured local binding: its name and the bounded
// rendering of its value.
type Variable struct {
	Name string
	Repr string
}

// Variables preserves the frame's binding order, which a Go map would
// destroy. It marshals to a JSON object with keys in that order.
type Variables []Variable

// MarshalJSON implements json.Marshaler.
func (vs Variables) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range vs {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		repr, err := json.Marshal(v.Repr)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(repr)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Snapshot is the bounded textual capture of one frame's diagnostic state.
//
// A Snapshot is a value object: constructed once per analysis request,
// never mutated, owned solely by the call that produced it. Every string
// it carries is bounded by the builder's configured maximum length.
type Snapshot struct {
	// Function is the name of the function owning the captured frame.
	Function string

	// Line is the 1-based current line number.
	Line int

	// Source is the annotated window around Line: at most 11 lines,
	// exactly one marked current. A single placeholder line substitutes
	// when the source cannot be resolved.
	Source []SourceLine

	// Variables are the frame's locals in binding order, each rendered
	// within the length bound.
	Variables Variables

	// Exception is the one-line failure summary, or the NoException
	// sentinel at a live breakpoint.
	Exception string
}

// SourceText joins the source window into the multi-line block embedded
// in prompts.
func (s Snapshot) SourceText() string {
	lines := make([]string, len(s.Source))
	for i, l := range s.Source {
		lines[i] = l.String()
	}
	return strings.Join(lines, "\n")
}
