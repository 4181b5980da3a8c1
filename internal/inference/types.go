// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package inference

// Diagnosis is the structured result of one inference round-trip.
//
// A Diagnosis is constructed exactly once per query and never mutated.
// Every failure mode of the client still yields a valid Diagnosis, so
// callers never branch on an error.
type Diagnosis struct {
	// Diagnosis is the model's root-cause analysis (or, on failure, a
	// description of what went wrong with the round-trip).
	Diagnosis string `json:"diagnosis"`

	// SuggestedFix is the model's proposed fix.
	SuggestedFix string `json:"suggested_fix"`

	// Commands is the ordered sequence of debugger commands the model
	// suggests running. Empty on every failure path.
	Commands []string `json:"pdb_commands"`
}

// Ollama /api/generate wire types.

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumCtx      int     `json:"num_ctx"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
