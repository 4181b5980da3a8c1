// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"bufio"
	"io"
	"strings"

	"github.com/AleutianAI/cognitrace/internal/drive"
	"github.com/AleutianAI/cognitrace/internal/report"
)

// NewReaderConfirm builds the human-in-the-loop confirmation capability.
//
// Description:
//
//	Prints the prompt through the printer and blocks for one line of
//	input. Only the exact affirmative token "y" (case-insensitive,
//	surrounding whitespace ignored) authorizes; anything else,
//	including empty input or a closed reader, denies.
//
// Inputs:
//
//	r - Input source, normally os.Stdin.
//	printer - Output sink for the prompt.
//
// Outputs:
//
//	drive.ConfirmFunc - The blocking confirmation capability.
func NewReaderConfirm(r io.Reader, printer *report.Printer) drive.ConfirmFunc {
	scanner := bufio.NewScanner(r)
	return func(prompt string) bool {
		printer.Prompt(prompt)
		if !scanner.Scan() {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(scanner.Text()), "y")
	}
}
