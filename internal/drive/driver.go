// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package drive executes a model-provided command sequence against the
// live debugging session, gated by human confirmation.
package drive

import (
	"fmt"
	"log/slog"

	"github.com/AleutianAI/cognitrace/internal/report"
)

// ConfirmFunc asks the human for authorization. Implementations block
// until an answer is available.
type ConfirmFunc func(prompt string) bool

// ExecFunc runs one command string against the live session.
type ExecFunc func(command string) error

// Driver presents suggested commands, asks for confirmation, and runs
// them strictly in order through an injected execution capability.
type Driver struct {
	printer *report.Printer
	logger  *slog.Logger
}

// NewDriver creates a Driver writing through the given printer.
func NewDriver(printer *report.Printer, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{printer: printer, logger: logger}
}

// Drive runs one confirmed command-execution pass.
//
// Description:
//
//	An empty command list is a no-op: no prompt, no execution, nil
//	error. Otherwise the list is presented as a 1-based enumeration and
//	confirm is asked exactly once. Denial skips execution (logged, nil
//	error). On approval, each command is echoed immediately before it
//	runs. The first execution failure aborts the pass and propagates:
//	later commands may depend on state the failed one was supposed to
//	mutate, and the session has no transaction isolation, so continuing
//	after an unknown failure is unsafe.
//
// Inputs:
//
//	commands - Ordered command strings. May be empty.
//	confirm - Confirmation capability. Must not be nil when commands is
//	          non-empty.
//	execute - Command-execution capability of the debugger session.
//
// Outputs:
//
//	error - The first command's execution error, or nil.
func (d *Driver) Drive(commands []string, confirm ConfirmFunc, execute ExecFunc) error {
	if len(commands) == 0 {
		return nil
	}

	d.printer.List("Suggested Autonomous Commands", commands)

	if !confirm("Execute these commands autonomously?") {
		d.logger.Info("autonomous commands declined")
		d.printer.Info("Skipped autonomous commands.")
		return nil
	}

	d.printer.Info("Taking the wheel...")
	for _, cmd := range commands {
		d.printer.Command(cmd)
		if err := execute(cmd); err != nil {
			return fmt.Errorf("autonomous command %q failed: %w", cmd, err)
		}
	}
	return nil
}
