// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session binds the snapshot builder, the inference client, and
// the command driver into the analyze → report → (drive) cycle, exposed
// as the "ai" action of an active debugging session.
package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AleutianAI/cognitrace/internal/config"
	"github.com/AleutianAI/cognitrace/internal/debug"
	"github.com/AleutianAI/cognitrace/internal/drive"
	"github.com/AleutianAI/cognitrace/internal/inference"
	"github.com/AleutianAI/cognitrace/internal/report"
	"github.com/AleutianAI/cognitrace/internal/snapshot"
)

// Controller is the top-level state machine of one debugging session.
//
// The whole cycle runs synchronously on the goroutine that owns the
// underlying interactive session; that session is not designed for
// concurrent access, so nothing here spawns goroutines.
type Controller struct {
	builder *snapshot.Builder
	client  *inference.Client
	driver  *drive.Driver
	printer *report.Printer
	logger  *slog.Logger
	dbg     debug.Session
	confirm drive.ConfirmFunc
	sm      *StateMachine

	// failure is the active failure context for post-mortem sessions,
	// nil at a live breakpoint.
	failure *debug.Failure
}

// NewController wires a Controller for one debugging session.
//
// Inputs:
//
//	cfg - The immutable process configuration.
//	dbg - The external debugger capability.
//	printer - Terminal output sink.
//	confirm - Human confirmation capability.
//	logger - Structured logger; nil selects slog.Default().
//
// Outputs:
//
//	*Controller - The wired controller.
//	error - Non-nil if the configuration is unusable (bad truncation
//	        limit).
func NewController(cfg config.Config, dbg debug.Session, printer *report.Printer,
	confirm drive.ConfirmFunc, logger *slog.Logger) (*Controller, error) {

	if logger == nil {
		logger = slog.Default()
	}
	builder, err := snapshot.NewBuilder(cfg.MaxVarLen, logger)
	if err != nil {
		return nil, err
	}
	return &Controller{
		builder: builder,
		client:  inference.NewClient(cfg, logger),
		driver:  drive.NewDriver(printer, logger),
		printer: printer,
		logger:  logger,
		dbg:     dbg,
		confirm: confirm,
		sm:      NewStateMachine(),
	}, nil
}

// State returns the controller's current cycle state.
func (c *Controller) State() State {
	return c.sm.Current()
}

// AI runs one full diagnostic cycle: capture the current frame, query
// the backend, report the diagnosis, and, when commands were suggested
// and confirmed, drive them.
//
// Description:
//
//	The diagnosis and fix are printed unconditionally; the driving
//	phase only runs for a non-empty command list. Capture and query
//	failures have already been absorbed into degraded results by the
//	time they reach this level, so the only error AI returns is a
//	command execution failure, which must stay visible to the human.
//
// Inputs:
//
//	ctx - Context for the inference round-trip.
//	arg - Optional free-text query; "" requests a root cause analysis.
//
// Outputs:
//
//	error - A command execution failure, or an invalid invocation while
//	        a cycle is already in flight.
func (c *Controller) AI(ctx context.Context, arg string) error {
	if err := c.sm.Transition(StateAnalyzing); err != nil {
		return err
	}
	defer func() {
		// Reporting and Driving both legally return to Idle; anything
		// else means the cycle aborted partway and gets forced back.
		if err := c.sm.Transition(StateIdle); err != nil {
			c.sm.Reset()
		}
	}()

	frame := c.dbg.CurrentFrame()
	c.printer.Info("Thinking... (Analyzing Stack & Variables)")
	snap := c.builder.Capture(frame, c.failure)
	diag := c.client.Query(ctx, snap, strings.TrimSpace(arg))

	if err := c.sm.Transition(StateReporting); err != nil {
		return err
	}
	c.printer.Header("AI DIAGNOSIS")
	c.printer.Field("Diagnosis", diag.Diagnosis)
	c.printer.Field("Fix", "      "+diag.SuggestedFix)

	var driveErr error
	if len(diag.Commands) > 0 {
		if err := c.sm.Transition(StateDriving); err != nil {
			return err
		}
		driveErr = c.driver.Drive(diag.Commands, c.confirm, c.dbg.Exec)
	}

	c.printer.Footer()
	return driveErr
}

// BreakHere opens the interactive session at the debugger's current
// frame, with no failure context.
func (c *Controller) BreakHere(ctx context.Context) error {
	return c.BreakHereAt(ctx, c.dbg.CurrentFrame())
}

// BreakHereAt opens the interactive session at an explicitly captured
// frame. Callers that materialize their own frames (the demo, test
// harnesses) use this instead of BreakHere.
func (c *Controller) BreakHereAt(ctx context.Context, frame debug.Frame) error {
	c.failure = nil
	return c.dbg.Interact(frame, nil)
}

// AnalyzeCrash starts a post-mortem interaction rooted at a failure's
// frame.
//
// Description:
//
//	Resets the underlying session to a clean state, records the failure
//	so subsequent captures carry its summary, and starts the
//	interaction at the failing frame instead of a live breakpoint.
//
// Inputs:
//
//	ctx - Unused today; kept for symmetry with BreakHere.
//	failure - The in-flight failure. Must not be nil.
//	frame - The frame the failure was raised in.
func (c *Controller) AnalyzeCrash(ctx context.Context, failure *debug.Failure, frame debug.Frame) error {
	c.logger.Warn("crash detected, spawning AI agent",
		slog.String("type", failure.Type),
		slog.String("message", failure.Message),
	)
	c.printer.Warn("Crash detected! Spawning AI Agent...")

	c.dbg.Reset()
	c.failure = failure
	return c.dbg.Interact(frame, failure)
}
