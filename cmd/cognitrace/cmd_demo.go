// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/cognitrace/internal/debug"
	"github.com/AleutianAI/cognitrace/internal/report"
	"github.com/AleutianAI/cognitrace/internal/session"
)

// runDemo is the Run handler for "cognitrace demo".
//
// # Description
//
// Reproduces the canonical failing scenario: a calculation that divides
// by a zero threshold. The resulting panic is recovered, converted into
// a failure record, and handed to the session controller, which spawns
// the AI analysis cycle over the crashed frame. With --breakpoint the
// demo instead pauses before the crash and runs the cycle against the
// live frame.
//
// # Examples
//
//	cognitrace demo                       # Crash, then post-mortem analysis
//	cognitrace demo --breakpoint          # Analyze the paused frame instead
//	cognitrace demo -q "why is y zero?"   # Forward a specific question
func runDemo(cmd *cobra.Command, args []string) {
	printer := report.NewPrinter(os.Stdout)
	dbg := debug.NewScriptedSession(nil, os.Stdout)
	confirm := session.NewReaderConfirm(os.Stdin, printer)

	controller, err := session.NewController(cfg, dbg, printer, confirm, nil)
	if err != nil {
		log.Fatalf("Error wiring session controller: %v", err)
	}

	// The interactive loop in this demo is a single analysis cycle; a
	// real debugger integration would keep reading commands afterwards.
	dbg.OnInteract = func(frame debug.Frame, failure *debug.Failure) error {
		return controller.AI(cmd.Context(), demoQuery)
	}

	if err := riskyCalculation(cmd.Context(), controller); err != nil {
		printer.Error("demo session failed: %v", err)
		os.Exit(1)
	}
}

// riskyCalculation walks a dataset dividing each element by a threshold
// that is, deliberately, zero.
func riskyCalculation(ctx context.Context, controller *session.Controller) error {
	data := []int{10, 20, 50, 99}
	threshold := 0
	results := make([]int, 0, len(data))

	frame := debug.CaptureFrame(0).WithLocals(
		debug.Binding{Name: "data", Value: data},
		debug.Binding{Name: "threshold", Value: threshold},
		debug.Binding{Name: "results", Value: results},
	)

	if demoBreak {
		return controller.BreakHereAt(ctx, frame)
	}

	failure := func() (f *debug.Failure) {
		defer func() { f = debug.FailureFromPanic(recover()) }()
		for _, d := range data {
			results = append(results, d/threshold)
		}
		return nil
	}()
	if failure == nil {
		return nil
	}
	return controller.AnalyzeCrash(ctx, failure, frame)
}
