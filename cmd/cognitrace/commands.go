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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	verbose    bool
	logDir     string // Optional directory for JSON file logs
	demoQuery  string // Free-text query forwarded to the model
	demoBreak  bool   // Stop at a live breakpoint instead of crashing
	healthJSON bool   // Output the health report as JSON

	rootCmd = &cobra.Command{
		Use:   "cognitrace",
		Short: "An LLM-assisted debugging agent backed by a local Ollama instance",
		Long: `Cognitrace attaches an AI analyst to a debugging session. When a
breakpoint or crash is reached it snapshots the paused frame, asks a
local model for a diagnosis, and can drive the model's suggested
debugger commands after human confirmation.`,
	}

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in crash scenario and let the agent analyze it",
		Run:   runDemo, // Defined in cmd_demo.go
	}

	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check that the configured Ollama backend is reachable and serves the model",
		Run:   runHealthCommand, // Defined in cmd_health.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"Additionally write JSON logs to this directory (supports ~)")

	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVarP(&demoQuery, "query", "q", "",
		"Question for the model; empty requests a root cause analysis")
	demoCmd.Flags().BoolVar(&demoBreak, "breakpoint", false,
		"Stop at a live breakpoint before the crash instead of crashing")

	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Output as JSON")
}
