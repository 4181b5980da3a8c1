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
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/cognitrace/internal/report"
)

const healthProbeTimeout = 5 * time.Second

// healthReport is the machine-readable shape for --json output.
type healthReport struct {
	BackendURL     string   `json:"backend_url"`
	Reachable      bool     `json:"reachable"`
	Error          string   `json:"error,omitempty"`
	Models         []string `json:"models,omitempty"`
	ConfiguredOK   bool     `json:"configured_model_available"`
	ConfiguredName string   `json:"configured_model"`
}

// runHealthCommand is the Run handler for "cognitrace health".
//
// # Description
//
// Probes the Ollama instance behind the configured generate endpoint
// via its tag listing API and reports whether the configured model is
// pulled. A failed probe exits non-zero so the command works as a
// scripting guard before starting a debugging session.
func runHealthCommand(cmd *cobra.Command, args []string) {
	printer := report.NewPrinter(os.Stdout)
	rep := probeBackend(cmd.Context())

	if healthJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			printer.Error("encoding health report: %v", err)
		}
	} else {
		printHealthReport(printer, rep)
	}

	if !rep.Reachable {
		os.Exit(1)
	}
}

func probeBackend(ctx context.Context) healthReport {
	rep := healthReport{
		BackendURL:     baseURL(cfg.OllamaURL),
		ConfiguredName: cfg.Model,
	}

	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rep.BackendURL+"/api/tags", nil)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rep.Error = fmt.Sprintf("backend returned status %d", resp.StatusCode)
		return rep
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		rep.Error = fmt.Sprintf("decoding tag list: %v", err)
		return rep
	}

	rep.Reachable = true
	for _, m := range tags.Models {
		rep.Models = append(rep.Models, m.Name)
		if m.Name == cfg.Model || strings.TrimSuffix(m.Name, ":latest") == cfg.Model {
			rep.ConfiguredOK = true
		}
	}
	return rep
}

func printHealthReport(printer *report.Printer, rep healthReport) {
	if !rep.Reachable {
		printer.Error("Ollama backend %s is unreachable: %s", rep.BackendURL, rep.Error)
		printer.Info("Start Ollama, or point OLLAMA_URL at a running instance.")
		return
	}
	printer.Info("Ollama backend %s is up (%d models pulled)", rep.BackendURL, len(rep.Models))
	if rep.ConfiguredOK {
		printer.Info("Configured model %q is available.", rep.ConfiguredName)
	} else {
		printer.Warn("Configured model %q is not pulled; run: ollama pull %s",
			rep.ConfiguredName, rep.ConfiguredName)
	}
}

// baseURL strips the generate endpoint path so the other Ollama APIs
// can be reached from the same configured value.
func baseURL(generateURL string) string {
	return strings.TrimSuffix(strings.TrimRight(generateURL, "/"), "/api/generate")
}
