// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package inference performs the single blocking round-trip to the local
// Ollama backend and recovers a structured Diagnosis even from malformed
// replies.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/cognitrace/internal/config"
	"github.com/AleutianAI/cognitrace/internal/snapshot"
)

var tracer = otel.Tracer("cognitrace.inference.ollama")

// DefaultQuery is used when the caller supplies no free-text query.
const DefaultQuery = "Analyze the root cause of the current state/error."

// systemPrompt pins the response contract: JSON only, fixed keys.
const systemPrompt = "You are an advanced Debugging Analysis Agent. " +
	"You have access to the current stack frame, local variables, and code snippet. " +
	"Analyze the Root Cause and provide a Fix. " +
	"If you need to verify assumptions, suggest specific debugger commands. " +
	"Response MUST be valid JSON with keys: 'diagnosis', 'suggested_fix', 'pdb_commands'."

// temperature favors analytical precision over creativity.
const temperature = 0.2

// Client sends snapshots to the local inference backend.
//
// Thread Safety:
//
//	Client is safe for concurrent use, though the agent only ever calls
//	it from the goroutine owning the debugging session.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the configured backend.
func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.QueryTimeout},
		logger:     logger,
	}
}

// Query performs one diagnostic round-trip.
//
// Description:
//
//	Builds the composite prompt from the snapshot and the user query,
//	POSTs it to the configured endpoint, and decodes the reply. Query
//	never returns an error: connection failures, non-success statuses,
//	and unparseable payloads each degrade to a well-defined Diagnosis
//	with an empty command list, after logging the problem. Timeout is a
//	normal failure mode here, not a crash; local inference can take
//	minutes.
//
// Inputs:
//
//	ctx - Context for the round-trip. The HTTP client additionally
//	      enforces the configured timeout.
//	snap - The captured snapshot.
//	userQuery - Free-text query; "" selects DefaultQuery.
//
// Outputs:
//
//	*Diagnosis - Always non-nil and valid.
func (c *Client) Query(ctx context.Context, snap snapshot.Snapshot, userQuery string) *Diagnosis {
	ctx, span := tracer.Start(ctx, "Client.Query")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.cfg.Model))

	if userQuery == "" {
		userQuery = DefaultQuery
	}

	requestID := uuid.NewString()
	logger := c.logger.With(slog.String("request_id", requestID))

	payload := generateRequest{
		Model:  c.cfg.Model,
		Prompt: buildPrompt(snap, userQuery),
		Stream: false,
		Format: "json",
		Options: generateOptions{
			NumCtx:      c.cfg.ContextSize,
			Temperature: temperature,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		// Snapshot fields are plain strings; this should not happen.
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("failed to marshal inference request", slog.String("error", err.Error()))
		return errorDiagnosis(fmt.Sprintf("Error: %v", err))
	}

	logger.Info("connecting to inference backend",
		slog.String("url", c.cfg.OllamaURL),
		slog.String("model", c.cfg.Model),
		slog.Int("num_ctx", c.cfg.ContextSize),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OllamaURL, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("failed to build inference request", slog.String("error", err.Error()))
		return errorDiagnosis(fmt.Sprintf("Error: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("could not reach the inference backend; is Ollama running? (run `ollama serve`)",
			slog.String("error", err.Error()),
		)
		return &Diagnosis{
			Diagnosis:    "Connection Error",
			SuggestedFix: "Start Ollama",
			Commands:     nil,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("failed to read inference response", slog.String("error", err.Error()))
		return errorDiagnosis(fmt.Sprintf("Error: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("inference backend returned an error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response", string(respBody)),
		)
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", resp.StatusCode))
		return errorDiagnosis(fmt.Sprintf("Error: backend returned status %d: %s",
			resp.StatusCode, string(respBody)))
	}

	logger.Info("received inference response",
		slog.Int("content_len", len(respBody)),
		slog.Duration("duration", time.Since(start)),
	)
	return parseDiagnosis(respBody, logger)
}

// buildPrompt assembles the composite prompt: system instruction, then the
// snapshot's fields and the user query verbatim.
func buildPrompt(snap snapshot.Snapshot, userQuery string) string {
	vars, err := json.MarshalIndent(snap.Variables, "", "  ")
	if err != nil {
		vars = []byte("{}")
	}
	return fmt.Sprintf(`%s

--- SNAPSHOT ---
Error: %s
Function: %s
Line: %d
Code Context:
%s

Variables:
%s

--- USER QUERY ---
%s
`, systemPrompt, snap.Exception, snap.Function, snap.Line, snap.SourceText(), vars, userQuery)
}
