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

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/cognitrace/internal/config"
	"github.com/AleutianAI/cognitrace/internal/snapshot"
)

func testConfig(url string) config.Config {
	cfg := config.Default()
	cfg.OllamaURL = url
	cfg.QueryTimeout = 5 * time.Second
	return cfg
}

func testSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		Function: "riskyDivision",
		Line:     42,
		Source: []snapshot.SourceLine{
			{Number: 41, Text: "threshold := 0"},
			{Number: 42, Text: "result := total / threshold", Current: true},
		},
		Variables: snapshot.Variables{
			{Name: "x", Repr: "10"},
			{Name: "y", Repr: "0"},
		},
		Exception: snapshot.NoException,
	}
}

func TestQuery_StructuredSuccess(t *testing.T) {
	var gotRequest generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		payload := `{"diagnosis":"null deref","suggested_fix":"check y","pdb_commands":["p y","up"]}`
		resp, _ := json.Marshal(generateResponse{Response: payload, Done: true})
		w.Write(resp)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), nil)
	diag := c.Query(context.Background(), testSnapshot(), "why does this crash?")

	require.NotNil(t, diag)
	assert.Equal(t, "null deref", diag.Diagnosis)
	assert.Equal(t, "check y", diag.SuggestedFix)
	assert.Equal(t, []string{"p y", "up"}, diag.Commands)

	// Wire contract.
	assert.Equal(t, "qwen3:8b", gotRequest.Model)
	assert.False(t, gotRequest.Stream)
	assert.Equal(t, "json", gotRequest.Format)
	assert.Equal(t, 4096, gotRequest.Options.NumCtx)
	assert.InDelta(t, 0.2, gotRequest.Options.Temperature, 1e-9)

	// Prompt embeds the snapshot fields and the query verbatim.
	assert.Contains(t, gotRequest.Prompt, "riskyDivision")
	assert.Contains(t, gotRequest.Prompt, "--> 42: result := total / threshold")
	assert.Contains(t, gotRequest.Prompt, `"x": "10"`)
	assert.Contains(t, gotRequest.Prompt, snapshot.NoException)
	assert.Contains(t, gotRequest.Prompt, "why does this crash?")
}

func TestQuery_EmptyQueryUsesDefault(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Prompt
		resp, _ := json.Marshal(generateResponse{Response: "{}", Done: true})
		w.Write(resp)
	}))
	defer srv.Close()

	NewClient(testConfig(srv.URL), nil).Query(context.Background(), testSnapshot(), "")

	assert.Contains(t, prompt, DefaultQuery)
}

func TestQuery_MalformedModelOutputFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, _ := json.Marshal(generateResponse{
			Response: "The bug is probably in your threshold logic.",
			Done:     true,
		})
		w.Write(resp)
	}))
	defer srv.Close()

	diag := NewClient(testConfig(srv.URL), nil).Query(context.Background(), testSnapshot(), "")

	require.NotNil(t, diag)
	assert.Equal(t, "The bug is probably in your threshold logic.", diag.Diagnosis)
	assert.Equal(t, UnparseableFixMarker, diag.SuggestedFix)
	assert.Empty(t, diag.Commands)
}

func TestQuery_NonJSONBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>proxy error</html>"))
	}))
	defer srv.Close()

	diag := NewClient(testConfig(srv.URL), nil).Query(context.Background(), testSnapshot(), "")

	require.NotNil(t, diag)
	assert.Equal(t, "<html>proxy error</html>", diag.Diagnosis)
	assert.Empty(t, diag.Commands)
}

func TestQuery_MissingKeysDefaultToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, _ := json.Marshal(generateResponse{
			Response: `{"diagnosis":"just a diagnosis"}`,
			Done:     true,
		})
		w.Write(resp)
	}))
	defer srv.Close()

	diag := NewClient(testConfig(srv.URL), nil).Query(context.Background(), testSnapshot(), "")

	require.NotNil(t, diag)
	assert.Equal(t, "just a diagnosis", diag.Diagnosis)
	assert.Empty(t, diag.SuggestedFix)
	assert.Empty(t, diag.Commands)
}

func TestQuery_BackendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model 'qwen3:8b' not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	diag := NewClient(testConfig(srv.URL), nil).Query(context.Background(), testSnapshot(), "")

	require.NotNil(t, diag)
	assert.Contains(t, diag.Diagnosis, "status 404")
	assert.Contains(t, diag.Diagnosis, "not found")
	assert.Empty(t, diag.Commands)
}

func TestQuery_ConnectionFailure(t *testing.T) {
	// Start then immediately close, so the port refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	diag := NewClient(testConfig(url), nil).Query(context.Background(), testSnapshot(), "")

	require.NotNil(t, diag)
	assert.Equal(t, "Connection Error", diag.Diagnosis)
	assert.Equal(t, "Start Ollama", diag.SuggestedFix)
	assert.Empty(t, diag.Commands)
}

func TestQuery_TimeoutIsAbsorbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.QueryTimeout = 20 * time.Millisecond

	diag := NewClient(cfg, nil).Query(context.Background(), testSnapshot(), "")

	require.NotNil(t, diag)
	assert.Equal(t, "Connection Error", diag.Diagnosis)
	assert.Empty(t, diag.Commands)
}
