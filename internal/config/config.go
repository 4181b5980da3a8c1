// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the immutable process configuration for the
// CogniTrace debugging agent.
//
// Configuration is resolved exactly once at process start, in this order:
// built-in defaults, then the optional YAML file at
// ~/.cognitrace/cognitrace.yaml, then environment variables. The resulting
// Config value is passed explicitly into the snapshot builder and the
// inference client; core logic never performs ambient global lookups.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names read by Load.
const (
	EnvOllamaURL   = "OLLAMA_URL"
	EnvModel       = "AID_MODEL"
	EnvContextSize = "AID_CONTEXT_SIZE"
	EnvMaxVarLen   = "AID_MAX_VAR_LEN"
)

// Config is the read-only configuration for one agent process.
//
// Thread Safety:
//
//	Config is a value type. Do not modify after Load returns.
type Config struct {
	// OllamaURL is the full generate endpoint of the local Ollama instance.
	OllamaURL string `yaml:"ollama_url" validate:"required,url"`

	// Model is the Ollama model identifier used for analysis.
	Model string `yaml:"model" validate:"required"`

	// ContextSize is the context window (num_ctx) sent to the backend.
	ContextSize int `yaml:"context_size" validate:"gt=0"`

	// MaxVarLen bounds every rendered variable and string field in a
	// snapshot. This is the safety limit protecting the backend's input
	// budget; it must never be bypassed.
	MaxVarLen int `yaml:"max_var_len" validate:"gt=0"`

	// QueryTimeout bounds one inference round-trip. Local inference can
	// be slow, so the default is generous.
	QueryTimeout time.Duration `yaml:"query_timeout" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OllamaURL:    "http://localhost:11434/api/generate",
		Model:        "qwen3:8b",
		ContextSize:  4096,
		MaxVarLen:    500,
		QueryTimeout: 8 * time.Minute,
	}
}

// Load resolves the process configuration.
//
// Description:
//
//	Starts from Default(), merges the optional YAML file, then applies
//	environment variables. A missing config file or .env file is not an
//	error. The returned Config has been validated.
//
// Outputs:
//
//	Config - The resolved configuration.
//	error - Non-nil if the file is unreadable, a value fails to parse,
//	        or validation fails.
func Load() (Config, error) {
	// Best effort; most installs have no .env file.
	_ = godotenv.Load()

	cfg := Default()

	path, err := defaultPath()
	if err == nil {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against its declared constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".cognitrace", "cognitrace.yaml"), nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv(EnvOllamaURL); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv(EnvContextSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvContextSize, err)
		}
		cfg.ContextSize = n
	}
	if v := os.Getenv(EnvMaxVarLen); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvMaxVarLen, err)
		}
		cfg.MaxVarLen = n
	}
	return nil
}
