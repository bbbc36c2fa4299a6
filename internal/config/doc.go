// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for hint.
//
// Configuration is built once at startup from built-in defaults, an optional
// TOML file and environment overrides, then passed explicitly to every
// component.
//
// Configuration file location (first match wins):
//   - the path given with --config
//   - <data dir>/config.toml
//   - Built-in defaults
//
// # Key Types
//
//   - Config: Complete configuration (API, history window, UI, summarizer)
//   - ConfigurationError: Fatal configuration failure (e.g. no data directory)
//   - ValidateErrors: Collected validation failures
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dbPath, err := cfg.DatabasePath()
//
// # Environment Variables
//
//   - OPENAI_API_KEY: Bearer credential for the completion endpoint
//   - HINT_MODEL: Override the default model
//   - HINT_BASE_URL: Override the endpoint host
//   - HINT_TEMPERATURE: Override the default temperature
//   - HINT_DATA_DIR: Override the data directory
//   - NO_COLOR: Disable colored output
package config
