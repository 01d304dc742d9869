// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for cmdroute.
//
// Supports TOML, YAML and JSON configuration files, selected by extension,
// with sensible defaults, environment variable overrides and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - CommandConfig: A template command declared in configuration
//   - Watcher: Reloads a configuration file when it changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CMDROUTE_*)
//   - The file given with --config, or ~/.cmdroute/config.{toml,yaml,yml,json}
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	prefix := cfg.Prefix
package config
