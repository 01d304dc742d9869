// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/cmdroute/internal/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CMDROUTE_"

// ErrUnknownFormat is returned for configuration files with an unsupported
// extension.
var ErrUnknownFormat = errors.New("unknown configuration format")

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete cmdroute configuration.
type Config struct {
	// Prefix marks a chat message as a command (e.g., "!")
	Prefix string `toml:"prefix" yaml:"prefix" json:"prefix" env:"PREFIX"`

	// NormalizeUnicode applies NFC normalization to messages before routing
	NormalizeUnicode bool `toml:"normalize_unicode" yaml:"normalize_unicode" json:"normalize_unicode" env:"NORMALIZE_UNICODE"`

	Logging   LoggingConfig   `toml:"logging" yaml:"logging" json:"logging" envPrefix:"LOGGING_"`
	RateLimit RateLimitConfig `toml:"rate_limit" yaml:"rate_limit" json:"rate_limit" envPrefix:"RATE_LIMIT_"`
	History   HistoryConfig   `toml:"history" yaml:"history" json:"history" envPrefix:"HISTORY_"`
	Server    ServerConfig    `toml:"server" yaml:"server" json:"server" envPrefix:"SERVER_"`

	// Commands declares template commands
	Commands []CommandConfig `toml:"commands" yaml:"commands" json:"commands"`
}

// LoggingConfig selects the log level and an optional log file.
type LoggingConfig struct {
	// Level is one of "none", "normal" or "debug"
	Level string `toml:"level" yaml:"level" json:"level" env:"LEVEL"`

	// Destination is a log file path; empty logs to the console only
	Destination string `toml:"destination" yaml:"destination" json:"destination" env:"DESTINATION"`
}

// RateLimitConfig limits dispatches per caller.
type RateLimitConfig struct {
	// PerSecond is the sustained rate; 0 disables limiting
	PerSecond float64 `toml:"per_second" yaml:"per_second" json:"per_second" env:"PER_SECOND"`
	Burst     int     `toml:"burst" yaml:"burst" json:"burst" env:"BURST"`
}

// HistoryConfig controls invocation history storage.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled" env:"ENABLED"`
	Path    string `toml:"path" yaml:"path" json:"path" env:"PATH"`

	// Keep bounds the number of stored entries; 0 keeps everything
	Keep int `toml:"keep" yaml:"keep" json:"keep" env:"KEEP"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr" json:"addr" env:"ADDR"`

	// AuthToken enables bearer authentication when set
	AuthToken string `toml:"auth_token" yaml:"auth_token" json:"auth_token" env:"AUTH_TOKEN"`

	// ShutdownSeconds bounds graceful shutdown
	ShutdownSeconds int `toml:"shutdown_seconds" yaml:"shutdown_seconds" json:"shutdown_seconds" env:"SHUTDOWN_SECONDS"`
}

// CommandConfig declares a command answered from a reply template.
type CommandConfig struct {
	Name        string   `toml:"name" yaml:"name" json:"name"`
	Aliases     []string `toml:"aliases" yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Description string   `toml:"description" yaml:"description,omitempty" json:"description,omitempty"`
	Category    string   `toml:"category" yaml:"category,omitempty" json:"category,omitempty"`
	Level       uint32   `toml:"level" yaml:"level,omitempty" json:"level,omitempty"`
	Hidden      bool     `toml:"hidden" yaml:"hidden,omitempty" json:"hidden,omitempty"`

	// Syntax holds one declaration per accepted form, e.g.
	// "add <a: Signed> <b: Signed>". In YAML files quote each declaration:
	// an unquoted "<a: Signed>" contains ": " and is read as a mapping.
	Syntax []string `toml:"syntax" yaml:"syntax,omitempty" json:"syntax,omitempty"`
	Reply  string   `toml:"reply" yaml:"reply" json:"reply"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prefix:           "!",
		NormalizeUnicode: true,
		Logging: LoggingConfig{
			Level: LevelNormal,
		},
		RateLimit: RateLimitConfig{
			PerSecond: 2,
			Burst:     5,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "~/.cmdroute/history.db",
			Keep:    10000,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8090",
			ShutdownSeconds: 5,
		},
	}
}

// SetDefaults fills zero values that have a default.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Prefix == "" {
		c.Prefix = defaults.Prefix
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.RateLimit.PerSecond > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = defaults.RateLimit.Burst
	}
	if c.History.Path == "" {
		c.History.Path = defaults.History.Path
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ShutdownSeconds == 0 {
		c.Server.ShutdownSeconds = defaults.Server.ShutdownSeconds
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// ConfigDir returns the cmdroute configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".cmdroute"), nil
}

// DefaultPath returns the first existing config file in ConfigDir, trying
// TOML, YAML and JSON in that order. It returns "" when none exists.
func DefaultPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml", "config.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

type format int

const (
	formatTOML format = iota
	formatYAML
	formatJSON
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the configuration at path, or at DefaultPath when path is
// empty. Without any file the defaults are used. Environment overrides are
// applied last, then the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if path != "" {
		if err := decodeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes data in the format implied by name's extension. The result
// is not validated and carries no environment overrides.
func Parse(name string, data []byte) (*Config, error) {
	f, err := formatOf(name)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := decode(cfg, f, data); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := decode(cfg, f, data); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func decode(cfg *Config, f format, data []byte) error {
	switch f {
	case formatYAML:
		return yaml.Unmarshal(data, cfg)
	case formatJSON:
		return json.Unmarshal(data, cfg)
	default:
		_, err := toml.Decode(string(data), cfg)
		return err
	}
}

// ApplyEnvOverrides applies CMDROUTE_* environment variables, for example
// CMDROUTE_PREFIX, CMDROUTE_LOGGING_LEVEL or CMDROUTE_SERVER_AUTH_TOKEN.
// Unset variables leave the current values alone.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Marshal encodes the configuration in the format implied by name.
func (c *Config) Marshal(name string) ([]byte, error) {
	f, err := formatOf(name)
	if err != nil {
		return nil, err
	}
	switch f {
	case formatYAML:
		return c.YAML()
	case formatJSON:
		return json.MarshalIndent(c, "", "  ")
	default:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// YAML encodes the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the configuration to path atomically with owner-only
// permissions since it may hold the server token.
func Save(c *Config, path string) error {
	data, err := c.Marshal(path)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration and returns every problem found,
// combined with multierr.
func (c *Config) Validate() error {
	var errs error
	add := func(field, format string, args ...any) {
		errs = multierr.Append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Prefix == "" {
		add("prefix", "must not be empty")
	}
	if strings.TrimSpace(c.Prefix) != c.Prefix {
		add("prefix", "must not start or end with whitespace")
	}
	if strings.ContainsAny(c.Prefix, `'"`) {
		add("prefix", "must not contain quotes")
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		add("logging.level", "%v", err)
	}

	if c.RateLimit.PerSecond < 0 {
		add("rate_limit.per_second", "must not be negative")
	}
	if c.RateLimit.Burst < 0 {
		add("rate_limit.burst", "must not be negative")
	}

	if c.History.Enabled && c.History.Path == "" {
		add("history.path", "required when history is enabled")
	}
	if c.History.Keep < 0 {
		add("history.keep", "must not be negative")
	}

	if c.Server.ShutdownSeconds < 0 {
		add("server.shutdown_seconds", "must not be negative")
	}

	seen := make(map[string]int)
	for i, cmd := range c.Commands {
		field := fmt.Sprintf("commands[%d]", i)
		if cmd.Name == "" {
			add(field+".name", "must not be empty")
		}
		if cmd.Reply == "" {
			add(field+".reply", "must not be empty")
		}
		for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
			if name == "" {
				continue
			}
			if prev, ok := seen[name]; ok && prev != i {
				add(field, "name %q already used by commands[%d]", name, prev)
				continue
			}
			seen[name] = i
		}
	}

	return errs
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Commands = make([]CommandConfig, len(c.Commands))
	for i, cmd := range c.Commands {
		cmd.Aliases = append([]string(nil), cmd.Aliases...)
		cmd.Syntax = append([]string(nil), cmd.Syntax...)
		clone.Commands[i] = cmd
	}
	return &clone
}
