// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const sampleTOML = `
prefix = "?"
normalize_unicode = false

[logging]
level = "debug"

[rate_limit]
per_second = 1.5
burst = 3

[history]
enabled = false
path = "/tmp/h.db"

[server]
addr = ":9000"

[[commands]]
name = "calc"
aliases = ["c"]
syntax = ["add <a: Signed> <b: Signed>", "neg <a: Signed>"]
reply = "{{ add .Args.a .Args.b }}"
`

const sampleYAML = `
prefix: "?"
logging:
  level: debug
commands:
  - name: calc
    aliases: [c]
    syntax:
      - "add <a: Signed> <b: Signed>"
    reply: "{{ .Args.a }}"
`

const sampleJSON = `{
  "prefix": "?",
  "logging": {"level": "debug"},
  "commands": [{"name": "calc", "aliases": ["c"], "syntax": ["add <a: Signed> <b: Signed>"], "reply": "x"}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestLoad_TOML(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.toml", sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "?", cfg.Prefix)
	assert.False(t, cfg.NormalizeUnicode)
	assert.Equal(t, LevelDebug, cfg.Logging.Level)
	assert.Equal(t, 1.5, cfg.RateLimit.PerSecond)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	require.Len(t, cfg.Commands, 1)
	assert.Equal(t, "calc", cfg.Commands[0].Name)
	assert.Equal(t, []string{"c"}, cfg.Commands[0].Aliases)
	assert.Len(t, cfg.Commands[0].Syntax, 2)
}

func TestLoad_FormatsAgree(t *testing.T) {
	for name, content := range map[string]string{
		"config.yaml": sampleYAML,
		"config.yml":  sampleYAML,
		"config.json": sampleJSON,
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, name, content))
			require.NoError(t, err)
			assert.Equal(t, "?", cfg.Prefix)
			assert.Equal(t, LevelDebug, cfg.Logging.Level)
			require.Len(t, cfg.Commands, 1)
			assert.Equal(t, []string{"add <a: Signed> <b: Signed>"}, cfg.Commands[0].Syntax)
			// untouched sections keep their defaults
			assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
		})
	}
}

func TestLoad_UnknownFormat(t *testing.T) {
	_, err := Load(writeFile(t, "config.ini", "prefix=!"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", "prefix = ["))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CMDROUTE_PREFIX", "$")
	t.Setenv("CMDROUTE_LOGGING_LEVEL", "none")
	t.Setenv("CMDROUTE_RATE_LIMIT_BURST", "9")
	t.Setenv("CMDROUTE_SERVER_AUTH_TOKEN", "secret")
	t.Setenv("CMDROUTE_HISTORY_ENABLED", "false")

	cfg, err := Load(writeFile(t, "config.toml", sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "$", cfg.Prefix)
	assert.Equal(t, LevelNone, cfg.Logging.Level)
	assert.Equal(t, 9, cfg.RateLimit.Burst)
	assert.Equal(t, 1.5, cfg.RateLimit.PerSecond, "unset variables keep file values")
	assert.Equal(t, "secret", cfg.Server.AuthToken)
	assert.False(t, cfg.History.Enabled)
}

func TestLoad_EnvBadValue(t *testing.T) {
	t.Setenv("CMDROUTE_RATE_LIMIT_BURST", "many")
	_, err := Load(writeFile(t, "config.toml", sampleTOML))
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	cfg, err := Parse("inline.yaml", []byte(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "?", cfg.Prefix)

	_, err = Parse("inline.txt", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate_CollectsEverything(t *testing.T) {
	cfg := Default()
	cfg.Prefix = " "
	cfg.Logging.Level = "loud"
	cfg.RateLimit.PerSecond = -1
	cfg.Commands = []CommandConfig{
		{Name: "a", Reply: "x"},
		{Name: "b", Aliases: []string{"a"}, Reply: "y"},
		{Name: "", Reply: ""},
	}

	err := cfg.Validate()
	require.Error(t, err)

	errs := multierr.Errors(err)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		var verr ValidationError
		require.True(t, errors.As(e, &verr))
		fields = append(fields, verr.Field)
	}
	assert.Contains(t, fields, "prefix")
	assert.Contains(t, fields, "logging.level")
	assert.Contains(t, fields, "rate_limit.per_second")
	assert.Contains(t, fields, "commands[1]")
	assert.Contains(t, fields, "commands[2].name")
	assert.Contains(t, fields, "commands[2].reply")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" Debug ")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

// =============================================================================
// SAVE TESTS
// =============================================================================

func TestSave_RoundTrip(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.toml", sampleTOML))
	require.NoError(t, err)

	for _, name := range []string{"out.toml", "out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(cfg, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestYAML(t *testing.T) {
	data, err := Default().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "rate_limit:")

	parsed, err := Parse("dump.yaml", data)
	require.NoError(t, err)
	assert.Equal(t, "!", parsed.Prefix)
}

func TestYAML_Declarations(t *testing.T) {
	cfg := Default()
	cfg.Commands = []CommandConfig{{
		Name:   "calc",
		Syntax: []string{"add <a: Signed> <b: Signed>", "neg <a: Signed>", "<who: UserMention>"},
		Reply:  "{{ .Args.a }}",
	}}

	data, err := cfg.YAML()
	require.NoError(t, err)

	parsed, err := Parse("dump.yaml", data)
	require.NoError(t, err)
	require.Len(t, parsed.Commands, 1)
	assert.Equal(t, cfg.Commands[0].Syntax, parsed.Commands[0].Syntax)

	loaded, err := Load(writeFile(t, "config.yml", string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg.Commands, loaded.Commands)
}

func TestClone(t *testing.T) {
	cfg := Default()
	cfg.Commands = []CommandConfig{{Name: "a", Aliases: []string{"b"}, Reply: "x"}}

	clone := cfg.Clone()
	clone.Commands[0].Aliases[0] = "z"
	clone.Prefix = "?"

	assert.Equal(t, "b", cfg.Commands[0].Aliases[0])
	assert.Equal(t, "!", cfg.Prefix)
}
