// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"strings"
)

// Log levels accepted by LoggingConfig.Level.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// ParseLevel validates a log level name, ignoring case and surrounding
// whitespace, and returns its canonical form.
func ParseLevel(s string) (string, error) {
	switch level := strings.ToLower(strings.TrimSpace(s)); level {
	case LevelNone, LevelNormal, LevelDebug:
		return level, nil
	}
	return "", fmt.Errorf("unknown log level %q, expected one of none, normal, debug", s)
}
