// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmderr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Message: "Can't find closing quote.", Start: 21, End: 30}
	assert.Equal(t, "command parsing error at [21..30]: Can't find closing quote.", err.Error())
}

func TestParseError_Shift(t *testing.T) {
	err := &ParseError{Message: "x", Start: 2, End: 5}
	shifted := err.Shift(3)

	assert.Equal(t, 5, shifted.Start)
	assert.Equal(t, 8, shifted.End)
	assert.Equal(t, 2, err.Start, "original must be untouched")
}

func TestErrorsAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", &MissingPermissionError{Level: 3})

	var perm *MissingPermissionError
	require.True(t, errors.As(wrapped, &perm))
	assert.Equal(t, uint32(3), perm.Level)

	wrapped = fmt.Errorf("calc: %w", ErrNoPathFound)
	assert.ErrorIs(t, wrapped, ErrNoPathFound)
}

func TestNotFoundError_Empty(t *testing.T) {
	assert.Equal(t, "command not found: empty command", (&NotFoundError{}).Error())
	assert.Equal(t, "command not found: ping", (&NotFoundError{Name: "ping"}).Error())
}
