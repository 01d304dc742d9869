// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/jeranaias/cmdroute/internal/commands"
	"github.com/jeranaias/cmdroute/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates a message that did not parse or match
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or command set error
	ExitConfigError = 3
	// ExitPermissionError indicates the caller level was too low
	ExitPermissionError = 4
	// ExitRateLimited indicates the caller was throttled
	ExitRateLimited = 5
	// ExitNotFoundError indicates an unknown command
	ExitNotFoundError = 7
)

// ErrConfig marks configuration problems.
var ErrConfig = errors.New("configuration error")

// ErrReported marks errors that were already shown to the user.
var ErrReported = errors.New("error already reported")

// reportedError carries a dispatch error that was rendered for the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() []error {
	return []error{ErrReported, e.err}
}

// GetExitCode maps err to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, ErrConfig) {
		return ExitConfigError
	}
	switch commands.OutcomeOf(err) {
	case storage.OutcomeParseError, storage.OutcomeNoMatch:
		return ExitUsageError
	case storage.OutcomeForbidden:
		return ExitPermissionError
	case storage.OutcomeRateLimited:
		return ExitRateLimited
	case storage.OutcomeNotFound:
		return ExitNotFoundError
	default:
		return ExitGeneralError
	}
}
