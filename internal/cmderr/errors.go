// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmderr

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNoPathFound is returned when no path of the command tree matches
	// the fragments of a message.
	ErrNoPathFound = errors.New("no matching path found")

	// ErrEmptyBuilder is returned when a builder is finalized without nodes,
	// or a parallel section is closed without branches.
	ErrEmptyBuilder = errors.New("can't build a command without fragments")

	// ErrMapperContract is returned when a mapper fails on a fragment its
	// paired matcher accepted.
	ErrMapperContract = errors.New("mapper rejected a matched fragment")

	// ErrNotCommand is returned by the router for messages that do not carry
	// the command prefix. Hosts normally ignore it.
	ErrNotCommand = errors.New("message is not a command")

	// ErrRateLimited is returned when a caller exceeds its invocation budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// =============================================================================
// TYPED ERRORS
// =============================================================================

// ParseError reports malformed command text. Start and End are inclusive
// byte offsets into the text that was tokenized.
type ParseError struct {
	Message string
	Start   int
	End     int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("command parsing error at [%d..%d]: %s", e.Start, e.End, e.Message)
}

// Shift returns a copy of the error with its span moved by offset bytes.
func (e *ParseError) Shift(offset int) *ParseError {
	return &ParseError{Message: e.Message, Start: e.Start + offset, End: e.End + offset}
}

// NotFoundError reports an unknown command name or alias.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return "command not found: empty command"
	}
	return fmt.Sprintf("command not found: %s", e.Name)
}

// MissingPermissionError reports that the caller's level is below the level
// the command requires.
type MissingPermissionError struct {
	Level uint32
}

func (e *MissingPermissionError) Error() string {
	return fmt.Sprintf("missing permission, required level: %d", e.Level)
}

// UnknownMatcherError reports a type tag no matcher is registered for.
type UnknownMatcherError struct {
	Tag string
}

func (e *UnknownMatcherError) Error() string {
	return fmt.Sprintf("unknown matcher type encountered: %s", e.Tag)
}

// UnmappedTypeError reports a typed node whose type identity has no mapper.
// Node is the binding name of the offending node.
type UnmappedTypeError struct {
	Type string
	Node string
}

func (e *UnmappedTypeError) Error() string {
	return fmt.Sprintf("no mapper registered for type %q (node %q)", e.Type, e.Node)
}

// DuplicateBindingError reports two nodes on one path sharing a binding name.
type DuplicateBindingError struct {
	Name string
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("binding %q declared twice on one path", e.Name)
}
