// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cmderr defines the error kinds produced while routing chat commands.
//
// Tokenizer and builder errors are returned to the immediate caller. The tree
// walker never errors; a failed walk is upgraded to [ErrNoPathFound] by the
// command manager. [UnmappedTypeError] and [ErrMapperContract] signal
// configuration defects rather than bad user input.
//
// # Key Types
//
//   - ParseError: malformed command text, with a byte span
//   - NotFoundError: unknown command name or alias
//   - MissingPermissionError: caller level below the command level
//   - UnknownMatcherError: unrecognized type tag in a declaration
//   - UnmappedTypeError: a typed node with no registered mapper
//
// # Usage
//
//	var perr *cmderr.ParseError
//	if errors.As(err, &perr) {
//	    fmt.Printf("bad input at %d..%d\n", perr.Start, perr.End)
//	}
package cmderr
