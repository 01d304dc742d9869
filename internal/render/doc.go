// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render formats command replies and dispatch errors for terminals.
//
// Colors follow the terminal: they are disabled when stdout is not a TTY or
// NO_COLOR is set, and forced on by FORCE_COLOR. Parse errors are drawn as
// the offending message with a caret line under the reported span.
//
// # Usage
//
//	r := render.New(render.WithColor(render.ColorsEnabled()))
//	reply, err := router.Dispatch(ctx, caller, text)
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, r.Error(text, err))
//	} else {
//	    fmt.Println(r.Reply(reply))
//	}
package render
