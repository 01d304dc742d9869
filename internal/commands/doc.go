// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands turns chat messages into typed command invocations.
//
// Commands declare their accepted forms as syntax strings which are compiled
// into cmdtree nodes. A Router tokenizes each message, finds the command by
// name or alias, walks its tree and hands the mapped arguments to the
// command's handler.
//
// # Key Types
//
//   - Registry: Commands indexed by name and alias
//   - Manager: Type identity to mapper table, resolves matches into Bindings
//   - Router: Dispatches messages against a swappable Snapshot
//   - Completer: Completes command names and literal arguments
//
// # Built-in Commands
//
//   - help: List commands or show the usage of one
//   - history: Show the caller's recent commands
//
// # Usage
//
// Register a command and dispatch a message:
//
//	reg := commands.NewRegistry()
//	reg.MustRegister(&commands.Command{
//	    Name:   "add",
//	    Syntax: []string{"<a: Signed> <b: Signed>"},
//	    Handler: func(ctx context.Context, inv *commands.Invocation) (*commands.Reply, error) {
//	        a, _ := commands.Get[int64](inv.Args, "a")
//	        b, _ := commands.Get[int64](inv.Args, "b")
//	        return &commands.Reply{Text: strconv.FormatInt(a+b, 10)}, nil
//	    },
//	})
//
//	router := commands.NewRouter(&commands.Snapshot{
//	    Registry: reg,
//	    Manager:  commands.DefaultManager(),
//	    Prefix:   "!",
//	})
//	reply, err := router.Dispatch(ctx, caller, "!add 2 -5")
package commands
