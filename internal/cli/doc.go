// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the cmdroute command line.
//
// # Commands
//
//   - repl: Interactive chat simulation with line editing and completion
//   - route: Dispatch one message and print the reply
//   - check: Build every configured command and report all problems
//   - serve: Serve the router over HTTP and websockets, reloading on change
//   - dumpconfig: Print the effective configuration as YAML
//
// Global flags --config/-c and --debug/-d are handled before any command
// runs; the loaded configuration and logger travel in the context as an Env.
package cli
