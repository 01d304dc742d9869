// cmdroute - typed command routing for chat messages.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/cmdroute/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
}

func main() {
	// allow graceful shutdown of serve and repl on interrupt
	ctx, stop := signal.NotifyContext(cli.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)
	env := cli.EnvFromContext(ctx)

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// log is either not set yet (argument parsing) or already closed
			if !env.ErrHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(cli.GetExitCode(err))
		}
	}()
	err = cli.NewApp().Run(ctx, os.Args)
}
