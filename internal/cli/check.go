// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jeranaias/cmdroute/internal/commands"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:         "check",
		Usage:        "Builds every configured command and reports all problems",
		OnUsageError: usageErrorHandler,
		Action:       runCheck,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "list", Usage: "print the usage of every command when the check passes"},
		},
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	env := EnvFromContext(ctx)

	snap, err := commands.BuildSnapshot(env.Cfg, nil)
	if err != nil {
		errs := multierr.Errors(err)
		for _, e := range errs {
			fmt.Fprintln(env.Stderr, "  "+e.Error())
		}
		fmt.Fprintf(env.Stderr, "%d problem(s) found\n", len(errs))
		return &reportedError{err: fmt.Errorf("%w: %w", ErrConfig, err)}
	}

	env.Log.Debug("Command set built", zap.Int("commands", snap.Registry.Len()), zap.String("config", env.ConfigPath))

	if cmd.Bool("list") {
		for _, c := range snap.Registry.All() {
			line := snap.Prefix + c.Name
			if len(c.Aliases) > 0 {
				line += " (" + strings.Join(c.Aliases, ", ") + ")"
			}
			if c.Level > 0 {
				line += fmt.Sprintf(" [level %d]", c.Level)
			}
			fmt.Fprintln(env.Stdout, line)
			for _, usage := range c.Usage() {
				fmt.Fprintln(env.Stdout, "    "+snap.Prefix+usage)
			}
		}
	}
	fmt.Fprintf(env.Stdout, "OK: %d commands\n", snap.Registry.Len())
	return nil
}
