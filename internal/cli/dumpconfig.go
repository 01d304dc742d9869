// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/jeranaias/cmdroute/internal/config"
)

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "dumpconfig",
		Usage: "Dumps either default or actual configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "output built-in default configuration"},
		},
		OnUsageError: usageErrorHandler,
		Action:       outputConfiguration,
		ArgsUsage:    "DESTINATION",
		CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT (YAML)
    the extension (.toml, .yaml, .yml or .json) selects the format

Produces file with actual "active" configuration values which is composition of
default values, values specified in configuration file and CMDROUTE_*
environment variables. To see built-in defaults use --default flag.
`, cli.CommandHelpTemplate),
	}
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	cfg, state := env.Cfg, "actual"
	if cmd.Bool("default") {
		cfg, state = config.Default(), "default"
	}

	if len(fname) > 0 {
		env.Log.Info("Outputting configuration", zap.String("state", state), zap.String("file", fname))
		if err := config.Save(cfg, fname); err != nil {
			return fmt.Errorf("unable to write configuration to '%s': %w", fname, err)
		}
		return nil
	}

	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}
	if _, err := env.Stdout.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
