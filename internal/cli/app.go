// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/jeranaias/cmdroute/internal/config"
	"github.com/jeranaias/cmdroute/internal/logging"
)

// Version information, set by the linker.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// NewApp returns the root command.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:            logging.AppName,
		Usage:           "typed command router for chat messages",
		Version:         Version + " (" + runtime.Version() + ") : " + GitCommit,
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (TOML, YAML or JSON)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log at debug level regardless of configuration"},
		},
		Commands: []*cli.Command{
			replCommand(),
			routeCommand(),
			checkCommand(),
			serveCommand(),
			dumpConfigCommand(),
		},
	}
}

// initializeAppContext loads configuration and prepares logging once the
// command line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// nothing to do, help will be shown
		return ctx, nil
	}

	env := EnvFromContext(ctx)

	var err error
	env.ConfigPath = cmd.String("config")
	if env.ConfigPath == "" {
		env.ConfigPath = config.DefaultPath()
	}
	if env.Cfg, err = config.Load(env.ConfigPath); err != nil {
		return ctx, fmt.Errorf("%w: unable to prepare configuration: %w", ErrConfig, err)
	}
	if cmd.Bool("debug") {
		env.Cfg.Logging.Level = config.LevelDebug
	}
	if env.Log, env.closeLog, err = logging.NewWithSinks(env.Cfg.Logging, env.Sinks); err != nil {
		return ctx, fmt.Errorf("%w: unable to prepare logs: %w", ErrConfig, err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", Version),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", GitCommit))

	if env.ConfigPath == "" {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// errors must be reported directly to stderr from now on
	env.RestoreStdLog()
	return nil
}

// exitErrHandler runs before the context is destroyed so failures still
// reach the log.
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := EnvFromContext(ctx)

	if errors.Is(err, ErrReported) {
		env.ErrHandled = true
		return
	}
	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		env.ErrHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// reported by exitErrHandler or on exit directly to stderr
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	if log := EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}
