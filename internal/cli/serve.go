// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/jeranaias/cmdroute/internal/config"
	"github.com/jeranaias/cmdroute/internal/server"
)

// PruneInterval is how often serve trims history to HistoryConfig.Keep.
const PruneInterval = 10 * time.Minute

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:         "serve",
		Usage:        "Serves the router over HTTP and websockets",
		OnUsageError: usageErrorHandler,
		Action:       runServe,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "listen on `ADDRESS` instead of the configured one"},
			&cli.BoolFlag{Name: "no-watch", Usage: "do not reload commands when the configuration file changes"},
		},
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	env := EnvFromContext(ctx)

	eng, err := newEngine(env.Cfg, env.Log)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if env.ConfigPath != "" && !cmd.Bool("no-watch") {
		watcher, err := config.NewWatcher(env.ConfigPath, config.DefaultDebounce, env.Log, func(cfg *config.Config, err error) {
			if err != nil {
				env.Log.Warn("Config reload failed, keeping current commands", zap.Error(err))
				return
			}
			if err := eng.Reload(cfg); err != nil {
				env.Log.Warn("Commands rejected, keeping current commands", zap.Error(err))
				return
			}
			env.Log.Info("Commands reloaded", zap.String("config", env.ConfigPath))
		})
		if err != nil {
			return err
		}
		go watcher.Run(ctx)
		defer func() {
			cancel()
			<-watcher.Done()
		}()
	}

	if keep := env.Cfg.History.Keep; eng.history != nil && keep > 0 {
		pruned := make(chan struct{})
		go func() {
			defer close(pruned)
			prunePeriodically(ctx, eng, keep, PruneInterval)
		}()
		defer func() {
			cancel()
			<-pruned
		}()
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = env.Cfg.Server.Addr
	}
	srv := server.New(eng.router,
		server.WithAddr(addr),
		server.WithAuthToken(env.Cfg.Server.AuthToken),
		server.WithLogger(env.Log),
	)

	env.Log.Info("Serving commands",
		zap.String("addr", srv.Addr()),
		zap.Int("commands", eng.router.Snapshot().Registry.Len()),
		zap.Bool("auth", env.Cfg.Server.AuthToken != ""))

	return srv.Run(ctx, time.Duration(env.Cfg.Server.ShutdownSeconds)*time.Second)
}

// prunePeriodically trims history right away and then every interval until
// ctx is cancelled.
func prunePeriodically(ctx context.Context, eng *engine, keep int, interval time.Duration) {
	eng.Prune(ctx, keep)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eng.Prune(ctx, keep)
		}
	}
}
