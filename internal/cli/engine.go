// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/cmdroute/internal/commands"
	"github.com/jeranaias/cmdroute/internal/config"
	"github.com/jeranaias/cmdroute/internal/storage"
)

// engine is a router together with the stores it records into.
type engine struct {
	router  *commands.Router
	history *storage.HistoryStore
	logger  *zap.Logger
}

// newEngine opens history storage when enabled and builds the command set
// described by cfg.
func newEngine(cfg *config.Config, logger *zap.Logger) (*engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &engine{logger: logger}

	if cfg.History.Enabled {
		store, err := storage.OpenHistory(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("unable to open history: %w", err)
		}
		e.history = store
	}

	snap, err := e.snapshot(cfg)
	if err != nil {
		e.Close()
		return nil, err
	}

	opts := []commands.RouterOption{
		commands.WithLogger(logger),
		commands.WithRateLimit(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
	}
	if e.history != nil {
		opts = append(opts, commands.WithHistory(e.history))
	}
	e.router = commands.NewRouter(snap, opts...)
	return e, nil
}

func (e *engine) snapshot(cfg *config.Config) (*commands.Snapshot, error) {
	var reader commands.HistoryReader
	if e.history != nil {
		reader = e.history
	}
	snap, err := commands.BuildSnapshot(cfg, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return snap, nil
}

// Reload swaps in the command set described by cfg. The current set stays
// in place when cfg does not build.
func (e *engine) Reload(cfg *config.Config) error {
	snap, err := e.snapshot(cfg)
	if err != nil {
		return err
	}
	e.router.Swap(snap)
	return nil
}

// Prune trims history to keep entries. It does nothing without history or
// when keep is not positive.
func (e *engine) Prune(ctx context.Context, keep int) {
	if e.history == nil || keep <= 0 {
		return
	}
	removed, err := e.history.Prune(ctx, keep)
	if err != nil {
		e.logger.Warn("Unable to prune history", zap.Error(err))
		return
	}
	if removed > 0 {
		e.logger.Debug("History pruned", zap.Int64("removed", removed), zap.Int("keep", keep))
	}
}

// Routed returns text the way the router sees it, so error spans line up.
func (e *engine) Routed(text string) string {
	text = strings.TrimSpace(text)
	if e.router.Snapshot().NormalizeUnicode {
		text = norm.NFC.String(text)
	}
	return text
}

// Close releases the history store.
func (e *engine) Close() error {
	if e.history == nil {
		return nil
	}
	return e.history.Close()
}
