// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/jeranaias/cmdroute/internal/cmdtree"
	"github.com/jeranaias/cmdroute/internal/config"
)

// BuildSnapshot assembles the command set described by cfg: the built-in
// commands followed by every configured template command. The history
// command is only registered when history is non-nil. Every problem found is
// reported, including trees whose types have no mapper.
func BuildSnapshot(cfg *config.Config, history HistoryReader) (*Snapshot, error) {
	registry := NewRegistryWithTags(cmdtree.NewTagSet())
	registry.MustRegister(HelpCommand())
	if history != nil {
		registry.MustRegister(HistoryCommand(history))
	}

	var errs error
	for i, cc := range cfg.Commands {
		handler, err := TemplateHandler(cc.Name, cc.Reply)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("commands[%d] %q: %w", i, cc.Name, err))
			continue
		}
		err = registry.Register(&Command{
			Name:        cc.Name,
			Aliases:     cc.Aliases,
			Description: cc.Description,
			Category:    cc.Category,
			Level:       cc.Level,
			Hidden:      cc.Hidden,
			Syntax:      cc.Syntax,
			Handler:     handler,
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("commands[%d]: %w", i, err))
		}
	}

	manager := DefaultManager()
	errs = multierr.Append(errs, registry.Check(manager))
	if errs != nil {
		return nil, errs
	}

	return &Snapshot{
		Registry:         registry,
		Manager:          manager,
		Prefix:           cfg.Prefix,
		NormalizeUnicode: cfg.NormalizeUnicode,
	}, nil
}
