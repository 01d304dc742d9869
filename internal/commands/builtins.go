// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/storage"
	"github.com/jeranaias/cmdroute/internal/util"
)

const (
	// DefaultHistoryCount is the number of entries shown by "history".
	DefaultHistoryCount = 10

	// MaxHistoryCount caps the count accepted by "history".
	MaxHistoryCount = 50

	historyTextWidth = 60
)

// HistoryReader reads recorded invocations.
type HistoryReader interface {
	Recent(ctx context.Context, callerID string, limit int) ([]storage.Entry, error)
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// HelpCommand lists visible commands, or describes the command named by its
// first trailing fragment.
func HelpCommand() *Command {
	return &Command{
		Name:        "help",
		Aliases:     []string{"h", "?"},
		Description: "Show available commands, or the usage of one command",
		Category:    "Navigation",
		Handler:     handleHelp,
	}
}

// HistoryCommand shows the caller's most recent invocations. An optional
// trailing count selects how many.
func HistoryCommand(store HistoryReader) *Command {
	return &Command{
		Name:        "history",
		Description: "Show your most recent commands",
		Category:    "Navigation",
		Handler: func(ctx context.Context, inv *Invocation) (*Reply, error) {
			return handleHistory(ctx, store, inv)
		},
	}
}

func handleHelp(_ context.Context, inv *Invocation) (*Reply, error) {
	if rest := inv.Rest(); len(rest) > 0 {
		name := strings.TrimPrefix(rest[0], inv.Prefix)
		cmd := inv.Registry.Get(name)
		if cmd == nil {
			return nil, &cmderr.NotFoundError{Name: name}
		}
		return &Reply{Text: describeCommand(cmd, inv.Prefix), Markdown: true}, nil
	}

	var sb strings.Builder
	sb.WriteString("# Commands\n")
	byCategory := inv.Registry.ByCategory()
	for _, category := range inv.Registry.Categories() {
		var lines []string
		for _, cmd := range byCategory[category] {
			if cmd.Level > inv.Caller.Level {
				continue
			}
			line := fmt.Sprintf("- `%s%s`", inv.Prefix, cmd.Name)
			if cmd.Description != "" {
				line += ": " + cmd.Description
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", category, strings.Join(lines, "\n"))
	}
	fmt.Fprintf(&sb, "\nType `%shelp <command>` for details.\n", inv.Prefix)
	return &Reply{Text: sb.String(), Markdown: true}, nil
}

// describeCommand renders the help page of one command.
func describeCommand(cmd *Command, prefix string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s%s\n\n", prefix, cmd.Name)
	if cmd.Description != "" {
		sb.WriteString(cmd.Description + "\n\n")
	}
	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, alias := range cmd.Aliases {
			aliases[i] = "`" + prefix + alias + "`"
		}
		fmt.Fprintf(&sb, "Aliases: %s\n\n", strings.Join(aliases, ", "))
	}
	if cmd.Level > 0 {
		fmt.Fprintf(&sb, "Requires level %d.\n\n", cmd.Level)
	}
	sb.WriteString("Usage:\n\n")
	for _, line := range cmd.Usage() {
		fmt.Fprintf(&sb, "- `%s%s`\n", prefix, line)
	}
	return sb.String()
}

func handleHistory(ctx context.Context, store HistoryReader, inv *Invocation) (*Reply, error) {
	count := DefaultHistoryCount
	if rest := inv.Rest(); len(rest) > 0 {
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("count must be a positive number, got %q", rest[0])
		}
		count = min(n, MaxHistoryCount)
	}

	entries, err := store.Recent(ctx, inv.Caller.ID, count)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &Reply{Text: "No history yet."}, nil
	}

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s  %-12s %s",
			e.Time.Local().Format("2006-01-02 15:04:05"),
			e.Outcome,
			util.TruncateWidth(e.Text, historyTextWidth),
		)
	}
	return &Reply{Text: sb.String()}, nil
}
