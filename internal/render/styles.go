// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used for output.
type Styles struct {
	Reply   lipgloss.Style
	Command lipgloss.Style
	Error   lipgloss.Style
	Caret   lipgloss.Style
	Hint    lipgloss.Style
	Prompt  lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() Styles {
	return Styles{
		Reply:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Command: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Caret:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
	}
}

// PlainStyles returns styles that leave text untouched.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Reply:   plain,
		Command: plain,
		Error:   plain,
		Caret:   plain,
		Hint:    plain,
		Prompt:  plain,
	}
}
