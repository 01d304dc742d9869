// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/commands"
	"github.com/jeranaias/cmdroute/internal/util"
)

// =============================================================================
// RENDERER
// =============================================================================

// Renderer turns replies and errors into terminal text.
type Renderer struct {
	styles   Styles
	color    bool
	width    int
	prefix   string
	markdown *glamour.TermRenderer
}

// Option is a functional option for configuring a Renderer.
type Option func(*Renderer)

// WithColor enables lipgloss styling and glamour markdown rendering.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}

// WithWidth sets the word wrap width used for markdown.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// WithPrefix sets the command prefix used in hints.
func WithPrefix(prefix string) Option {
	return func(r *Renderer) {
		r.prefix = prefix
	}
}

// New creates a renderer. Without WithColor output is plain text.
func New(opts ...Option) *Renderer {
	r := &Renderer{width: DefaultTerminalWidth, prefix: "!"}
	for _, opt := range opts {
		opt(r)
	}

	r.styles = PlainStyles()
	if r.color {
		lipgloss.SetColorProfile(ColorProfile())
		r.styles = DefaultStyles()
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(r.width),
		)
		if err == nil {
			r.markdown = md
		}
	}
	return r
}

// Styles returns the styles in use.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Reply renders a successful reply. Markdown replies go through glamour when
// colors are enabled.
func (r *Renderer) Reply(reply *commands.Reply) string {
	if reply == nil || reply.Text == "" {
		return ""
	}
	if reply.Markdown && r.markdown != nil {
		if out, err := r.markdown.Render(reply.Text); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return r.styles.Reply.Render(reply.Text)
}

// Error renders a dispatch error. text is the message the error was reported
// for, trimmed and normalized the way the router saw it.
func (r *Renderer) Error(text string, err error) string {
	var (
		parseErr *cmderr.ParseError
		usageErr *commands.UsageError
		notFound *cmderr.NotFoundError
		perm     *cmderr.MissingPermissionError
	)

	switch {
	case errors.As(err, &parseErr):
		return strings.Join([]string{
			r.styles.Error.Render("Error: " + parseErr.Message),
			"  " + text,
			"  " + r.styles.Caret.Render(Caret(text, parseErr.Start, parseErr.End)),
		}, "\n")

	case errors.As(err, &usageErr):
		lines := []string{r.styles.Error.Render("Invalid arguments for " + usageErr.Command + ".")}
		lines = append(lines, r.styles.Hint.Render("Usage:"))
		for _, line := range usageErr.Usage {
			lines = append(lines, "  "+r.styles.Command.Render(line))
		}
		return strings.Join(lines, "\n")

	case errors.As(err, &notFound):
		msg := "Unknown command."
		if notFound.Name != "" {
			msg = fmt.Sprintf("Unknown command %q.", notFound.Name)
		}
		return r.styles.Error.Render(msg) + " " +
			r.styles.Hint.Render("Type "+r.prefix+"help to list commands.")

	case errors.As(err, &perm):
		return r.styles.Error.Render(fmt.Sprintf("You need level %d to run this command.", perm.Level))

	case errors.Is(err, cmderr.ErrRateLimited):
		return r.styles.Error.Render("Slow down, too many commands.")

	default:
		return r.styles.Error.Render("Error: " + err.Error())
	}
}

// Prompt renders the REPL prompt for name.
func (r *Renderer) Prompt(name string) string {
	return r.styles.Prompt.Render(name + "> ")
}

// =============================================================================
// CARET
// =============================================================================

// Caret returns a line of carets under the inclusive byte span [start, end]
// of text, aligned by display width.
func Caret(text string, start, end int) string {
	end = min(max(end, start), len(text)-1)
	from := util.ColumnAt(text, start)
	to := from + 1
	if end >= 0 {
		for end > 0 && !utf8.RuneStart(text[end]) {
			end--
		}
		r, _ := utf8.DecodeRuneInString(text[end:])
		to = max(util.ColumnAt(text, end)+runewidth.RuneWidth(r), to)
	}
	return strings.Repeat(" ", from) + strings.Repeat("^", to-from)
}
