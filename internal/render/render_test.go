// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/commands"
)

func TestCaret(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		start, end int
		want       string
	}{
		{"single byte", "abc", 1, 1, " ^"},
		{"span", `!say "hi`, 5, 7, "     ^^^"},
		{"end before start", "abc", 2, 0, "  ^"},
		{"past end", "ab", 1, 10, " ^"},
		{"wide rune", `!日本 "x`, 8, 9, "      ^^"},
		{"span over wide rune", `"日本`, 0, 6, "^^^^^"},
		{"empty text", "", 0, 0, "^"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Caret(tt.text, tt.start, tt.end); got != tt.want {
				t.Errorf("Caret(%q, %d, %d) = %q, want %q", tt.text, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestRenderer_Error(t *testing.T) {
	r := New(WithPrefix("?"))

	out := r.Error(`?say "hi`, &cmderr.ParseError{Message: "Can't find closing quote.", Start: 5, End: 7})
	assert.Equal(t, "Error: Can't find closing quote.\n  ?say \"hi\n       ^^^", out)

	out = r.Error("?add x", fmt.Errorf("wrapped: %w", &commands.UsageError{
		Command: "add",
		Usage:   []string{"?add <a: Signed>"},
	}))
	assert.Equal(t, "Invalid arguments for add.\nUsage:\n  ?add <a: Signed>", out)

	out = r.Error("?zap", &cmderr.NotFoundError{Name: "zap"})
	assert.Equal(t, `Unknown command "zap". Type ?help to list commands.`, out)

	out = r.Error("?", &cmderr.NotFoundError{})
	assert.True(t, strings.HasPrefix(out, "Unknown command."))

	assert.Contains(t, r.Error("?ban", &cmderr.MissingPermissionError{Level: 3}), "level 3")
	assert.Contains(t, r.Error("?add", cmderr.ErrRateLimited), "too many")
	assert.Equal(t, "Error: boom", r.Error("?x", errors.New("boom")))
}

func TestRenderer_Reply(t *testing.T) {
	r := New()

	assert.Empty(t, r.Reply(nil))
	assert.Empty(t, r.Reply(&commands.Reply{}))
	assert.Equal(t, "# Title", r.Reply(&commands.Reply{Text: "# Title", Markdown: true}),
		"markdown is left alone without colors")
	assert.Equal(t, "plain", r.Reply(&commands.Reply{Text: "plain"}))
}

func TestRenderer_Prompt(t *testing.T) {
	assert.Equal(t, "alice> ", New().Prompt("alice"))
}
