// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/cmdroute/internal/cmderr"
)

func completionSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	r := NewRegistry()
	r.MustRegister(&Command{
		Name:    "role",
		Aliases: []string{"r"},
		Syntax: []string{
			"add <who: UserMention>",
			"remove <who: UserMention>",
			"list",
		},
		Handler: noopHandler,
	})
	r.MustRegister(&Command{Name: "roll", Syntax: []string{"<n: Unsigned>"}, Handler: noopHandler})
	r.MustRegister(&Command{Name: "rules", Hidden: true, Handler: noopHandler})
	return &Snapshot{Registry: r, Manager: DefaultManager(), Prefix: "!"}
}

func values(completions []Completion) []string {
	var out []string
	for _, c := range completions {
		out = append(out, c.Value)
	}
	return out
}

func TestCompleter_Commands(t *testing.T) {
	snap := completionSnapshot(t)
	c := NewCompleter(func() *Snapshot { return snap })

	assert.Equal(t, []string{"role", "roll"}, values(c.Complete("!rol")))
	assert.Equal(t, []string{"r", "role", "roll"}, values(c.Complete("!r")), "exact alias first")
	assert.Nil(t, c.Complete("role"), "no prefix")
	assert.Nil(t, c.Complete(`!say "open`))
}

func TestCompleter_Args(t *testing.T) {
	snap := completionSnapshot(t)
	c := NewCompleter(func() *Snapshot { return snap })

	assert.Equal(t, []string{"add", "list", "remove"}, values(c.Complete("!role ")))
	assert.Equal(t, []string{"remove"}, values(c.Complete("!r re")))

	hints := c.Complete("!role add ")
	require.Len(t, hints, 1)
	assert.Empty(t, hints[0].Value)
	assert.Equal(t, "<who: UserMention>", hints[0].Display)

	assert.Nil(t, c.Complete("!role nope "))
	assert.Nil(t, c.Complete("!unknown "))
}

func TestCompleter_Lines(t *testing.T) {
	snap := completionSnapshot(t)
	c := NewCompleter(func() *Snapshot { return snap })

	assert.Equal(t, []string{"!role", "!roll"}, c.Lines("!rol"))
	assert.Equal(t, []string{"!role list"}, c.Lines("!role l"))
	assert.Empty(t, c.Lines("!roll "), "hints are not lines")
}

func TestDispatch_NoSuggestions(t *testing.T) {
	snap := completionSnapshot(t)
	router := NewRouter(snap)

	// the completer knows candidates for these prefixes
	require.NotEmpty(t, NewCompleter(router.Snapshot).Complete("!ro"))
	require.NotEmpty(t, NewCompleter(router.Snapshot).Complete("!role a"))

	_, err := router.Dispatch(context.Background(), alice, "!ro")
	var notFound *cmderr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ro", notFound.Name)
	assert.Equal(t, "command not found: ro", err.Error())

	_, err = router.Dispatch(context.Background(), alice, "!role a")
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.True(t, errors.Is(err, cmderr.ErrNoPathFound))
	assert.Equal(t, []string{"!role add <who: UserMention>", "!role remove <who: UserMention>", "!role list"}, usage.Usage)
}
