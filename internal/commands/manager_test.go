// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/cmdtree"
	"github.com/jeranaias/cmdroute/internal/mapper"
	"github.com/jeranaias/cmdroute/internal/matcher"
)

func mustParse(t *testing.T, decl string) *cmdtree.Node {
	t.Helper()
	n, err := cmdtree.Parse(decl)
	require.NoError(t, err)
	return n
}

func TestManager_FindCommand(t *testing.T) {
	m := DefaultManager()
	tree := mustParse(t, "add <a: Signed> <b: Unsigned>")

	match, err := m.FindCommand(tree, "add -4 7 extra")
	require.NoError(t, err)
	assert.Equal(t, []string{"add", "-4", "7"}, match.Matched())
	assert.Equal(t, []string{"extra"}, match.Rest())

	args, err := m.Resolve(match)
	require.NoError(t, err)
	assert.Equal(t, Bindings{"a": int64(-4), "b": uint64(7)}, args)
}

func TestManager_FindCommand_ParseError(t *testing.T) {
	m := DefaultManager()
	tree := mustParse(t, "say <msg: Text>")

	_, err := m.FindCommand(tree, `say "unterminated`)
	var perr *cmderr.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 4, perr.Start)
	assert.Equal(t, 16, perr.End)
}

func TestManager_FindCommand_NoPath(t *testing.T) {
	m := DefaultManager()
	tree := mustParse(t, "add <a: Signed>")

	_, err := m.FindCommand(tree, "add x")
	assert.ErrorIs(t, err, cmderr.ErrNoPathFound)

	_, err = m.FindCommand(tree, "")
	assert.ErrorIs(t, err, cmderr.ErrNoPathFound)
}

func TestManager_ResolveSkipsUnnamed(t *testing.T) {
	m := DefaultManager()
	tree := mustParse(t, "give <who: UserMention> coins <n: Unsigned>")

	match, err := m.FindCommand(tree, "give <@!42> coins 10")
	require.NoError(t, err)

	args, err := m.Resolve(match)
	require.NoError(t, err)
	assert.Len(t, args, 2)

	who, ok := Get[mapper.UserID](args, "who")
	require.True(t, ok)
	assert.Equal(t, mapper.UserID(42), who)

	_, ok = Get[string](args, "n")
	assert.False(t, ok, "wrong type must not be returned")
	assert.False(t, args.Has("coins"))
}

func TestManager_ResolveUnmapped(t *testing.T) {
	m := NewManager()
	tree := mustParse(t, "roll <n: Unsigned>")

	match, err := m.FindCommand(tree, "roll 3")
	require.NoError(t, err)

	_, err = m.Resolve(match)
	var unmapped *cmderr.UnmappedTypeError
	require.ErrorAs(t, err, &unmapped)
	assert.Equal(t, string(matcher.Unsigned), unmapped.Type)
	assert.Equal(t, "n", unmapped.Node)
}

func TestManager_MapperContract(t *testing.T) {
	m := NewManager().RegisterMapper(matcher.Unsigned, mapper.Func(func(string) (any, error) {
		return nil, errors.New("boom")
	}))

	_, err := m.Map(matcher.Unsigned, "1")
	assert.ErrorIs(t, err, cmderr.ErrMapperContract)
}

func TestManager_RegisterReplaces(t *testing.T) {
	m := DefaultManager()
	m.RegisterMapper(matcher.Text, mapper.Noop())

	v, err := m.Map(matcher.Text, "anything")
	require.NoError(t, err)
	assert.Equal(t, struct{}{}, v)
	assert.Contains(t, m.Types(), matcher.Bool)
}

func TestManager_Check(t *testing.T) {
	m := NewManager().RegisterMapper(matcher.Signed, mapper.Parse[int64]())

	assert.NoError(t, m.Check(mustParse(t, "add <a: Signed> <b: Signed>")))

	err := m.Check(mustParse(t, "move <a: Signed> <a: Signed> <to: Text>"))
	require.Error(t, err)
	errs := multierr.Errors(err)
	assert.Len(t, errs, 2)

	var dup *cmderr.DuplicateBindingError
	assert.ErrorAs(t, err, &dup)
	var unmapped *cmderr.UnmappedTypeError
	assert.ErrorAs(t, err, &unmapped)
}
