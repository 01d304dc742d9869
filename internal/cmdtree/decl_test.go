// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmdtree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/matcher"
)

func TestParse_Literals(t *testing.T) {
	root, err := Parse("root add sub")
	require.NoError(t, err)

	want := NewNode(matcher.Exact("root")).Add(
		NewNode(matcher.Exact("add")).Add(
			NewNode(matcher.Exact("sub")),
		),
	)
	assert.True(t, want.Equal(root))
}

func TestParse_Typed(t *testing.T) {
	root, err := Parse("root <a: Signed> <b: UserMention>")
	require.NoError(t, err)

	want := NewNode(matcher.Exact("root")).Add(
		NewNamed("a", matcher.NewSigned()).Add(
			NewNamed("b", matcher.NewUserMention()),
		),
	)
	assert.True(t, want.Equal(root))
}

func TestParse_NamedLiteral(t *testing.T) {
	root, err := Parse("mode <fast>")
	require.NoError(t, err)
	require.Len(t, root.Children, 1)

	node := root.Children[0]
	assert.Equal(t, "fast", node.Name)
	assert.True(t, node.Matcher.Matches("fast"))
	assert.False(t, node.Matcher.Matches("slow"))
}

func TestParse_Whitespace(t *testing.T) {
	root, err := Parse("  give\t<to:UserMention>   <n :  Unsigned>  ")
	require.NoError(t, err)
	assert.Equal(t, "give <to: UserMention> <n: Unsigned>", Path{root, root.Children[0], root.Children[0].Children[0]}.String())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("root <a: Garbage>")
	var unknown *cmderr.UnknownMatcherError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Garbage", unknown.Tag)

	_, err = Parse("")
	assert.ErrorIs(t, err, cmderr.ErrEmptyBuilder)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, cmderr.ErrEmptyBuilder)
}

func TestParse_PlaceholderErrors(t *testing.T) {
	tests := []struct {
		decl    string
		message string
		start   int
		end     int
	}{
		{"root <a: Signed", MsgUnclosedPlaceholder, 5, 14},
		{"root <>", MsgEmptyPlaceholder, 5, 6},
		{"root < : Signed>", MsgMissingName, 5, 15},
	}

	for _, tc := range tests {
		_, err := Parse(tc.decl)
		var perr *cmderr.ParseError
		require.True(t, errors.As(err, &perr), tc.decl)
		assert.Equal(t, tc.message, perr.Message, tc.decl)
		assert.Equal(t, tc.start, perr.Start, tc.decl)
		assert.Equal(t, tc.end, perr.End, tc.decl)
	}
}

func TestTagSet_Register(t *testing.T) {
	s := NewTagSet()
	s.Register("Word", matcher.NewText)

	root, err := s.Parse("echo <w: Word>")
	require.NoError(t, err)
	assert.Equal(t, matcher.Text, root.Children[0].Matcher.TypeID())

	tag, ok := s.TagOf(matcher.Text)
	assert.True(t, ok)
	assert.Equal(t, "Word", tag)

	// the package default is untouched
	_, err = Parse("echo <w: Word>")
	var unknown *cmderr.UnknownMatcherError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Word", unknown.Tag)

	_, err = NewTagSet().Parse("echo <w: Word>")
	assert.ErrorAs(t, err, &unknown, "fresh sets start from the built-in tags")

	// paths render with the built-in tags, not with s
	assert.Equal(t, "echo <w: Text>", Path{root, root.Children[0]}.String())
}

func TestTagSet_Names(t *testing.T) {
	assert.Equal(t, []string{"Bool", "Signed", "Text", "Unsigned", "UserMention"}, NewTagSet().Names())
}

func TestTagSet_Append(t *testing.T) {
	b := NewBranched().Matcher(matcher.OneOf("calc", "c"))
	require.NoError(t, NewTagSet().Append(b, "add <a: Signed>"))
	root, err := b.Build()
	require.NoError(t, err)

	path, ok := FindPath(root, []string{"c", "add", "-3"})
	require.True(t, ok)
	assert.Equal(t, "calc|c add <a: Signed>", path.String())
}

func TestDescribe(t *testing.T) {
	tags := NewTagSet()
	assert.Equal(t, "go", tags.Describe(NewNode(matcher.Exact("go"))))
	assert.Equal(t, "<dir>", tags.Describe(NewNamed("dir", matcher.Exact("dir"))))
	assert.Equal(t, "<n: Signed>", tags.Describe(NewNamed("n", matcher.NewSigned())))
	assert.Equal(t, "<Bool>", tags.Describe(NewNode(matcher.NewBool())))
}
