// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mapper

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/cmdroute/internal/matcher"
)

func TestParse(t *testing.T) {
	v, err := Parse[int64]().Map("-42")
	require.NoError(t, err)
	assert.Equal(t, int64(-42), v)

	v, err = Parse[uint64]().Map("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), v)

	v, err = Parse[bool]().Map("true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Parse[float64]().Map("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	v, err = Parse[string]().Map("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", v)
}

func TestParse_Error(t *testing.T) {
	_, err := Parse[uint64]().Map("-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, strconv.ErrSyntax))
}

func TestMention(t *testing.T) {
	tests := map[string]UserID{
		"<@123>":  123,
		"<@!456>": 456,
		"<@0>":    0,
	}
	m := Mention()
	for frag, want := range tests {
		got, err := m.Map(frag)
		require.NoError(t, err, frag)
		assert.Equal(t, want, got, frag)
	}

	_, err := m.Map("@123")
	assert.Error(t, err)
}

func TestMention_AgreesWithMatcher(t *testing.T) {
	m := matcher.NewUserMention()
	for _, frag := range []string{"<@1>", "<@!18446744073709551615>", "<@>", "<@x>", "<@18446744073709551616>"} {
		_, err := Mention().Map(frag)
		assert.Equal(t, m.Matches(frag), err == nil, frag)
	}
}

func TestIdentityAndNoop(t *testing.T) {
	v, err := Identity().Map("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = Noop().Map("hello")
	require.NoError(t, err)
	assert.Equal(t, struct{}{}, v)
}

func TestUserID(t *testing.T) {
	id := UserID(99)
	assert.Equal(t, "99", id.String())
	assert.Equal(t, "<@99>", id.Mention())
}

func TestFunc(t *testing.T) {
	length := Func(func(s string) (any, error) { return len(s), nil })
	v, err := length.Map("four")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}
