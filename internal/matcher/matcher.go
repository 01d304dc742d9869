// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TypeID names the semantic type produced from a matched fragment.
type TypeID string

const (
	// None marks pure syntax nodes; mapping yields the fragment itself.
	None TypeID = "none"
	// Unsigned is the identity of uint64 values.
	Unsigned TypeID = "u64"
	// Signed is the identity of int64 values.
	Signed TypeID = "i64"
	// UserMention is the identity of user ids taken from mentions.
	UserMention TypeID = "user_id"
	// Text is the identity of free-form string arguments.
	Text TypeID = "text"
	// Bool is the identity of boolean arguments.
	Bool TypeID = "bool"
)

// Matcher decides whether a fragment is acceptable at a tree position.
// String must return a stable description; two matchers with equal
// descriptions and type ids are considered structurally equal.
type Matcher interface {
	fmt.Stringer
	Matches(fragment string) bool
	TypeID() TypeID
}

// Equal reports whether two matchers are structurally equal.
func Equal(a, b Matcher) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.TypeID() == b.TypeID() && a.String() == b.String()
}

// =============================================================================
// LITERALS
// =============================================================================

type exact struct {
	lit string
}

// Exact accepts only lit.
func Exact(lit string) Matcher {
	return exact{lit: lit}
}

func (m exact) Matches(fragment string) bool { return fragment == m.lit }
func (m exact) TypeID() TypeID               { return None }
func (m exact) String() string               { return strconv.Quote(m.lit) }

type oneOf struct {
	lits []string
}

// OneOf accepts any of lits. With a single literal it behaves like Exact.
func OneOf(lits ...string) Matcher {
	if len(lits) == 1 {
		return Exact(lits[0])
	}
	return oneOf{lits: slices.Clone(lits)}
}

func (m oneOf) Matches(fragment string) bool { return slices.Contains(m.lits, fragment) }
func (m oneOf) TypeID() TypeID               { return None }

func (m oneOf) String() string {
	quoted := make([]string, len(m.lits))
	for i, lit := range m.lits {
		quoted[i] = strconv.Quote(lit)
	}
	return strings.Join(quoted, "|")
}

// Literals returns the words accepted by an Exact or OneOf matcher.
func Literals(m Matcher) ([]string, bool) {
	switch v := m.(type) {
	case exact:
		return []string{v.lit}, true
	case oneOf:
		return slices.Clone(v.lits), true
	}
	return nil, false
}

// =============================================================================
// NUMBERS
// =============================================================================

type unsigned struct{}

// NewUnsigned accepts non-empty runs of ASCII digits that fit in a uint64.
func NewUnsigned() Matcher { return unsigned{} }

func (unsigned) Matches(fragment string) bool {
	if !allDigits(fragment) {
		return false
	}
	_, err := strconv.ParseUint(fragment, 10, 64)
	return err == nil
}

func (unsigned) TypeID() TypeID { return Unsigned }
func (unsigned) String() string { return "<unsigned>" }

type signed struct{}

// NewSigned accepts decimal integers with an optional leading '-' that fit in
// an int64. A lone "-" is rejected.
func NewSigned() Matcher { return signed{} }

func (signed) Matches(fragment string) bool {
	if !allDigits(strings.TrimPrefix(fragment, "-")) {
		return false
	}
	_, err := strconv.ParseInt(fragment, 10, 64)
	return err == nil
}

func (signed) TypeID() TypeID { return Signed }
func (signed) String() string { return "<signed>" }

// =============================================================================
// MENTIONS
// =============================================================================

type mention struct{}

// NewUserMention accepts "<@DIGITS>" and "<@!DIGITS>".
func NewUserMention() Matcher { return mention{} }

func (mention) Matches(fragment string) bool {
	_, ok := MentionDigits(fragment)
	return ok
}

func (mention) TypeID() TypeID { return UserMention }
func (mention) String() string { return "<user-mention>" }

// MentionDigits returns the id digits of a well formed mention. The digits
// are guaranteed to parse as a uint64 when ok is true.
func MentionDigits(fragment string) (digits string, ok bool) {
	body, found := strings.CutPrefix(fragment, "<@")
	if !found {
		return "", false
	}
	body, found = strings.CutSuffix(body, ">")
	if !found {
		return "", false
	}
	body = strings.TrimPrefix(body, "!")
	if !allDigits(body) {
		return "", false
	}
	if _, err := strconv.ParseUint(body, 10, 64); err != nil {
		return "", false
	}
	return body, true
}

// =============================================================================
// TEXT AND BOOL
// =============================================================================

type text struct{}

// NewText accepts every fragment, including the empty one.
func NewText() Matcher { return text{} }

func (text) Matches(string) bool { return true }
func (text) TypeID() TypeID      { return Text }
func (text) String() string      { return "<text>" }

type boolean struct{}

// NewBool accepts "true" and "false".
func NewBool() Matcher { return boolean{} }

func (boolean) Matches(fragment string) bool { return fragment == "true" || fragment == "false" }
func (boolean) TypeID() TypeID               { return Bool }
func (boolean) String() string               { return "<bool>" }

// =============================================================================
// HELPERS
// =============================================================================

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
