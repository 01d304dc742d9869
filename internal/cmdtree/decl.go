// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmdtree

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/matcher"
)

// Declaration parse messages.
const (
	MsgUnclosedPlaceholder = "Can't find closing '>'."
	MsgEmptyPlaceholder    = "Empty placeholder."
	MsgMissingName         = "Placeholder is missing a binding name."
)

// =============================================================================
// TAG SET
// =============================================================================

// TagSet maps the type tags of textual declarations, such as "Signed" in
// "<n: Signed>", to matcher constructors.
type TagSet struct {
	mu     sync.RWMutex
	byTag  map[string]func() matcher.Matcher
	byType map[matcher.TypeID]string
}

// builtinTags backs Parse and Path.String. It knows Unsigned, Signed,
// UserMention, Text and Bool and is never extended; callers that register
// their own tags build a TagSet with NewTagSet.
var builtinTags = NewTagSet()

// NewTagSet returns a tag set preloaded with the built-in matchers.
func NewTagSet() *TagSet {
	s := &TagSet{
		byTag:  make(map[string]func() matcher.Matcher),
		byType: make(map[matcher.TypeID]string),
	}
	s.Register("Unsigned", matcher.NewUnsigned)
	s.Register("Signed", matcher.NewSigned)
	s.Register("UserMention", matcher.NewUserMention)
	s.Register("Text", matcher.NewText)
	s.Register("Bool", matcher.NewBool)
	return s
}

// Register makes tag available in declarations. Registering an existing tag
// replaces it.
func (s *TagSet) Register(tag string, fn func() matcher.Matcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTag[tag] = fn
	s.byType[fn().TypeID()] = tag
}

// Lookup returns a new matcher for tag.
func (s *TagSet) Lookup(tag string) (matcher.Matcher, error) {
	s.mu.RLock()
	fn, ok := s.byTag[tag]
	s.mu.RUnlock()
	if !ok {
		return nil, &cmderr.UnknownMatcherError{Tag: tag}
	}
	return fn(), nil
}

// TagOf returns the tag registered for a type identity.
func (s *TagSet) TagOf(id matcher.TypeID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tag, ok := s.byType[id]
	return tag, ok
}

// Names returns the registered tags in sorted order.
func (s *TagSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.byTag))
	for tag := range s.byTag {
		names = append(names, tag)
	}
	slices.Sort(names)
	return names
}

// Describe renders a node in declaration syntax.
func (s *TagSet) Describe(n *Node) string {
	if lits, ok := matcher.Literals(n.Matcher); ok {
		if n.Name != "" {
			return "<" + n.Name + ">"
		}
		return strings.Join(lits, "|")
	}

	tag, ok := s.TagOf(n.Matcher.TypeID())
	if !ok {
		tag = string(n.Matcher.TypeID())
	}
	if n.Name == "" {
		return "<" + tag + ">"
	}
	return "<" + n.Name + ": " + tag + ">"
}

// =============================================================================
// DECLARATIONS
// =============================================================================

// Parse builds a chain from a declaration using the built-in tags.
func Parse(decl string) (*Node, error) {
	return builtinTags.Parse(decl)
}

// Parse builds a chain from a declaration such as
// "root <a: Signed> <b: UserMention>". Bare words become literal nodes,
// "<name: Tag>" becomes a named node using the tag's matcher and "<name>"
// becomes a named literal node matching the word name.
func (s *TagSet) Parse(decl string) (*Node, error) {
	b := NewBranched()
	if err := s.Append(b, decl); err != nil {
		return nil, err
	}
	return b.Build()
}

// Append adds the nodes of a declaration to an existing chain.
func (s *TagSet) Append(b *Branched, decl string) error {
	pos := 0
	for {
		pos = len(decl) - len(strings.TrimLeftFunc(decl[pos:], unicode.IsSpace))
		if pos >= len(decl) {
			return b.Err()
		}

		if decl[pos] != '<' {
			end := strings.IndexFunc(decl[pos:], unicode.IsSpace)
			if end < 0 {
				end = len(decl) - pos
			}
			b.Exact(decl[pos : pos+end])
			pos += end
			continue
		}

		closing := strings.IndexByte(decl[pos:], '>')
		if closing < 0 {
			return &cmderr.ParseError{Message: MsgUnclosedPlaceholder, Start: pos, End: len(decl) - 1}
		}
		node, err := s.placeholder(decl[pos+1:pos+closing], pos, pos+closing)
		if err != nil {
			return err
		}
		b.Node(node)
		pos += closing + 1
	}
}

// placeholder parses the inside of "<...>". start and end locate the angle
// brackets for error reporting.
func (s *TagSet) placeholder(body string, start, end int) (*Node, error) {
	name, tag, typed := strings.Cut(body, ":")
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)

	switch {
	case !typed && name == "":
		return nil, &cmderr.ParseError{Message: MsgEmptyPlaceholder, Start: start, End: end}
	case typed && name == "":
		return nil, &cmderr.ParseError{Message: MsgMissingName, Start: start, End: end}
	case !typed:
		return NewNamed(name, matcher.Exact(name)), nil
	}

	m, err := s.Lookup(tag)
	if err != nil {
		return nil, fmt.Errorf("placeholder %q: %w", name, err)
	}
	return NewNamed(name, m), nil
}
