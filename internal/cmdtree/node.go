// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmdtree

import (
	"iter"
	"strings"

	"github.com/jeranaias/cmdroute/internal/matcher"
)

// =============================================================================
// NODE
// =============================================================================

// Node is one position of a command syntax. A node with a non-empty Name
// binds the fragment it matches under that name.
type Node struct {
	Matcher  matcher.Matcher
	Name     string
	Children []*Node
}

// NewNode returns an unnamed node.
func NewNode(m matcher.Matcher) *Node {
	return &Node{Matcher: m}
}

// NewNamed returns a node binding its fragment under name.
func NewNamed(name string, m matcher.Matcher) *Node {
	return &Node{Matcher: m, Name: name}
}

// Add appends children in order and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// IsTerminal reports whether n ends a command.
func (n *Node) IsTerminal() bool {
	return len(n.Children) == 0
}

// Equal reports structural equality: same matchers, names and child order.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Name != other.Name || !matcher.Equal(n.Matcher, other.Matcher) {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// String renders the subtree, one node per line, indented by depth.
func (n *Node) String() string {
	var sb strings.Builder
	n.render(&sb, 0)
	return sb.String()
}

func (n *Node) render(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Matcher.String())
	if n.Name != "" {
		sb.WriteString(" as ")
		sb.WriteString(n.Name)
	}
	sb.WriteByte('\n')
	for _, child := range n.Children {
		child.render(sb, depth+1)
	}
}

// Paths yields every root-to-terminal path below n in walk order.
func (n *Node) Paths() iter.Seq[Path] {
	return func(yield func(Path) bool) {
		n.paths(nil, yield)
	}
}

func (n *Node) paths(prefix Path, yield func(Path) bool) bool {
	path := append(prefix[:len(prefix):len(prefix)], n)
	if n.IsTerminal() {
		return yield(path)
	}
	for _, child := range n.Children {
		if !child.paths(path, yield) {
			return false
		}
	}
	return true
}

// =============================================================================
// PATH
// =============================================================================

// Path lists the nodes visited from the root to a terminal node.
type Path []*Node

// Terminal returns the last node of the path, or nil for an empty path.
func (p Path) Terminal() *Node {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Usage renders the path in declaration syntax using the tags of s.
func (p Path) Usage(s *TagSet) string {
	parts := make([]string, len(p))
	for i, node := range p {
		parts[i] = s.Describe(node)
	}
	return strings.Join(parts, " ")
}

func (p Path) String() string {
	return p.Usage(builtinTags)
}
