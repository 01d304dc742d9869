// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmdtree

import (
	"fmt"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/matcher"
)

// =============================================================================
// BRANCHED BUILDER
// =============================================================================

// Branched builds a chain: every added node becomes the only child of the
// node added before it. Methods record the first error and turn into no-ops
// afterwards; Build reports it.
type Branched struct {
	nodes []*Node
	err   error
}

// NewBranched returns an empty chain builder.
func NewBranched() *Branched {
	return &Branched{}
}

// FromFunc runs fn on a fresh builder and returns the builder, or the error
// returned by fn or recorded while it ran.
func FromFunc(fn func(b *Branched) error) (*Branched, error) {
	b := NewBranched()
	if err := fn(b); err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}
	return b, nil
}

// Node appends a prebuilt node, children included.
func (b *Branched) Node(n *Node) *Branched {
	if b.err == nil {
		b.nodes = append(b.nodes, n)
	}
	return b
}

// Matcher appends an unnamed node for m.
func (b *Branched) Matcher(m matcher.Matcher) *Branched {
	return b.Node(NewNode(m))
}

// Named appends a node binding its fragment under name.
func (b *Branched) Named(name string, m matcher.Matcher) *Branched {
	return b.Node(NewNamed(name, m))
}

// Exact appends a literal word.
func (b *Branched) Exact(lit string) *Branched {
	return b.Matcher(matcher.Exact(lit))
}

// Signed appends an unnamed signed integer.
func (b *Branched) Signed() *Branched {
	return b.Matcher(matcher.NewSigned())
}

// Unsigned appends an unnamed unsigned integer.
func (b *Branched) Unsigned() *Branched {
	return b.Matcher(matcher.NewUnsigned())
}

// UserMention appends an unnamed user mention.
func (b *Branched) UserMention() *Branched {
	return b.Matcher(matcher.NewUserMention())
}

// Text appends an unnamed free-form word.
func (b *Branched) Text() *Branched {
	return b.Matcher(matcher.NewText())
}

// Bool appends an unnamed boolean.
func (b *Branched) Bool() *Branched {
	return b.Matcher(matcher.NewBool())
}

// Flat opens a parallel section below the last added node. Each branch
// declared in fn becomes a child of that node, in declaration order.
// Nodes added to b after Flat become further children of the same node.
func (b *Branched) Flat(fn func(p *Parallel)) *Branched {
	if b.err != nil {
		return b
	}
	if len(b.nodes) == 0 {
		b.err = fmt.Errorf("parallel section without a parent node: %w", cmderr.ErrEmptyBuilder)
		return b
	}

	p := &Parallel{}
	fn(p)
	if err := p.build(); err != nil {
		b.err = err
		return b
	}

	tip := b.nodes[len(b.nodes)-1]
	tip.Children = append(tip.Children, p.branches...)
	return b
}

// Err returns the first error recorded by the builder.
func (b *Branched) Err() error {
	return b.err
}

// Build links the chain and returns its first node. The builder is consumed;
// building it again fails with ErrEmptyBuilder.
func (b *Branched) Build() (*Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.nodes) == 0 {
		return nil, cmderr.ErrEmptyBuilder
	}

	nodes := b.nodes
	b.nodes = nil
	for i := len(nodes) - 1; i > 0; i-- {
		nodes[i-1].Children = append(nodes[i-1].Children, nodes[i])
	}
	return nodes[0], nil
}

// =============================================================================
// PARALLEL BUILDER
// =============================================================================

// Parallel collects alternative branches below one parent node.
type Parallel struct {
	branches []*Node
	err      error
}

// Branch builds one alternative with its own chain builder.
func (p *Parallel) Branch(fn func(b *Branched)) *Parallel {
	if p.err != nil {
		return p
	}
	b := NewBranched()
	fn(b)
	node, err := b.Build()
	if err != nil {
		p.err = err
		return p
	}
	p.branches = append(p.branches, node)
	return p
}

// Node adds a prebuilt subtree as one alternative.
func (p *Parallel) Node(n *Node) *Parallel {
	if p.err == nil {
		p.branches = append(p.branches, n)
	}
	return p
}

func (p *Parallel) build() error {
	if p.err != nil {
		return p.err
	}
	if len(p.branches) == 0 {
		return fmt.Errorf("parallel section without branches: %w", cmderr.ErrEmptyBuilder)
	}
	return nil
}
