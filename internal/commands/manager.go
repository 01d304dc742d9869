// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/cmdtree"
	"github.com/jeranaias/cmdroute/internal/fragment"
	"github.com/jeranaias/cmdroute/internal/mapper"
	"github.com/jeranaias/cmdroute/internal/matcher"
	"github.com/jeranaias/cmdroute/internal/typemap"
)

// =============================================================================
// MATCH AND BINDINGS
// =============================================================================

// Match is a successful walk of a command tree.
type Match struct {
	// Path lists the accepting nodes from the root to a terminal.
	Path cmdtree.Path

	// Fragments is the complete tokenized input.
	Fragments []string
}

// Matched returns the fragments consumed by the path.
func (m *Match) Matched() []string {
	return m.Fragments[:len(m.Path)]
}

// Rest returns the fragments left after the terminal node.
func (m *Match) Rest() []string {
	return m.Fragments[len(m.Path):]
}

// Bindings maps node names to mapped values.
type Bindings map[string]any

// Has reports whether name was bound.
func (b Bindings) Has(name string) bool {
	_, ok := b[name]
	return ok
}

// Get returns the value bound to name if it has type T.
func Get[T any](b Bindings, name string) (T, bool) {
	v, ok := b[name].(T)
	return v, ok
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager pairs type identities with mappers and resolves matched paths into
// bindings. Register mappers before sharing a Manager between goroutines.
type Manager struct {
	mappers *typemap.Map[mapper.Mapper]
}

// NewManager returns a manager without mappers.
func NewManager() *Manager {
	return &Manager{mappers: typemap.New[mapper.Mapper]()}
}

// DefaultManager returns a manager with mappers for every built-in matcher.
func DefaultManager() *Manager {
	return NewManager().
		RegisterMapper(matcher.None, mapper.Identity()).
		RegisterMapper(matcher.Text, mapper.Identity()).
		RegisterMapper(matcher.Unsigned, mapper.Parse[uint64]()).
		RegisterMapper(matcher.Signed, mapper.Parse[int64]()).
		RegisterMapper(matcher.UserMention, mapper.Mention()).
		RegisterMapper(matcher.Bool, mapper.Parse[bool]())
}

// RegisterMapper installs m for id, replacing any previous mapper.
func (m *Manager) RegisterMapper(id matcher.TypeID, mp mapper.Mapper) *Manager {
	m.mappers.Insert(id, mp)
	return m
}

// Mapper returns the mapper installed for id.
func (m *Manager) Mapper(id matcher.TypeID) (mapper.Mapper, bool) {
	return m.mappers.Get(id)
}

// Types returns the identities that have a mapper.
func (m *Manager) Types() []matcher.TypeID {
	return m.mappers.Keys()
}

// Map converts one fragment with the mapper registered for id.
func (m *Manager) Map(id matcher.TypeID, frag string) (any, error) {
	mp, ok := m.mappers.Get(id)
	if !ok {
		return nil, &cmderr.UnmappedTypeError{Type: string(id)}
	}
	v, err := mp.Map(frag)
	if err != nil {
		return nil, fmt.Errorf("%w: type %s, fragment %q: %w", cmderr.ErrMapperContract, id, frag, err)
	}
	return v, nil
}

// FindCommand tokenizes raw and walks tree. A malformed input returns the
// tokenizer's ParseError without walking; an input no path accepts returns
// ErrNoPathFound.
func (m *Manager) FindCommand(tree *cmdtree.Node, raw string) (*Match, error) {
	frags, err := fragment.Collect(raw)
	if err != nil {
		return nil, err
	}
	return m.FindPath(tree, frags)
}

// FindPath walks tree with fragments that were tokenized already.
func (m *Manager) FindPath(tree *cmdtree.Node, frags []string) (*Match, error) {
	path, ok := cmdtree.FindPath(tree, frags)
	if !ok {
		return nil, cmderr.ErrNoPathFound
	}
	return &Match{Path: path, Fragments: frags}, nil
}

// Resolve maps the fragment of every named node on the path. Unnamed nodes
// are syntax only and produce no binding.
func (m *Manager) Resolve(match *Match) (Bindings, error) {
	bindings := make(Bindings)
	for i, node := range match.Path {
		if node.Name == "" {
			continue
		}
		v, err := m.Map(node.Matcher.TypeID(), match.Fragments[i])
		if err != nil {
			var unmapped *cmderr.UnmappedTypeError
			if errors.As(err, &unmapped) {
				unmapped.Node = node.Name
			}
			return nil, err
		}
		bindings[node.Name] = v
	}
	return bindings, nil
}

// Check reports configuration defects of tree: named nodes whose type has no
// mapper and binding names used twice on one path. All problems are
// returned together.
func (m *Manager) Check(tree *cmdtree.Node) error {
	var errs error
	unmapped := make(map[*cmdtree.Node]bool)

	for path := range tree.Paths() {
		seen := make(map[string]bool)
		for _, node := range path {
			if node.Name == "" {
				continue
			}
			id := node.Matcher.TypeID()
			if _, ok := m.mappers.Get(id); !ok && !unmapped[node] {
				unmapped[node] = true
				errs = multierr.Append(errs, &cmderr.UnmappedTypeError{Type: string(id), Node: node.Name})
			}
			if seen[node.Name] {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, &cmderr.DuplicateBindingError{Name: node.Name}))
			}
			seen[node.Name] = true
		}
	}
	return errs
}
