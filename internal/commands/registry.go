// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/multierr"

	"github.com/jeranaias/cmdroute/internal/cmdtree"
	"github.com/jeranaias/cmdroute/internal/matcher"
)

// ErrDuplicateName is returned when a command name or alias is already taken.
var ErrDuplicateName = errors.New("command name already registered")

// DefaultCategory groups commands registered without a category.
const DefaultCategory = "General"

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Handler executes a matched command.
type Handler func(ctx context.Context, inv *Invocation) (*Reply, error)

// Command is a chat command that can be dispatched by a Router.
type Command struct {
	// Name is the primary command word, without prefix (e.g., "calc")
	Name string

	// Aliases are alternative command words (e.g., "c")
	Aliases []string

	// Description is shown in help
	Description string

	// Category for grouping in help display
	Category string

	// Level is the minimum caller level allowed to run the command
	Level uint32

	// Hidden commands don't appear in help listings
	Hidden bool

	// Syntax holds one declaration per accepted form, without the command
	// word, e.g. "add <a: Signed> <b: Signed>". Forms are tried in order.
	Syntax []string

	// Handler is the function that executes the command
	Handler Handler

	tree  *cmdtree.Node
	usage []string
}

// Tree returns the compiled command tree. It is nil until the command has
// been registered.
func (c *Command) Tree() *cmdtree.Node {
	return c.tree
}

// Usage returns one line per accepted form, starting with the command name.
func (c *Command) Usage() []string {
	return c.usage
}

// compile builds the tree: the root accepts the name or any alias and each
// syntax form becomes one branch below it.
func (c *Command) compile(tags *cmdtree.TagSet) error {
	names := append([]string{c.Name}, c.Aliases...)
	b := cmdtree.NewBranched().Matcher(matcher.OneOf(names...))

	forms := c.Syntax
	if len(forms) == 1 && strings.TrimSpace(forms[0]) == "" {
		forms = nil
	}

	switch len(forms) {
	case 0:
	case 1:
		if err := tags.Append(b, forms[0]); err != nil {
			return fmt.Errorf("syntax %q: %w", forms[0], err)
		}
	default:
		branches := make([]*cmdtree.Node, 0, len(forms))
		for _, form := range forms {
			if strings.TrimSpace(form) == "" {
				return errors.New("empty syntax must be the only form")
			}
			node, err := tags.Parse(form)
			if err != nil {
				return fmt.Errorf("syntax %q: %w", form, err)
			}
			branches = append(branches, node)
		}
		b.Flat(func(p *cmdtree.Parallel) {
			for _, node := range branches {
				p.Node(node)
			}
		})
	}

	tree, err := b.Build()
	if err != nil {
		return err
	}

	c.tree = tree
	c.usage = c.usage[:0]
	for path := range tree.Paths() {
		line := c.Name
		if len(path) > 1 {
			line += " " + path[1:].Usage(tags)
		}
		c.usage = append(c.usage, line)
	}
	return nil
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
	order    []*Command
	tags     *cmdtree.TagSet
}

// NewRegistry creates an empty registry with its own set of the built-in
// declaration tags.
func NewRegistry() *Registry {
	return NewRegistryWithTags(cmdtree.NewTagSet())
}

// NewRegistryWithTags creates an empty registry using tags to compile
// syntax declarations.
func NewRegistryWithTags(tags *cmdtree.TagSet) *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
		tags:     tags,
	}
}

// Register compiles cmd and adds it to the registry.
func (r *Registry) Register(cmd *Command) error {
	if err := validateName(cmd.Name); err != nil {
		return err
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %q: no handler", cmd.Name)
	}
	for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
		if err := validateName(name); err != nil {
			return fmt.Errorf("command %q: %w", cmd.Name, err)
		}
		if r.Get(name) != nil {
			return fmt.Errorf("command %q: %q: %w", cmd.Name, name, ErrDuplicateName)
		}
	}
	if hasDuplicates(cmd.Aliases, cmd.Name) {
		return fmt.Errorf("command %q: alias repeated: %w", cmd.Name, ErrDuplicateName)
	}

	if err := cmd.compile(r.tags); err != nil {
		return fmt.Errorf("command %q: %w", cmd.Name, err)
	}

	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
	r.order = append(r.order, cmd)
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// built-in commands whose definitions are fixed.
func (r *Registry) MustRegister(cmd *Command) {
	if err := r.Register(cmd); err != nil {
		panic(err)
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands in registration order.
func (r *Registry) All() []*Command {
	return slices.Clone(r.order)
}

// Tags returns the declaration tags used to compile syntax.
func (r *Registry) Tags() *cmdtree.TagSet {
	return r.tags
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.order)
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.order {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = DefaultCategory
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Categories returns the sorted category names of visible commands.
func (r *Registry) Categories() []string {
	byCategory := r.ByCategory()
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Check runs m.Check on every command tree and returns all problems.
func (r *Registry) Check(m *Manager) error {
	var errs error
	for _, cmd := range r.order {
		if err := m.Check(cmd.tree); err != nil {
			for _, e := range multierr.Errors(err) {
				errs = multierr.Append(errs, fmt.Errorf("command %q: %w", cmd.Name, e))
			}
		}
	}
	return errs
}

// =============================================================================
// HELPERS
// =============================================================================

func validateName(name string) error {
	if name == "" {
		return errors.New("empty command name")
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("command name %q contains whitespace", name)
	}
	if strings.ContainsAny(name, `'"`) {
		return fmt.Errorf("command name %q contains a quote", name)
	}
	return nil
}

func hasDuplicates(aliases []string, name string) bool {
	seen := map[string]bool{name: true}
	for _, alias := range aliases {
		if seen[alias] {
			return true
		}
		seen[alias] = true
	}
	return false
}
