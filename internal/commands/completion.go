// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"slices"
	"strings"

	"github.com/jeranaias/cmdroute/internal/cmdtree"
	"github.com/jeranaias/cmdroute/internal/fragment"
	"github.com/jeranaias/cmdroute/internal/matcher"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completion is one candidate for the word under the cursor.
type Completion struct {
	// Value replaces the partial word. It is empty for hints.
	Value string

	// Display is shown in completion menus
	Display string

	// Description is shown next to Display
	Description string

	// Score orders candidates, higher first
	Score int
}

// Completer completes command names and literal arguments by walking
// command trees. It serves line editors only; Router.Dispatch never consults
// it and its errors carry no suggestions.
type Completer struct {
	snapshot func() *Snapshot
}

// NewCompleter creates a completer reading the command set from source on
// every call, so it follows Router.Swap.
func NewCompleter(source func() *Snapshot) *Completer {
	return &Completer{snapshot: source}
}

// Complete returns candidates for the last word of line. Placeholders that
// accept free input are returned as hints with an empty Value.
func (c *Completer) Complete(line string) []Completion {
	snap := c.snapshot()
	if snap == nil {
		return nil
	}

	trimmed := strings.TrimLeft(line, " \t")
	body, ok := strings.CutPrefix(trimmed, snap.Prefix)
	if !ok {
		return nil
	}

	frags, err := fragment.Collect(body)
	if err != nil {
		return nil
	}
	atBoundary := body == "" || strings.HasSuffix(body, " ")

	if len(frags) == 0 || (len(frags) == 1 && !atBoundary) {
		partial := ""
		if len(frags) == 1 {
			partial = frags[0]
		}
		return completeCommands(snap.Registry, partial)
	}

	cmd := snap.Registry.Get(frags[0])
	if cmd == nil {
		return nil
	}
	typed, partial := frags[1:], ""
	if !atBoundary {
		typed, partial = typed[:len(typed)-1], typed[len(typed)-1]
	}
	return completeArgs(snap.Registry.Tags(), frontier(cmd.Tree(), typed), partial)
}

// Lines returns the full candidate lines for line. It fits
// liner.State.SetCompleter.
func (c *Completer) Lines(line string) []string {
	cut := strings.LastIndexByte(line, ' ') + 1
	if cut == 0 {
		if snap := c.snapshot(); snap != nil {
			lead := len(line) - len(strings.TrimLeft(line, " \t"))
			cut = lead + len(snap.Prefix)
			if cut > len(line) {
				return nil
			}
		}
	}

	var lines []string
	for _, comp := range c.Complete(line) {
		if comp.Value == "" {
			continue
		}
		lines = append(lines, line[:cut]+comp.Value)
	}
	return lines
}

// =============================================================================
// HELPERS
// =============================================================================

func completeCommands(r *Registry, partial string) []Completion {
	var completions []Completion
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(cmd.Name, partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       score(cmd.Name, partial),
			})
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       score(alias, partial) - 10,
				})
			}
		}
	}
	sortCompletions(completions)
	return completions
}

// frontier returns the nodes reached after consuming typed below root.
func frontier(root *cmdtree.Node, typed []string) []*cmdtree.Node {
	nodes := []*cmdtree.Node{root}
	for _, frag := range typed {
		var next []*cmdtree.Node
		for _, n := range nodes {
			for _, child := range n.Children {
				if child.Matcher.Matches(frag) {
					next = append(next, child)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		nodes = next
	}
	return nodes
}

func completeArgs(tags *cmdtree.TagSet, nodes []*cmdtree.Node, partial string) []Completion {
	var completions []Completion
	seen := make(map[string]bool)
	for _, n := range nodes {
		for _, child := range n.Children {
			lits, ok := matcher.Literals(child.Matcher)
			if !ok {
				hint := tags.Describe(child)
				if !seen[hint] {
					seen[hint] = true
					completions = append(completions, Completion{Display: hint})
				}
				continue
			}
			for _, lit := range lits {
				if seen[lit] || !strings.HasPrefix(lit, partial) {
					continue
				}
				seen[lit] = true
				completions = append(completions, Completion{
					Value:   lit,
					Display: lit,
					Score:   score(lit, partial),
				})
			}
		}
	}
	sortCompletions(completions)
	return completions
}

// score favors exact matches, then short completions.
func score(value, partial string) int {
	if value == partial {
		return 1000
	}
	return 500 - (len(value) - len(partial))
}

func sortCompletions(completions []Completion) {
	slices.SortStableFunc(completions, func(a, b Completion) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return strings.Compare(a.Display, b.Display)
	})
}
