// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cmdtree holds the command tree, the builders that assemble it and
// the walker that matches fragments against it.
//
// A tree node owns one matcher, an optional binding name and an ordered list
// of children. A node without children is terminal. Siblings are tried in
// declaration order, so the first declared syntax wins when several accept
// the same input.
//
// # Key Types
//
//   - Node: one position in a command syntax
//   - Path: the nodes visited from the root to a terminal
//   - Branched / Parallel: chained and alternative builders
//   - TagSet: type tags understood by textual declarations
//
// # Usage
//
// Builder form:
//
//	root, err := cmdtree.NewBranched().
//	    Exact("calc").
//	    Flat(func(p *cmdtree.Parallel) {
//	        p.Branch(func(b *cmdtree.Branched) {
//	            b.Exact("add").Named("a", matcher.NewSigned()).Named("b", matcher.NewSigned())
//	        })
//	        p.Branch(func(b *cmdtree.Branched) {
//	            b.Exact("neg").Named("a", matcher.NewSigned())
//	        })
//	    }).
//	    Build()
//
// Textual form:
//
//	root, err := cmdtree.Parse("kick <who: UserMention> <reason: Text>")
//
// Matching:
//
//	path, ok := cmdtree.FindPath(root, []string{"calc", "add", "1", "2"})
package cmdtree
