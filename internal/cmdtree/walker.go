// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmdtree

// FindPath returns the first path from root whose nodes accept consecutive
// fragments, searching depth first with children in declaration order.
//
// A terminal node ends the match even when fragments remain; callers decide
// what to do with the unconsumed tail.
func FindPath(root *Node, fragments []string) (Path, bool) {
	if root == nil {
		return nil, false
	}
	var path Path
	if !walk(root, fragments, &path) {
		return nil, false
	}
	return path, true
}

// walk appends n and its matching descendants to path, or leaves path as it
// found it.
func walk(n *Node, fragments []string, path *Path) bool {
	if len(fragments) == 0 || !n.Matcher.Matches(fragments[0]) {
		return false
	}

	*path = append(*path, n)
	if n.IsTerminal() {
		return true
	}
	for _, child := range n.Children {
		if walk(child, fragments[1:], path) {
			return true
		}
	}
	*path = (*path)[:len(*path)-1]
	return false
}
