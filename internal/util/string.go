// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// StringWidth returns the display width of a string in terminal columns.
// Double-width characters (CJK, most emoji) count as 2 columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// ColumnAt returns the display column of byte offset off in s. Offsets past
// the end map to the width of s; offsets inside a multi-byte rune map to the
// column of that rune.
func ColumnAt(s string, off int) int {
	if off <= 0 {
		return 0
	}
	if off >= len(s) {
		return runewidth.StringWidth(s)
	}
	col := 0
	for i := 0; i < off; {
		r, size := utf8.DecodeRuneInString(s[i:])
		if i+size > off {
			break
		}
		col += runewidth.RuneWidth(r)
		i += size
	}
	return col
}

// TruncateWidth truncates s to at most maxWidth columns, appending "..."
// when something was cut and there is room for it.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
