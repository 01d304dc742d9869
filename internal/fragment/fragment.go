// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fragment

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jeranaias/cmdroute/internal/cmderr"
)

// MsgUnclosedQuote is the message of the error raised for an unterminated
// quoted fragment.
const MsgUnclosedQuote = "Can't find closing quote."

// =============================================================================
// ITERATOR
// =============================================================================

// Iter walks a string once, producing one fragment per call to Next.
// It cannot be restarted.
type Iter struct {
	raw   string
	pos   int
	frag  string
	start int
	end   int
	err   error
}

// New returns an iterator over raw.
func New(raw string) *Iter {
	return &Iter{raw: raw}
}

// Next advances to the next fragment. It returns false when the input is
// exhausted or an error occurred; check Err afterwards.
func (it *Iter) Next() bool {
	if it.err != nil {
		return false
	}

	it.skipSpace()
	if it.pos >= len(it.raw) {
		return false
	}

	rest := it.raw[it.pos:]
	first, size := utf8.DecodeRuneInString(rest)

	if isQuote(first) {
		closing := strings.IndexRune(rest[size:], first)
		if closing < 0 {
			it.err = &cmderr.ParseError{
				Message: MsgUnclosedQuote,
				Start:   it.pos,
				End:     len(it.raw) - 1,
			}
			it.pos = len(it.raw)
			return false
		}
		it.set(it.pos+size, it.pos+size+closing)
		// skip past the closing quote
		it.pos += size + closing + size
		return true
	}

	end := endOfWord(rest)
	it.set(it.pos, it.pos+end)
	it.pos += end
	return true
}

// Fragment returns the fragment produced by the last successful Next.
func (it *Iter) Fragment() string {
	return it.frag
}

// Span returns the byte range [start, end) of the last fragment's content
// within the input. Quotes are not included.
func (it *Iter) Span() (start, end int) {
	return it.start, it.end
}

// Err returns the error that stopped iteration, if any.
func (it *Iter) Err() error {
	return it.err
}

func (it *Iter) set(start, end int) {
	it.start, it.end = start, end
	it.frag = it.raw[start:end]
}

func (it *Iter) skipSpace() {
	it.pos = len(it.raw) - len(strings.TrimLeftFunc(it.raw[it.pos:], unicode.IsSpace))
}

// =============================================================================
// HELPERS
// =============================================================================

func isQuote(r rune) bool {
	return r == '\'' || r == '"'
}

// endOfWord returns the byte length of the leading run of non-space runes.
func endOfWord(s string) int {
	if end := strings.IndexFunc(s, unicode.IsSpace); end >= 0 {
		return end
	}
	return len(s)
}

// Tokenize returns a lazy sequence of fragments. If the input is malformed the
// sequence ends with a single ("", err) pair.
func Tokenize(raw string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		it := New(raw)
		for it.Next() {
			if !yield(it.Fragment(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield("", err)
		}
	}
}

// Collect drains the tokenizer. A malformed tail invalidates the whole input,
// so no fragments are returned alongside an error.
func Collect(raw string) ([]string, error) {
	var frags []string
	for frag, err := range Tokenize(raw) {
		if err != nil {
			return nil, err
		}
		frags = append(frags, frag)
	}
	return frags, nil
}
