// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fragment splits raw command text into ordered fragments.
//
// Fragments are separated by whitespace. A fragment starting with a single or
// double quote extends to the next occurrence of the same quote character and
// excludes both quotes. An unterminated quote fails with a
// [cmderr.ParseError] spanning from the opening quote to the last byte of the
// input.
//
// # Usage
//
//	frags, err := fragment.Collect(`roll "2 dice" 6`)
//	// frags == []string{"roll", "2 dice", "6"}
//
// Iteration is lazy and single pass:
//
//	it := fragment.New(text)
//	for it.Next() {
//	    use(it.Fragment())
//	}
//	if err := it.Err(); err != nil {
//	    // every fragment seen so far must be discarded
//	}
package fragment
