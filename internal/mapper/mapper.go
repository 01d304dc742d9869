// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mapper

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/cmdroute/internal/matcher"
)

// Mapper turns a fragment into a value.
type Mapper interface {
	Map(fragment string) (any, error)
}

// Func adapts a plain function to the Mapper interface.
type Func func(fragment string) (any, error)

// Map calls f.
func (f Func) Map(fragment string) (any, error) {
	return f(fragment)
}

// UserID is a user identifier extracted from a mention.
type UserID uint64

func (id UserID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Mention renders the id back into mention form.
func (id UserID) Mention() string {
	return "<@" + id.String() + ">"
}

// =============================================================================
// BUILT-IN MAPPERS
// =============================================================================

type identity struct{}

// Identity returns the fragment unchanged.
func Identity() Mapper { return identity{} }

func (identity) Map(fragment string) (any, error) { return fragment, nil }

type noop struct{}

// Noop discards the fragment and returns struct{}{}.
func Noop() Mapper { return noop{} }

func (noop) Map(string) (any, error) { return struct{}{}, nil }

// Mention extracts the id of "<@N>" and "<@!N>" fragments as a UserID.
func Mention() Mapper {
	return Func(func(fragment string) (any, error) {
		digits, ok := matcher.MentionDigits(fragment)
		if !ok {
			return nil, fmt.Errorf("not a user mention: %q", fragment)
		}
		id, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse mention %q: %w", fragment, err)
		}
		return UserID(id), nil
	})
}

// Parseable lists the value types supported by Parse.
type Parseable interface {
	int64 | uint64 | bool | float64 | string
}

// Parse returns a mapper that parses fragments into T with strconv.
func Parse[T Parseable]() Mapper {
	return Func(func(fragment string) (any, error) {
		var (
			zero T
			v    any
			err  error
		)
		switch any(zero).(type) {
		case int64:
			v, err = strconv.ParseInt(fragment, 10, 64)
		case uint64:
			v, err = strconv.ParseUint(fragment, 10, 64)
		case bool:
			v, err = strconv.ParseBool(fragment)
		case float64:
			v, err = strconv.ParseFloat(fragment, 64)
		case string:
			v = fragment
		}
		if err != nil {
			return nil, fmt.Errorf("parse %q as %T: %w", fragment, zero, err)
		}
		return v, nil
	})
}
