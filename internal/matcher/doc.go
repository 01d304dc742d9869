// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package matcher provides fragment predicates used by command tree nodes.
//
// Every matcher reports a [TypeID]. The command manager uses it to select
// the mapper that turns an accepted fragment into a typed value, so a matcher
// must never accept a fragment its paired mapper cannot convert.
//
// # Key Types
//
//   - Matcher: predicate over a single fragment
//   - TypeID: token naming the semantic type of accepted fragments
//
// # Built-in Matchers
//
//   - Exact / OneOf: literal words (TypeID None)
//   - Unsigned: decimal uint64 (TypeID Unsigned)
//   - Signed: decimal int64 with optional leading '-' (TypeID Signed)
//   - UserMention: <@123> or <@!123> (TypeID UserMention)
//   - Text: any fragment (TypeID Text)
//   - Bool: true or false (TypeID Bool)
package matcher
