// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the cmdroute packages.
//
// # Functions
//
//   - AtomicWriteFile: crash-safe file replacement
//   - ExpandHome: "~" expansion for configured paths
//   - StringWidth / ColumnAt / TruncateWidth: display-width aware text helpers
package util
