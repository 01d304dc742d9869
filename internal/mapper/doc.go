// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mapper converts matched fragments into typed values.
//
// A mapper is paired with a matcher through a shared [matcher.TypeID]. It is
// only ever called with fragments its matcher accepted, so a returned error
// means the pair is inconsistent and is treated as an internal defect.
package mapper
