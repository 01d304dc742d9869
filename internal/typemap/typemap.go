// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typemap stores at most one value per matcher.TypeID.
//
// The map is filled during startup and read afterwards. It is not safe for
// concurrent mutation; concurrent reads are fine once writes have stopped.
package typemap

import (
	"slices"

	"github.com/jeranaias/cmdroute/internal/matcher"
)

// Map associates each type identity with one value.
type Map[V any] struct {
	entries map[matcher.TypeID]V
}

// New returns an empty map.
func New[V any]() *Map[V] {
	return &Map[V]{entries: make(map[matcher.TypeID]V)}
}

// Insert stores v under id and returns the value it replaced, if any.
func (m *Map[V]) Insert(id matcher.TypeID, v V) (prev V, replaced bool) {
	if m.entries == nil {
		m.entries = make(map[matcher.TypeID]V)
	}
	prev, replaced = m.entries[id]
	m.entries[id] = v
	return prev, replaced
}

// Get returns the value stored under id.
func (m *Map[V]) Get(id matcher.TypeID) (V, bool) {
	v, ok := m.entries[id]
	return v, ok
}

// Remove deletes id and returns the removed value.
func (m *Map[V]) Remove(id matcher.TypeID) (V, bool) {
	v, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
	}
	return v, ok
}

// Clear removes every entry.
func (m *Map[V]) Clear() {
	clear(m.entries)
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.entries)
}

// Keys returns the stored identities in sorted order.
func (m *Map[V]) Keys() []matcher.TypeID {
	keys := make([]matcher.TypeID, 0, len(m.entries))
	for id := range m.entries {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	return keys
}
