// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides invocation history persistence for cmdroute.
//
// History is kept in a SQLite database through the pure Go
// modernc.org/sqlite driver, so no cgo toolchain is needed.
//
// # Key Types
//
//   - HistoryStore: SQLite backed history with a single connection
//   - Entry: one recorded invocation
//   - Outcome: how the invocation ended
//
// # Usage
//
//	store, err := storage.OpenHistory("~/.cmdroute/history.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.Record(ctx, storage.Entry{CallerID: "42", Text: "!ping", Outcome: storage.OutcomeOK})
//	recent, err := store.Recent(ctx, "42", 10)
package storage
