// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/cmdroute/internal/util"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("history store is closed")

// =============================================================================
// ENTRY TYPE
// =============================================================================

// Outcome classifies how a dispatch ended.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeParseError  Outcome = "parse_error"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeForbidden   Outcome = "forbidden"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeNoMatch     Outcome = "no_match"
	OutcomeFailed      Outcome = "failed"
)

// Entry is one recorded command invocation.
type Entry struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	CallerID   string    `json:"caller_id"`
	CallerName string    `json:"caller_name,omitempty"`
	Command    string    `json:"command,omitempty"`
	Text       string    `json:"text"`
	Outcome    Outcome   `json:"outcome"`
	Reply      string    `json:"reply,omitempty"`
	Error      string    `json:"error,omitempty"`
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id          TEXT PRIMARY KEY,
	at          INTEGER NOT NULL,
	caller_id   TEXT NOT NULL,
	caller_name TEXT NOT NULL DEFAULT '',
	command     TEXT NOT NULL DEFAULT '',
	text        TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	reply       TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_history_caller ON history(caller_id, at);
`

// =============================================================================
// HISTORY STORE
// =============================================================================

// HistoryStore persists invocations in SQLite.
type HistoryStore struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

// OpenHistory opens or creates the database at path. A leading "~" is
// expanded; MemoryPath keeps everything in memory.
func OpenHistory(path string) (*HistoryStore, error) {
	if path != MemoryPath {
		expanded, err := util.ExpandHome(path)
		if err != nil {
			return nil, err
		}
		path = expanded
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time; a single connection also
	// keeps an in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &HistoryStore{db: db, now: time.Now}, nil
}

// Record stores e. Missing ids and times are filled in.
func (s *HistoryStore) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, at, caller_id, caller_name, command, text, outcome, reply, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UnixNano(), e.CallerID, e.CallerName, e.Command, e.Text, string(e.Outcome), e.Reply, e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. An empty callerID
// returns entries of every caller.
func (s *HistoryStore) Recent(ctx context.Context, callerID string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT id, at, caller_id, caller_name, command, text, outcome, reply, error FROM history`
	args := []any{}
	if callerID != "" {
		query += ` WHERE caller_id = ?`
		args = append(args, callerID)
	}
	query += ` ORDER BY at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			at      int64
			outcome string
		)
		if err := rows.Scan(&e.ID, &at, &e.CallerID, &e.CallerName, &e.Command, &e.Text, &outcome, &e.Reply, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Time = time.Unix(0, at)
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Prune keeps the newest keep entries and deletes the rest. It returns the
// number of deleted entries.
func (s *HistoryStore) Prune(ctx context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, ErrClosed
	}
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM history WHERE rowid NOT IN (
			SELECT rowid FROM history ORDER BY at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database. Further calls return ErrClosed.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
