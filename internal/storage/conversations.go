// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// TURN TYPE
// =============================================================================

// Role identifies who produced a turn.
type Role string

const (
	// RoleUser marks a prompt typed by the user.
	RoleUser Role = "user"
	// RoleSystem marks a reply received from the remote model. The name is
	// kept for compatibility with existing databases.
	RoleSystem Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleSystem
}

// Turn is one stored message of the conversation log.
type Turn struct {
	ID        int64          `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp string         `json:"timestamp"`
}

// NewTurn creates a turn stamped with the local clock.
func NewTurn(role Role, content string, metadata map[string]any) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		Timestamp: time.Now().Format(TimestampLayout),
	}
}

// TimestampLayout is ISO-8601 with fractional seconds, like the rows written
// by earlier versions of the tool.
const TimestampLayout = "2006-01-02T15:04:05.999999"

// Time parses the turn timestamp. Both TimestampLayout and RFC 3339 are accepted.
func (t Turn) Time() (time.Time, error) {
	if ts, err := time.ParseInLocation(TimestampLayout, t.Timestamp, time.Local); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339Nano, t.Timestamp)
}

// =============================================================================
// SCHEMA
// =============================================================================

// Schema is the single append-only table holding all turns.
const Schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    metadata TEXT,
    timestamp TEXT NOT NULL
);
`

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidRole is returned when appending a turn with an unknown role.
var ErrInvalidRole = errors.New("invalid role")

// Error is a storage failure (schema creation, read or write). Callers do
// not recover from it.
type Error struct {
	Op  string // "open", "init", "append", "recent", "count"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// =============================================================================
// STORE
// =============================================================================

// Store is the append-only conversation log backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &Error{Op: "open", Err: fmt.Errorf("failed to create database directory: %w", err)}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}

	// One local process, one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, &Error{Op: "open", Err: fmt.Errorf("failed to set pragma: %w", err)}
	}

	s := &Store{db: db, path: path}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Init creates the conversations table if it does not exist. Safe to call
// repeatedly.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return &Error{Op: "init", Err: err}
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts one turn and returns its id. Nil metadata is stored as an
// empty object.
func (s *Store) Append(ctx context.Context, turn Turn) (int64, error) {
	if !turn.Role.Valid() {
		return 0, &Error{Op: "append", Err: fmt.Errorf("%w: %q", ErrInvalidRole, turn.Role)}
	}
	if turn.Timestamp == "" {
		turn.Timestamp = time.Now().Format(TimestampLayout)
	}

	meta := turn.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return 0, &Error{Op: "append", Err: fmt.Errorf("failed to encode metadata: %w", err)}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (role, content, metadata, timestamp) VALUES (?, ?, ?, ?)",
		string(turn.Role), turn.Content, string(metaJSON), turn.Timestamp)
	if err != nil {
		return 0, &Error{Op: "append", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &Error{Op: "append", Err: err}
	}
	return id, nil
}

// Recent returns up to limit turns, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Turn, error) {
	if limit <= 0 {
		return []Turn{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, role, content, metadata, timestamp FROM conversations ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, &Error{Op: "recent", Err: err}
	}
	defer rows.Close()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var (
			turn Turn
			role string
			meta sql.NullString
		)
		if err := rows.Scan(&turn.ID, &role, &turn.Content, &meta, &turn.Timestamp); err != nil {
			return nil, &Error{Op: "recent", Err: err}
		}
		turn.Role = Role(role)

		turn.Metadata = map[string]any{}
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &turn.Metadata); err != nil {
				return nil, &Error{Op: "recent", Err: fmt.Errorf("turn %d: bad metadata: %w", turn.ID, err)}
			}
			if turn.Metadata == nil {
				// A stored JSON null decodes to a nil map.
				turn.Metadata = map[string]any{}
			}
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "recent", Err: err}
	}
	return turns, nil
}

// Count returns the number of stored turns.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations").Scan(&n); err != nil {
		return 0, &Error{Op: "count", Err: err}
	}
	return n, nil
}
