// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for hint.
//
// Every prompt and every reply is appended to a single SQLite table. Rows
// are never updated or deleted; order is the autoincrement id.
//
// # Key Types
//
//   - Store: Append-only conversation log
//   - Turn: One stored message (role, content, metadata, timestamp)
//   - Error: Storage failure wrapping the failed operation
//
// # Usage
//
//	store, err := storage.Open(ctx, dbPath)
//	_, err = store.Append(ctx, storage.NewTurn(storage.RoleUser, "Hello", nil))
//	turns, err := store.Recent(ctx, 10) // newest first
//
// # Storage Location
//
// The database lives in the user data directory resolved by the config
// package, as conversations.db.
package storage
