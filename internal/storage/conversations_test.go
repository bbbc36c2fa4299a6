// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "conversations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestOpen_InitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conversations.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = store.Append(ctx, NewTurn(RoleUser, "first", nil))
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.Close())

	// Reopening must keep existing rows.
	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, path, store.Path())
}

func TestStore_RecentReturnsMinKN(t *testing.T) {
	ctx := context.Background()

	for _, n := range []int{0, 1, 5, 10, 23} {
		for _, k := range []int{1, 3, 10, 30} {
			t.Run(fmt.Sprintf("n=%d/k=%d", n, k), func(t *testing.T) {
				store := openTestStore(t)
				for i := 0; i < n; i++ {
					_, err := store.Append(ctx, NewTurn(RoleUser, fmt.Sprintf("msg-%d", i), nil))
					require.NoError(t, err)
				}

				turns, err := store.Recent(ctx, k)
				require.NoError(t, err)

				want := k
				if n < k {
					want = n
				}
				require.Len(t, turns, want)

				// Newest first, matching insertion order.
				for i, turn := range turns {
					assert.Equal(t, fmt.Sprintf("msg-%d", n-1-i), turn.Content)
					if i > 0 {
						assert.Greater(t, turns[i-1].ID, turn.ID)
					}
				}
			})
		}
	}
}

func TestStore_RecentNonPositiveLimit(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Append(context.Background(), NewTurn(RoleUser, "x", nil))
	require.NoError(t, err)

	turns, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestStore_MetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	meta := map[string]any{
		"session": "5f0c",
		"cwd":     "/src/project",
		"tokens":  float64(42),
		"file":    true,
	}
	_, err := store.Append(ctx, NewTurn(RoleUser, "with meta", meta))
	require.NoError(t, err)
	_, err = store.Append(ctx, NewTurn(RoleSystem, "without meta", nil))
	require.NoError(t, err)

	turns, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	assert.Equal(t, map[string]any{}, turns[0].Metadata)
	assert.Equal(t, meta, turns[1].Metadata)
}

func TestStore_NullMetadataColumn(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	// Rows written by other tools may leave metadata NULL.
	_, err := store.db.ExecContext(ctx,
		"INSERT INTO conversations (role, content, metadata, timestamp) VALUES ('user', 'legacy', NULL, '2024-01-01T00:00:00')")
	require.NoError(t, err)

	turns, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.NotNil(t, turns[0].Metadata)
	assert.Empty(t, turns[0].Metadata)
}

func TestStore_AppendRejectsUnknownRole(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Append(context.Background(), NewTurn(Role("assistant"), "nope", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRole))

	var storeErr *Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "append", storeErr.Op)
}

func TestStore_ClosedDatabaseIsStorageError(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.Recent(context.Background(), 10)
	var storeErr *Error
	require.True(t, errors.As(err, &storeErr), "expected *Error, got %v", err)
	assert.Equal(t, "recent", storeErr.Op)
}

// Appending "Hello", then the reply "Hi there", yields both newest first.
func TestStore_HelloHiThere(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Append(ctx, NewTurn(RoleUser, "Hello", nil))
	require.NoError(t, err)
	_, err = store.Append(ctx, NewTurn(RoleSystem, "Hi there", nil))
	require.NoError(t, err)

	turns, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, RoleSystem, turns[0].Role)
	assert.Equal(t, "Hi there", turns[0].Content)
	assert.Equal(t, RoleUser, turns[1].Role)
	assert.Equal(t, "Hello", turns[1].Content)
}

// =============================================================================
// TURN TESTS
// =============================================================================

func TestNewTurn_Timestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	turn := NewTurn(RoleUser, "hi", nil)

	ts, err := turn.Time()
	require.NoError(t, err)
	assert.True(t, ts.After(before), "timestamp %s should be recent", turn.Timestamp)
	assert.Contains(t, turn.Timestamp, "T")
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleSystem.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("tool").Valid())
}
