// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/hint/internal/cloud"
	"github.com/jeranaias/hint/internal/storage"
)

// newestFirst builds n alternating turns, returned newest first with
// contents "t0" (oldest) .. "t<n-1>" (newest).
func newestFirst(n int) []storage.Turn {
	turns := make([]storage.Turn, 0, n)
	for i := n - 1; i >= 0; i-- {
		role := storage.RoleUser
		if i%2 == 1 {
			role = storage.RoleSystem
		}
		turns = append(turns, storage.Turn{ID: int64(i + 1), Role: role, Content: fmt.Sprintf("t%d", i)})
	}
	return turns
}

func TestCompose_NoHistory(t *testing.T) {
	got := Compose("Hello", nil, "")
	assert.Equal(t, []cloud.ChatMessage{
		{Role: "system", Content: DefaultSystemPrompt},
		{Role: "user", Content: "Hello"},
	}, got)
}

func TestCompose_ChronologicalOrder(t *testing.T) {
	got := Compose("next", newestFirst(3), "be brief")
	require.Len(t, got, 5)

	assert.Equal(t, cloud.ChatMessage{Role: "user", Content: "t0"}, got[0])
	assert.Equal(t, cloud.ChatMessage{Role: "system", Content: "t1"}, got[1])
	assert.Equal(t, cloud.ChatMessage{Role: "user", Content: "t2"}, got[2])
	assert.Equal(t, cloud.ChatMessage{Role: "system", Content: "be brief"}, got[3])
	assert.Equal(t, cloud.ChatMessage{Role: "user", Content: "next"}, got[4])
}

func TestCompose_StructuralInvariants(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 25} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			got := Compose("q", newestFirst(n), "sys")

			history := n
			if history > MaxHistory {
				history = MaxHistory
			}
			require.Len(t, got, history+2)
			assert.Equal(t, cloud.ChatMessage{Role: "system", Content: "sys"}, got[len(got)-2])
			assert.Equal(t, cloud.ChatMessage{Role: "user", Content: "q"}, got[len(got)-1])
		})
	}
}

// With more than MaxHistory turns loaded, the oldest MaxHistory of them are
// kept, matching the reverse-then-slice order.
func TestCompose_TakesFirstTenAfterReversal(t *testing.T) {
	got := Compose("q", newestFirst(12), "sys")
	require.Len(t, got, MaxHistory+2)

	for i := 0; i < MaxHistory; i++ {
		assert.Equal(t, fmt.Sprintf("t%d", i), got[i].Content)
	}
}

func TestCompose_DoesNotModifyInput(t *testing.T) {
	recent := newestFirst(4)
	snapshot := append([]storage.Turn(nil), recent...)

	Compose("q", recent, "")
	assert.Equal(t, snapshot, recent)
}

// A stored conversation of "Hello" then "Hi there" replays as user then
// system, ahead of the instruction.
func TestCompose_HelloHiThere(t *testing.T) {
	recent := []storage.Turn{
		{ID: 2, Role: storage.RoleSystem, Content: "Hi there"},
		{ID: 1, Role: storage.RoleUser, Content: "Hello"},
	}

	got := Compose("How are you?", recent, "")
	assert.Equal(t, []cloud.ChatMessage{
		{Role: "user", Content: "Hello"},
		{Role: "system", Content: "Hi there"},
		{Role: "system", Content: DefaultSystemPrompt},
		{Role: "user", Content: "How are you?"},
	}, got)
}
