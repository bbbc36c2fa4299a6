// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/hint/internal/cloud"
	"github.com/jeranaias/hint/internal/prompt"
	"github.com/jeranaias/hint/internal/storage"
)

func TestRunAsk_FirstRequestHasNoHistory(t *testing.T) {
	app := newTestApp(t, replyWith("Hi there"))

	require.NoError(t, app.RunAsk(context.Background(), Args{Prompt: "Hello"}))

	require.Equal(t, 1, app.client.calls())
	assert.Equal(t, []cloud.ChatMessage{
		{Role: "system", Content: prompt.DefaultSystemPrompt},
		{Role: "user", Content: "Hello"},
	}, app.client.requests[0])

	assert.Equal(t, "HINT: Hi there\n", app.out.String())

	turns := app.storedTurns(t)
	require.Len(t, turns, 2)
	assert.Equal(t, storage.RoleUser, turns[0].Role)
	assert.Equal(t, "Hello", turns[0].Content)
	assert.Equal(t, storage.RoleSystem, turns[1].Role)
	assert.Equal(t, "Hi there", turns[1].Content)
	assert.Equal(t, "ask", turns[1].Metadata["mode"])
}

func TestRunAsk_UsesPreviousTurns(t *testing.T) {
	app := newTestApp(t, replyWith("second reply"))
	ctx := context.Background()

	_, err := app.store.Append(ctx, storage.NewTurn(storage.RoleUser, "earlier question", nil))
	require.NoError(t, err)
	_, err = app.store.Append(ctx, storage.NewTurn(storage.RoleSystem, "earlier answer", nil))
	require.NoError(t, err)

	require.NoError(t, app.RunAsk(ctx, Args{Prompt: "follow up"}))

	assert.Equal(t, []cloud.ChatMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "system", Content: "earlier answer"},
		{Role: "system", Content: prompt.DefaultSystemPrompt},
		{Role: "user", Content: "follow up"},
	}, app.client.requests[0])
}

func TestRunAsk_OverridesReachTheClient(t *testing.T) {
	app := newTestApp(t, replyWith("ok"))
	temp := 0.1

	require.NoError(t, app.RunAsk(context.Background(), Args{Prompt: "hi", Model: "gpt-4o-mini", Temperature: &temp}))

	opts := app.client.options[0]
	assert.Equal(t, "gpt-4o-mini", opts.Model)
	require.NotNil(t, opts.Temperature)
	assert.Equal(t, 0.1, *opts.Temperature)
}

func TestRunAsk_FileIsPrepended(t *testing.T) {
	app := newTestApp(t, replyWith("it prints hi"))
	path := filepath.Join(t.TempDir(), "main.py")
	require.NoError(t, os.WriteFile(path, []byte("print('hi')"), 0644))

	require.NoError(t, app.RunAsk(context.Background(), Args{Prompt: "explain", File: path}))

	msgs := app.client.requests[0]
	assert.Equal(t, "print('hi')\nexplain", msgs[len(msgs)-1].Content)

	turns := app.storedTurns(t)
	require.Len(t, turns, 2)
	assert.Equal(t, "print('hi')\nexplain", turns[0].Content)
	assert.Equal(t, path, turns[0].Metadata["file"])
}

func TestRunAsk_FileOnlyPrompt(t *testing.T) {
	app := newTestApp(t, replyWith("ok"))
	path := filepath.Join(t.TempDir(), "q.txt")
	require.NoError(t, os.WriteFile(path, []byte("what is 2+2?"), 0644))

	require.NoError(t, app.RunAsk(context.Background(), Args{File: path}))
	assert.Equal(t, 1, app.client.calls())
}

func TestRunAsk_UnreadableFile(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.py") }},
		{"directory", func(t *testing.T) string { return t.TempDir() }},
		{"too large", func(t *testing.T) string {
			path := filepath.Join(t.TempDir(), "big.bin")
			require.NoError(t, os.WriteFile(path, make([]byte, MaxFileSize+1), 0644))
			return path
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, replyWith("unused"))

			err := app.RunAsk(context.Background(), Args{Prompt: "explain", File: tt.path(t)})
			require.NoError(t, err)

			assert.Equal(t, fileErrorMessage+"\n", app.out.String())
			assert.Equal(t, 0, app.client.calls())
			assert.Empty(t, app.storedTurns(t))
		})
	}
}

func TestRunAsk_EmptyPrompt(t *testing.T) {
	app := newTestApp(t, replyWith("unused"))

	err := app.RunAsk(context.Background(), Args{Prompt: "   "})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr), "got %v", err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
	assert.Contains(t, app.errOut.String(), "Usage")
	assert.Equal(t, 0, app.client.calls())
}

func TestRunAsk_CompletionErrorKeepsPrompt(t *testing.T) {
	app := newTestApp(t, failWith(&cloud.TransportError{URL: "http://localhost", Err: errors.New("connection refused")}))

	err := app.RunAsk(context.Background(), Args{Prompt: "Hello"})
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, ExitCode(err))
	assert.Empty(t, app.out.String())

	turns := app.storedTurns(t)
	require.Len(t, turns, 1)
	assert.Equal(t, storage.RoleUser, turns[0].Role)
}

func TestRun_Dispatch(t *testing.T) {
	app := newTestApp(t, replyWith("unused"))

	require.NoError(t, app.Run(context.Background(), Args{Mode: ModeVersion}))
	assert.Contains(t, app.out.String(), Version)

	app.out.Reset()
	require.NoError(t, app.Run(context.Background(), Args{Mode: ModeHelp}))
	assert.Contains(t, app.out.String(), "--session")
	assert.Equal(t, 0, app.client.calls())
}

func TestHistoryLimitIsClamped(t *testing.T) {
	app := newTestApp(t, replyWith("unused"))

	app.Config.History.Limit = 50
	assert.Equal(t, prompt.MaxHistory, app.historyLimit())

	app.Config.History.Limit = 3
	assert.Equal(t, 3, app.historyLimit())
}
