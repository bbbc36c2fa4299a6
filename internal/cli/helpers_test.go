// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/hint/internal/cloud"
	"github.com/jeranaias/hint/internal/config"
	"github.com/jeranaias/hint/internal/render"
	"github.com/jeranaias/hint/internal/storage"
)

// =============================================================================
// FAKES
// =============================================================================

// scriptedReader returns lines in order, then io.EOF (or err if set).
type scriptedReader struct {
	lines   []string
	err     error
	prompts []string
}

func (r *scriptedReader) Prompt(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		if r.err != nil {
			return "", r.err
		}
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

// fakeCompleter records requests and answers with reply (or err).
type fakeCompleter struct {
	mu       sync.Mutex
	reply    func(messages []cloud.ChatMessage) (string, error)
	requests [][]cloud.ChatMessage
	options  []cloud.RequestOptions
}

func replyWith(text string) *fakeCompleter {
	return &fakeCompleter{reply: func([]cloud.ChatMessage) (string, error) { return text, nil }}
}

func failWith(err error) *fakeCompleter {
	return &fakeCompleter{reply: func([]cloud.ChatMessage) (string, error) { return "", err }}
}

func (f *fakeCompleter) Complete(_ context.Context, messages []cloud.ChatMessage, opts cloud.RequestOptions) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, append([]cloud.ChatMessage(nil), messages...))
	f.options = append(f.options, opts)
	f.mu.Unlock()
	return f.reply(messages)
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// =============================================================================
// TEST APP
// =============================================================================

type testApp struct {
	*App
	store  *storage.Store
	client *fakeCompleter
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestApp(t *testing.T, client *fakeCompleter) *testApp {
	t.Helper()
	ConfigureStyles(termenv.Ascii)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir

	store, err := storage.Open(context.Background(), filepath.Join(dir, config.DatabaseFile))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := render.Plain{}
	app := NewApp(cfg, store, client, formatter, render.Renderer{Formatter: formatter})
	app.Out = out
	app.Err = errOut
	app.SessionID = "test-session"

	return &testApp{App: app, store: store, client: client, out: out, errOut: errOut}
}

// storedTurns returns every stored turn, oldest first.
func (a *testApp) storedTurns(t *testing.T) []storage.Turn {
	t.Helper()
	turns, err := a.store.Recent(context.Background(), 1000)
	require.NoError(t, err)
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns
}
