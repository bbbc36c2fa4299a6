// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/hint/internal/render"
	"github.com/jeranaias/hint/internal/storage"
)

// =============================================================================
// MULTI-LINE INPUT
// =============================================================================

// LineReader reads one line of input after showing a prompt. It returns
// io.EOF at end of input.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// PromptLabel is shown before the first line of each prompt.
const PromptLabel = "you: "

// EndMarker ends a multi-line prompt when a line ends with it.
const EndMarker = "wq"

// ReadMultiline reads lines until one ends with EndMarker or input ends.
// The marker is removed and that last line trimmed; other lines are kept
// verbatim. Lines are joined with "\n".
//
// A first line that is just "exit" (any case) is returned at once so the
// session can end without the marker.
//
// At end of input the text read so far is returned together with io.EOF.
// Any other error is returned as is.
func ReadMultiline(r LineReader) (string, error) {
	var lines []string
	label := PromptLabel
	for {
		line, err := r.Prompt(label)
		if err != nil {
			return strings.Join(lines, "\n"), err
		}
		if label != "" && isExit(line) {
			return strings.TrimSpace(line), nil
		}
		label = ""

		if strings.HasSuffix(line, EndMarker) {
			lines = append(lines, strings.TrimSpace(strings.TrimSuffix(line, EndMarker)))
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}

func isExit(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "exit")
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive sessions.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI that keeps its history in historyFile.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads a line of input with the given prompt. Non-empty lines are
// added to the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history to file, readable by the owner only.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		log.Printf("SESSION | cannot save input history: %v", err)
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() error {
	c.SaveHistory()
	return c.line.Close()
}

// HistoryFileName is the input history file inside the data directory.
const HistoryFileName = "input_history"

// =============================================================================
// SESSION LOOP
// =============================================================================

const sessionIntro = "Starting session mode. Type your prompt, end it with 'wq' and press 'enter'. Type 'exit' to end the session."

// RunSession runs the interactive loop until "exit", end of input, Ctrl+C
// at the prompt, or ctx cancellation.
func (a *App) RunSession(ctx context.Context, args Args) error {
	reader, err := a.openLineReader()
	if err != nil {
		return err
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	fmt.Fprintln(a.Out, a.Formatter.Format(render.Info, sessionIntro))

	for {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.Out, "Ending session.")
			return err
		}

		text, readErr := ReadMultiline(reader)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			if errors.Is(readErr, liner.ErrPromptAborted) {
				fmt.Fprintln(a.Out)
				fmt.Fprintln(a.Out, "Ending session.")
				return nil
			}
			return readErr
		}

		if isExit(text) {
			fmt.Fprintln(a.Out, "Ending session.")
			return nil
		}

		if strings.TrimSpace(text) != "" {
			if err := a.sessionTurn(ctx, text, args); err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(a.Out)
					fmt.Fprintln(a.Out, "Ending session.")
				}
				return err
			}
		}

		if readErr != nil {
			// End of input.
			fmt.Fprintln(a.Out)
			fmt.Fprintln(a.Out, "Ending session.")
			return nil
		}
	}
}

// sessionTurn persists the prompt, sends it with the recent history and
// persists the reply. A failed completion is printed and the session goes
// on; storage failures and cancellation end it.
func (a *App) sessionTurn(ctx context.Context, text string, args Args) error {
	if _, err := a.Store.Append(ctx, storage.NewTurn(storage.RoleUser, text, a.metadata(ModeSession, nil))); err != nil {
		return err
	}

	recent, err := a.Store.Recent(ctx, a.historyLimit())
	if err != nil {
		return err
	}

	reply, err := a.complete(ctx, text, recent, args)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		a.printError(err)
		return nil
	}

	a.printReply(reply)

	if _, err := a.Store.Append(ctx, storage.NewTurn(storage.RoleSystem, reply, a.metadata(ModeSession, nil))); err != nil {
		return err
	}
	return nil
}

func (a *App) openLineReader() (LineReader, error) {
	if a.NewLineReader != nil {
		return a.NewLineReader()
	}

	dir, err := a.Config.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	return NewChatCLI(filepath.Join(dir, HistoryFileName)), nil
}
