// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/hint/internal/cloud"
	"github.com/jeranaias/hint/internal/config"
	"github.com/jeranaias/hint/internal/prompt"
	"github.com/jeranaias/hint/internal/render"
	"github.com/jeranaias/hint/internal/storage"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Completer sends a composed request and returns the reply text.
// *cloud.Client implements it.
type Completer interface {
	Complete(ctx context.Context, messages []cloud.ChatMessage, opts cloud.RequestOptions) (string, error)
}

// ConversationStore is the append-only turn log. *storage.Store implements it.
type ConversationStore interface {
	Append(ctx context.Context, turn storage.Turn) (int64, error)
	Recent(ctx context.Context, limit int) ([]storage.Turn, error)
	Count(ctx context.Context) (int, error)
}

// =============================================================================
// APP
// =============================================================================

// App wires configuration, storage, the completion client and output for one
// invocation.
type App struct {
	Config    *config.Config
	Store     ConversationStore
	Client    Completer
	Formatter render.Formatter
	Renderer  render.ResponseRenderer

	Out io.Writer
	Err io.Writer

	// SessionID tags every turn written by this process.
	SessionID string

	// NewLineReader opens interactive input. Tests replace it.
	NewLineReader func() (LineReader, error)
}

// NewApp creates an App writing to stdout and stderr.
func NewApp(cfg *config.Config, store ConversationStore, client Completer, formatter render.Formatter, renderer render.ResponseRenderer) *App {
	return &App{
		Config:    cfg,
		Store:     store,
		Client:    client,
		Formatter: formatter,
		Renderer:  renderer,
		Out:       os.Stdout,
		Err:       os.Stderr,
	}
}

// Run executes the mode selected in args.
func (a *App) Run(ctx context.Context, args Args) error {
	switch args.Mode {
	case ModeSession:
		return a.RunSession(ctx, args)
	case ModeSummarize:
		return a.RunSummarize(ctx, args)
	case ModeHistory:
		if args.Export != "" {
			return a.RunExport(ctx, args.HistoryCount, args.Export)
		}
		return a.RunHistory(ctx, args.HistoryCount)
	case ModeHelp:
		PrintUsage(a.Out)
		return nil
	case ModeVersion:
		fmt.Fprintln(a.Out, VersionString())
		return nil
	default:
		return a.RunAsk(ctx, args)
	}
}

// requestOptions merges the per-run overrides onto the configured defaults.
func (a *App) requestOptions(args Args) cloud.RequestOptions {
	return cloud.DefaultOptions(a.Config.API.Model, a.Config.API.Temperature).Merge(cloud.RequestOptions{
		Model:       args.Model,
		Temperature: args.Temperature,
	})
}

// historyLimit is the number of stored turns loaded per request.
func (a *App) historyLimit() int {
	limit := a.Config.History.Limit
	if limit > prompt.MaxHistory {
		limit = prompt.MaxHistory
	}
	return limit
}

// metadata is stored with every turn this process writes.
func (a *App) metadata(mode Mode, extra map[string]any) map[string]any {
	meta := map[string]any{"mode": mode.String()}
	if a.SessionID != "" {
		meta["session"] = a.SessionID
	}
	if wd, err := os.Getwd(); err == nil {
		meta["cwd"] = wd
	}
	for k, v := range extra {
		meta[k] = v
	}
	return meta
}

// complete composes the request for userPrompt from recent and sends it.
func (a *App) complete(ctx context.Context, userPrompt string, recent []storage.Turn, args Args) (string, error) {
	messages := prompt.Compose(userPrompt, recent, a.Config.API.SystemPrompt)
	return a.Client.Complete(ctx, messages, a.requestOptions(args))
}

// printReply writes "HINT: <rendered reply>".
func (a *App) printReply(reply string) {
	label := a.Formatter.Format(render.Brand, "H") + a.Formatter.Format(render.BrandAccent, "INT")
	fmt.Fprintln(a.Out, label+": "+a.Renderer.Render(reply))
}

// printError writes a turn-level failure without ending the run.
func (a *App) printError(err error) {
	DisplayError(a.Err, err)
}
