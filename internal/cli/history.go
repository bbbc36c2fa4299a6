// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/hint/internal/export"
	"github.com/jeranaias/hint/internal/storage"
	"github.com/jeranaias/hint/internal/util"
)

// historyTimeLayout is the timestamp shown in listings.
const historyTimeLayout = "2006-01-02 15:04"

// RunHistory prints the n most recent turns, oldest first.
func (a *App) RunHistory(ctx context.Context, n int) error {
	total, err := a.Store.Count(ctx)
	if err != nil {
		return err
	}
	turns, err := a.Store.Recent(ctx, n)
	if err != nil {
		return err
	}

	if len(turns) == 0 {
		fmt.Fprintln(a.Out, DimStyle.Render("No conversation history yet."))
		return nil
	}

	fmt.Fprintln(a.Out, TitleStyle.Render(fmt.Sprintf("Conversation History (%d of %d turns)", len(turns), total)))
	fmt.Fprintln(a.Out, RenderSeparator(60))

	width := GetTerminalWidth()
	for i := len(turns) - 1; i >= 0; i-- {
		fmt.Fprintln(a.Out, formatHistoryLine(turns[i], width))
	}
	return nil
}

// RunExport writes the n most recent turns, oldest first, to path. The
// format follows the file extension.
func (a *App) RunExport(ctx context.Context, n int, path string) error {
	exporter, err := export.ForPath(path, export.DefaultOptions())
	if err != nil {
		return NewValidationErrorWithExample("export", path, err.Error(), "hint --history 50 --export log.md")
	}

	turns, err := a.Store.Recent(ctx, n)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		fmt.Fprintln(a.Out, DimStyle.Render("No conversation history yet."))
		return nil
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	if err := export.ToFile(turns, exporter, path); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s Exported %d turns to %s\n", RenderStatus("ok"), len(turns), path)
	return nil
}

// formatHistoryLine renders one turn as "#id  time  role  preview", cut to
// width columns.
func formatHistoryLine(turn storage.Turn, width int) string {
	when := turn.Timestamp
	if ts, err := turn.Time(); err == nil {
		when = ts.Format(historyTimeLayout)
	}

	role := "you"
	if turn.Role == storage.RoleSystem {
		role = "hint"
	}

	meta := fmt.Sprintf("#%-5d %s  ", turn.ID, when)
	room := width - runewidth.StringWidth(meta) - LabelStyle.GetWidth()
	if room < 10 {
		room = 10
	}
	preview := util.TruncateWidth(util.OneLine(turn.Content), room)

	return DimStyle.Render(meta) + RenderLabel(role) + preview
}
