// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jeranaias/hint/internal/storage"
)

// MaxFileSize is the maximum file size for -f (1MB).
const MaxFileSize = 1024 * 1024

// fileErrorMessage is printed when the -f file cannot be read.
const fileErrorMessage = "Error processing file argument."

// readFileForContext reads the file given with -f.
func readFileForContext(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &FileAccessError{Path: path, Err: err}
	}
	if info.IsDir() {
		return "", &FileAccessError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	if info.Size() > MaxFileSize {
		return "", &FileAccessError{Path: path, Err: fmt.Errorf("file too large: %d bytes (max %d bytes)", info.Size(), MaxFileSize)}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", &FileAccessError{Path: path, Err: err}
	}
	return string(content), nil
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// RunAsk sends a single prompt built from the optional file and the
// positional arguments.
//
// History is loaded before the prompt is stored, so the request does not
// repeat the prompt in its history. The prompt stays stored even when the
// completion fails.
func (a *App) RunAsk(ctx context.Context, args Args) error {
	full := args.Prompt
	extra := map[string]any{}
	if args.File != "" {
		content, err := readFileForContext(args.File)
		if err != nil {
			log.Printf("ASK | %v", err)
			fmt.Fprintln(a.Out, fileErrorMessage)
			return nil
		}
		full = content + "\n" + args.Prompt
		extra["file"] = args.File
	}

	if strings.TrimSpace(full) == "" {
		PrintUsage(a.Err)
		return ErrMissingArgument("prompt", `hint "how do I list open ports on linux?"`)
	}

	recent, err := a.Store.Recent(ctx, a.historyLimit())
	if err != nil {
		return err
	}

	if _, err := a.Store.Append(ctx, storage.NewTurn(storage.RoleUser, full, a.metadata(ModeAsk, extra))); err != nil {
		return err
	}

	reply, err := a.complete(ctx, full, recent, args)
	if err != nil {
		return err
	}

	a.printReply(reply)

	_, err = a.Store.Append(ctx, storage.NewTurn(storage.RoleSystem, reply, a.metadata(ModeAsk, nil)))
	return err
}
