// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the run modes of hint.
//
// # Key Types
//
//   - Args: Parsed command-line arguments and the selected Mode
//   - App: One invocation wired to config, storage, client and output
//   - ChatCLI: liner-backed line editing with persistent input history
//   - Summarizer: Parallel, order-preserving directory summarization
//
// # Usage
//
//	args, err := cli.ParseArgs(os.Args[1:])
//	app := cli.NewApp(cfg, store, client, formatter, renderer)
//	if err := app.Run(ctx, args); err != nil {
//	    cli.DisplayError(os.Stderr, err)
//	    os.Exit(cli.ExitCode(err))
//	}
//
// # Modes
//
//   - ask: One prompt from the arguments, optionally prefixed by a file
//   - session: Multi-line prompts ended with "wq" until "exit"
//   - summarize: One summary per source file, written to a report
//   - history: Recent stored turns
package cli
