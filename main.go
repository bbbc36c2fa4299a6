// hint - a command-line chat client for OpenAI-compatible endpoints.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/hint/internal/cli"
	"github.com/jeranaias/hint/internal/cloud"
	"github.com/jeranaias/hint/internal/config"
	"github.com/jeranaias/hint/internal/render"
	"github.com/jeranaias/hint/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli and cloud packages
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
	cloud.Version = Version
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one invocation and returns the process exit code.
func run(rawArgs []string) int {
	args, err := cli.ParseArgs(rawArgs)
	if err != nil {
		cli.ConfigureStyles(cli.ColorProfile(true))
		cli.DisplayError(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Run 'hint --help' for usage.")
		return cli.ExitCode(err)
	}

	// Help and version never need configuration or storage.
	switch args.Mode {
	case cli.ModeHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.ModeVersion:
		profile := cli.ColorProfile(args.NoColor || os.Getenv("NO_COLOR") != "")
		version := cli.VersionString()
		fmt.Println(render.Rainbow(profile, "hint") + strings.TrimPrefix(version, "hint"))
		return cli.ExitSuccess
	}

	setupLogging(args.Verbose)

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		cli.ConfigureStyles(cli.ColorProfile(args.NoColor))
		cli.DisplayError(os.Stderr, err)
		return cli.ExitCode(err)
	}
	if args.NoColor {
		cfg.UI.NoColor = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	profile := cli.ColorProfile(cfg.UI.NoColor)
	cli.ConfigureStyles(profile)

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.ExitCode(err)
	}
	store, err := storage.Open(ctx, dbPath)
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.ExitCode(err)
	}
	defer store.Close()

	client := cloud.NewClient(cloud.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Path:    cfg.API.Path,
		APIKey:  cfg.API.Key,
	})

	formatter := render.NewANSIFormatter(profile)
	renderer := render.New(cfg.UI.Renderer, formatter, cfg.UI.Highlight, cli.GetTerminalWidth())

	app := cli.NewApp(cfg, store, client, formatter, renderer)
	app.SessionID = uuid.NewString()
	log.Printf("SESSION | id=%s mode=%s db=%s", app.SessionID, args.Mode, dbPath)

	if err := app.Run(ctx, args); err != nil {
		if !errors.Is(err, context.Canceled) {
			cli.DisplayError(os.Stderr, err)
		}
		return cli.ExitCode(err)
	}
	return cli.ExitSuccess
}

// setupLogging discards log output unless verbose is set.
func setupLogging(verbose bool) {
	if !verbose {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ltime | log.Lmicroseconds)
}
