// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Mode is the action selected on the command line.
type Mode int

const (
	ModeAsk Mode = iota
	ModeSession
	ModeSummarize
	ModeHistory
	ModeHelp
	ModeVersion
)

// String returns the mode name used in turn metadata.
func (m Mode) String() string {
	switch m {
	case ModeAsk:
		return "ask"
	case ModeSession:
		return "session"
	case ModeSummarize:
		return "summarize"
	case ModeHistory:
		return "history"
	case ModeHelp:
		return "help"
	case ModeVersion:
		return "version"
	default:
		return "unknown"
	}
}

// DefaultHistoryCount is how many turns --history prints without a count.
const DefaultHistoryCount = 10

// Args holds parsed CLI arguments.
type Args struct {
	Mode Mode

	// One-shot
	Prompt string
	File   string

	// Directory summarization
	Dir    string
	Output string

	// --history [N] [--export FILE]
	HistoryCount int
	Export       string

	// Request overrides
	Model       string
	Temperature *float64

	// Global flags
	ConfigPath string
	NoColor    bool
	Verbose    bool
}

var flagSpecs = []FlagSpec{
	{Name: "session", Short: "s", Kind: FlagBool},
	{Name: "file", Short: "f", Kind: FlagValue},
	{Name: "dir", Short: "d", Kind: FlagValue},
	{Name: "output", Short: "o", Kind: FlagValue},
	{Name: "model", Short: "m", Kind: FlagValue},
	{Name: "temperature", Short: "t", Kind: FlagValue},
	{Name: "history", Kind: FlagOptionalInt},
	{Name: "export", Short: "e", Kind: FlagValue},
	{Name: "config", Kind: FlagValue},
	{Name: "no-color", Kind: FlagBool},
	{Name: "verbose", Short: "v", Kind: FlagBool},
	{Name: "help", Short: "h", Kind: FlagBool},
	{Name: "version", Kind: FlagBool},
}

// ParseArgs parses command-line arguments (without the program name).
func ParseArgs(raw []string) (Args, error) {
	var args Args

	p, err := NewArgParser(raw, flagSpecs)
	if err != nil {
		return args, err
	}

	args.Prompt = JoinPositionalArgs(p, 0)
	args.File = p.Flag("file")
	args.Dir = p.Flag("dir")
	args.Output = p.Flag("output")
	args.Model = p.Flag("model")
	args.ConfigPath = p.Flag("config")
	args.Export = p.Flag("export")
	args.NoColor = p.BoolFlag("no-color")
	args.Verbose = p.BoolFlag("verbose")

	if p.HasFlag("temperature") {
		raw := p.Flag("temperature")
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t < 0 || t > 2 {
			return args, NewValidationErrorWithExample("temperature", raw, "must be a number between 0 and 2", "hint -t 0.2 ...")
		}
		args.Temperature = &t
	}

	switch {
	case p.BoolFlag("help"):
		args.Mode = ModeHelp
		return args, nil
	case p.BoolFlag("version"):
		args.Mode = ModeVersion
		return args, nil
	}

	selected := 0
	for _, name := range []string{"session", "dir", "history"} {
		if p.HasFlag(name) && (name != "session" || p.BoolFlag(name)) {
			selected++
		}
	}
	if selected > 1 {
		return args, NewValidationError("mode", "", "--session, --dir and --history cannot be combined")
	}

	switch {
	case p.BoolFlag("session"):
		args.Mode = ModeSession
	case p.HasFlag("dir"):
		args.Mode = ModeSummarize
	case p.HasFlag("history"):
		args.Mode = ModeHistory
		args.HistoryCount = DefaultHistoryCount
		if v := p.Flag("history"); v != "" {
			n, err := ParseIntWithValidation(v, "history")
			if err != nil {
				return args, err
			}
			args.HistoryCount = n
		}
	default:
		args.Mode = ModeAsk
	}

	if args.Export != "" && args.Mode != ModeHistory {
		return args, NewValidationErrorWithExample("export", args.Export, "only valid with --history", "hint --history 50 --export log.md")
	}

	return args, nil
}

const usageText = `hint - ask a language model from the command line

Usage:
  hint [flags] <prompt...>      Ask a single question
  hint -f FILE [prompt...]      Ask about a file (its content is prepended)
  hint -s                       Interactive session
  hint -d DIR [-o FILE]         Summarize the source files under DIR
  hint --history [N]            Show the N most recent turns (default 10)
  hint --history [N] -e FILE    Export them to FILE (.md or .json)

Flags:
  -s, --session            Start an interactive session
  -f, --file FILE          Prepend FILE to the prompt
  -d, --dir DIR            Summarize source files under DIR
  -o, --output FILE        Summary report path (default summary.txt)
  -m, --model MODEL        Model for this run
  -t, --temperature T      Sampling temperature for this run (0-2)
      --history [N]        Print recent conversation turns
  -e, --export FILE        With --history, write the turns to FILE
      --config PATH        Config file (default <data dir>/config.toml)
      --no-color           Disable colored output
  -v, --verbose            Log requests to stderr
  -h, --help               Show this help
      --version            Show version information

In a session, end each prompt with 'wq' and press enter. Type 'exit' to end
the session.

Environment:
  OPENAI_API_KEY     API key for the completion endpoint
  HINT_MODEL         Default model (gpt-4o)
  HINT_BASE_URL      Endpoint host (https://api.openai.com)
  HINT_DATA_DIR      Data directory for the database and config
  NO_COLOR           Disable colored output
`

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// VersionString returns the one-line version description.
func VersionString() string {
	return fmt.Sprintf("hint %s (commit %s, built %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
