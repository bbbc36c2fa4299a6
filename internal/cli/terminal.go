// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width we'll use for wrapping
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width.
// Returns DefaultTerminalWidth (80) if width cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// ColorProfile picks the termenv profile for stdout. noColor (from --no-color,
// NO_COLOR or the config file) and non-TTY output yield termenv.Ascii.
// FORCE_COLOR overrides TTY detection.
func ColorProfile(noColor bool) termenv.Profile {
	return colorProfile(noColor, os.Getenv("FORCE_COLOR") != "", IsStdoutTTY(), termenv.ColorProfile)
}

func colorProfile(noColor, force, tty bool, detect func() termenv.Profile) termenv.Profile {
	if noColor {
		return termenv.Ascii
	}
	if !force && !tty {
		return termenv.Ascii
	}
	profile := detect()
	if profile == termenv.Ascii && force {
		// Piped output reports Ascii; forced color falls back to basic ANSI.
		return termenv.ANSI
	}
	return profile
}
