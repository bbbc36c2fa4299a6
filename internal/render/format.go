// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"github.com/muesli/termenv"
)

// =============================================================================
// KINDS
// =============================================================================

// Kind names the role a piece of output text plays.
type Kind int

const (
	Prose Kind = iota
	Code
	User
	Brand
	BrandAccent
	Error
	Info
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Prose:
		return "prose"
	case Code:
		return "code"
	case User:
		return "user"
	case Brand:
		return "brand"
	case BrandAccent:
		return "brand-accent"
	case Error:
		return "error"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// =============================================================================
// FORMATTERS
// =============================================================================

// Formatter decorates text for one output target.
type Formatter interface {
	Format(kind Kind, text string) string
}

// Plain is a Formatter that returns text unchanged. It serves files, pipes
// and NO_COLOR terminals.
type Plain struct{}

// Format returns text as is.
func (Plain) Format(_ Kind, text string) string {
	return text
}

// kindColors is the color table shared by every ANSI formatter.
var kindColors = map[Kind]termenv.ANSIColor{
	Prose:       termenv.ANSIBrightBlue,
	Code:        termenv.ANSIBrightWhite,
	User:        termenv.ANSIBrightMagenta,
	Brand:       termenv.ANSIBrightRed,
	BrandAccent: termenv.ANSIBrightGreen,
	Error:       termenv.ANSIRed,
	Info:        termenv.ANSICyan,
}

// ANSIFormatter colors text with terminal escape sequences.
type ANSIFormatter struct {
	profile termenv.Profile
}

// NewANSIFormatter returns a formatter for profile. termenv.Ascii yields
// plain text.
func NewANSIFormatter(profile termenv.Profile) *ANSIFormatter {
	return &ANSIFormatter{profile: profile}
}

// Profile returns the color profile in use.
func (f *ANSIFormatter) Profile() termenv.Profile {
	return f.profile
}

// Format wraps text in the color assigned to kind.
func (f *ANSIFormatter) Format(kind Kind, text string) string {
	color, ok := kindColors[kind]
	if !ok {
		return text
	}
	return f.profile.String(text).Foreground(f.profile.Convert(color)).String()
}

// Colored reports whether f emits escape sequences.
func Colored(f Formatter) bool {
	ansi, ok := f.(*ANSIFormatter)
	return ok && ansi.profile != termenv.Ascii
}

// =============================================================================
// RAINBOW
// =============================================================================

var rainbowColors = []termenv.ANSIColor{
	termenv.ANSIBrightBlue,
	termenv.ANSIBrightRed,
	termenv.ANSIBrightGreen,
	termenv.ANSIBrightYellow,
	termenv.ANSIBrightMagenta,
	termenv.ANSIBrightCyan,
	termenv.ANSIBrightWhite,
}

// Rainbow colors each rune of text with the next color of the palette.
func Rainbow(profile termenv.Profile, text string) string {
	if profile == termenv.Ascii {
		return text
	}
	var out []byte
	i := 0
	for _, r := range text {
		color := rainbowColors[i%len(rainbowColors)]
		out = append(out, profile.String(string(r)).Foreground(profile.Convert(color)).String()...)
		i++
	}
	return string(out)
}
