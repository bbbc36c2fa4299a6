// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"log"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Fence is the delimiter separating prose from code in a reply.
const Fence = "```"

// ResponseRenderer turns a reply into printable text.
type ResponseRenderer interface {
	Render(text string) string
}

// =============================================================================
// FENCE RENDERER
// =============================================================================

// Renderer colors prose and fenced code differently.
type Renderer struct {
	Formatter Formatter
	// Highlight enables syntax highlighting of code segments.
	Highlight bool
}

// Render splits text on Fence. Even segments are prose and odd segments
// are code with the fence tag line dropped. An unterminated fence leaves
// the trailing segment in whichever role its position gives it.
func (r Renderer) Render(text string) string {
	f := r.Formatter
	if f == nil {
		f = Plain{}
	}

	var b strings.Builder
	for i, segment := range strings.Split(text, Fence) {
		if i%2 == 0 {
			b.WriteString(f.Format(Prose, segment))
			continue
		}

		lang, code := splitFence(segment)
		if r.Highlight && Colored(f) {
			if highlighted, ok := highlight(f.(*ANSIFormatter).Profile(), lang, code); ok {
				b.WriteString(highlighted)
				continue
			}
		}
		b.WriteString(f.Format(Code, code))
	}
	return b.String()
}

// splitFence separates the fence tag from the code. The code keeps its
// leading newline. A segment with no newline is all tag and no code.
func splitFence(segment string) (lang, code string) {
	idx := strings.IndexByte(segment, '\n')
	if idx < 0 {
		return strings.TrimSpace(segment), ""
	}
	return strings.TrimSpace(segment[:idx]), segment[idx:]
}

// highlight applies chroma syntax highlighting. ok is false when no lexer
// matches or formatting fails.
func highlight(profile termenv.Profile, lang, code string) (string, bool) {
	if strings.TrimSpace(code) == "" {
		return "", false
	}

	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get(chromaFormatterFor(profile))
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		log.Printf("RENDER | tokenise %s: %v", lang, err)
		return "", false
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		log.Printf("RENDER | highlight %s: %v", lang, err)
		return "", false
	}
	return buf.String(), true
}

func chromaFormatterFor(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	default:
		return "terminal16"
	}
}

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders replies as markdown through glamour. It falls back
// to the fence renderer when glamour fails.
type MarkdownRenderer struct {
	term     *glamour.TermRenderer
	fallback Renderer
}

// NewMarkdownRenderer creates a markdown renderer wrapping at width columns.
func NewMarkdownRenderer(width int, fallback Renderer) (*MarkdownRenderer, error) {
	if width <= 0 {
		width = 80
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{term: term, fallback: fallback}, nil
}

// Render returns text as styled markdown.
func (m *MarkdownRenderer) Render(text string) string {
	out, err := m.term.Render(text)
	if err != nil {
		log.Printf("RENDER | markdown failed, using fence renderer: %v", err)
		return m.fallback.Render(text)
	}
	return strings.Trim(out, "\n")
}

// New picks the renderer named by kind ("fence" or "markdown"). Markdown
// needs color; without it the fence renderer is used.
func New(kind string, f Formatter, highlight bool, width int) ResponseRenderer {
	fence := Renderer{Formatter: f, Highlight: highlight}
	if strings.EqualFold(kind, "markdown") && Colored(f) {
		md, err := NewMarkdownRenderer(width, fence)
		if err == nil {
			return md
		}
		log.Printf("RENDER | markdown unavailable: %v", err)
	}
	return fence
}
