// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/hint/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports turns to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts turns to Markdown. Reply content is written as stored, so
// code fences survive.
func (e *MarkdownExporter) Export(turns []storage.Turn) ([]byte, error) {
	if len(turns) == 0 {
		return nil, ErrNoTurns
	}

	var sb strings.Builder
	exported := e.options.now()

	// YAML front matter
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString("title: hint conversation log\n")
		sb.WriteString(fmt.Sprintf("turns: %d\n", len(turns)))
		sb.WriteString(fmt.Sprintf("first: %s\n", escapeYAML(turns[0].Timestamp)))
		sb.WriteString(fmt.Sprintf("last: %s\n", escapeYAML(turns[len(turns)-1].Timestamp)))
		if sessions := sessionIDs(turns); len(sessions) > 0 {
			sb.WriteString(fmt.Sprintf("sessions: %s\n", escapeYAML(strings.Join(sessions, ", "))))
		}
		sb.WriteString(fmt.Sprintf("exported: %s\n", exported.Format(time.RFC3339)))
		sb.WriteString("generator: hint\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# Conversation Log\n\n")

	for i, turn := range turns {
		label := formatRoleLabel(turn.Role)
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatTimestamp(turn)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		sb.WriteString(strings.TrimSpace(turn.Content))
		sb.WriteString("\n\n")

		if e.options.IncludeMetadata {
			if meta := formatMetadata(turn.Metadata); meta != "" {
				sb.WriteString(meta)
				sb.WriteString("\n\n")
			}
		}

		if i < len(turns)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from hint on %s*\n", exported.Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func formatRoleLabel(role storage.Role) string {
	switch role {
	case storage.RoleUser:
		return "[You]"
	case storage.RoleSystem:
		return "[Hint]"
	case "":
		return "Unknown"
	default:
		s := string(role)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// formatMetadata renders the mode and file keys, if present.
func formatMetadata(meta map[string]any) string {
	var parts []string
	for _, key := range []string{"mode", "file"} {
		if v, ok := meta[key]; ok && v != nil && fmt.Sprint(v) != "" {
			parts = append(parts, fmt.Sprintf("%s: `%v`", key, v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("<sub>%s</sub>", strings.Join(parts, " | "))
}

// sessionIDs returns the distinct session ids in turns, sorted.
func sessionIDs(turns []storage.Turn) []string {
	seen := make(map[string]bool)
	for _, turn := range turns {
		if id, ok := turn.Metadata["session"].(string); ok && id != "" {
			seen[id] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	// Quote if contains special characters (including backslash)
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
