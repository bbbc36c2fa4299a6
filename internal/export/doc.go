// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the stored turn log to Markdown or JSON files.
//
// # Key Types
//
//   - Exporter: converts turns to a file format
//   - MarkdownExporter: human-readable log with front matter
//   - JSONExporter: the turns as stored, for other tools
//   - Options: metadata and timestamp switches
//
// # Usage
//
//	exporter, err := export.ForPath("log.md", export.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	err = export.ToFile(turns, exporter, "log.md")
package export
