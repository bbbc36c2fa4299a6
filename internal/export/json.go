// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/hint/internal/storage"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports turns as an indented JSON document.
// Turns are always written whole; only the header honors Options.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonDocument struct {
	Exported string         `json:"exported,omitempty"`
	Count    int            `json:"count"`
	Turns    []storage.Turn `json:"turns"`
}

// Export converts turns to JSON.
func (e *JSONExporter) Export(turns []storage.Turn) ([]byte, error) {
	if len(turns) == 0 {
		return nil, ErrNoTurns
	}

	doc := jsonDocument{Count: len(turns), Turns: turns}
	if e.options.IncludeMetadata {
		doc.Exported = e.options.now().Format("2006-01-02T15:04:05Z07:00")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
