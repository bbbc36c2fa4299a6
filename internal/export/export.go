// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/hint/internal/storage"
	"github.com/jeranaias/hint/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts stored turns to a file format.
type Exporter interface {
	// Export renders turns, oldest first.
	Export(turns []storage.Turn) ([]byte, error)

	// FileExtension returns the file extension (e.g., ".md").
	FileExtension() string
}

// ErrNoTurns is returned when there is nothing to export.
var ErrNoTurns = errors.New("no turns to export")

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds a front matter header and per-turn metadata.
	IncludeMetadata bool

	// IncludeTimestamps adds per-turn timestamps.
	IncludeTimestamps bool

	// Now is used for the export date. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ForPath picks an exporter from the extension of path: ".json" or
// ".md"/".markdown".
func ForPath(path string, opts *Options) (Exporter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONExporter(opts), nil
	case ".md", ".markdown":
		return NewMarkdownExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use .md or .json)", filepath.Ext(path))
	}
}

// ToFile exports turns to path, replacing it atomically.
func ToFile(turns []storage.Turn, exporter Exporter, path string) error {
	content, err := exporter.Export(turns)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatTimestamp formats a stored timestamp for display. Unparseable
// values are returned unchanged.
func formatTimestamp(turn storage.Turn) string {
	ts, err := turn.Time()
	if err != nil {
		return turn.Timestamp
	}
	return ts.Format("2006-01-02 15:04:05")
}
