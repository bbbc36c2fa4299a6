// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the hint packages.
//
// # Key Functions
//
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: Column-aware truncation for terminal listings
//   - OneLine: Whitespace collapsing for single-line previews
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	preview := util.TruncateWidth(util.OneLine(turn.Content), 60)
//	err := util.AtomicWriteFile("summary.txt", report, 0644)
package util
