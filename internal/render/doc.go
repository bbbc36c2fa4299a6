// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns model replies into terminal output.
//
// A reply is split on triple backticks. Prose and fenced code get their own
// colors; code may also be syntax highlighted. Colors come from a Formatter
// so file output and NO_COLOR terminals can swap in Plain.
//
// # Key Types
//
//   - Kind: Role of a text span (prose, code, user label, brand, ...)
//   - Formatter: Kind-keyed decoration; ANSIFormatter or Plain
//   - Renderer: Fence-splitting reply renderer
//   - MarkdownRenderer: glamour-based alternative
//
// # Usage
//
//	f := render.NewANSIFormatter(termenv.ANSI)
//	r := render.Renderer{Formatter: f}
//	fmt.Println(r.Render(reply))
package render
