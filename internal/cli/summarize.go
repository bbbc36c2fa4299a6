// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jeranaias/hint/internal/cloud"
	"github.com/jeranaias/hint/internal/util"
)

// =============================================================================
// TOKEN BUDGET
// =============================================================================

const (
	// minSummaryTokens and maxSummaryTokens bound the summary length.
	minSummaryTokens = 64
	maxSummaryTokens = 512

	// charsPerToken is a rough estimate for source code.
	charsPerToken = 4
)

// budgetFor returns the summary token budget for a file of size bytes.
func budgetFor(size int64) int {
	tokens := size / charsPerToken
	if tokens < minSummaryTokens {
		return minSummaryTokens
	}
	if tokens > maxSummaryTokens {
		return maxSummaryTokens
	}
	return int(tokens)
}

const summaryInstruction = "Summarize the purpose and main components of the following source file."

func summarySystemPrompt(budget int) string {
	return fmt.Sprintf("You summarize source code for developers. Answer in plain prose, no code blocks. Keep the summary under %d tokens.", budget)
}

// =============================================================================
// SUMMARIZER
// =============================================================================

// FileSummary is the outcome for one file. Exactly one of Summary and Err
// is set.
type FileSummary struct {
	Path    string
	Summary string
	Err     error
}

// Summarizer walks a directory and summarizes each matching file.
type Summarizer struct {
	Client     Completer
	Options    cloud.RequestOptions
	Extensions []string
	// Workers bounds concurrent requests.
	Workers int
	// Limiter throttles requests. Nil means unlimited.
	Limiter *rate.Limiter
	// MaxFileBytes skips larger files. Zero means no limit.
	MaxFileBytes int64
	// OnResult is called once per file as results complete. Calls are
	// serialized.
	OnResult func(FileSummary)
}

// Collect returns the files under root to summarize, in walk order. Any
// path component starting with "." is skipped, hidden directories entirely.
func (s *Summarizer) Collect(root string) ([]string, error) {
	allowed := make(map[string]bool, len(s.Extensions))
	for _, ext := range s.Extensions {
		allowed[strings.ToLower(ext)] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("SUMMARIZE | skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &FileAccessError{Path: root, Err: err}
	}
	return files, nil
}

// Summarize summarizes every collected file under root. Per-file failures
// are reported in the result and do not stop the walk. Results keep walk
// order whatever order the requests finish in.
func (s *Summarizer) Summarize(ctx context.Context, root string) ([]FileSummary, error) {
	files, err := s.Collect(root)
	if err != nil {
		return nil, err
	}

	results := make([]FileSummary, len(files))
	var mu sync.Mutex

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range files {
		g.Go(func() error {
			result := s.summarizeFile(gctx, path)
			results[i] = result
			if s.OnResult != nil {
				mu.Lock()
				s.OnResult(result)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *Summarizer) summarizeFile(ctx context.Context, path string) FileSummary {
	result := FileSummary{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		result.Err = &FileAccessError{Path: path, Err: err}
		return result
	}
	if s.MaxFileBytes > 0 && info.Size() > s.MaxFileBytes {
		result.Err = &FileAccessError{Path: path, Err: fmt.Errorf("file too large: %d bytes (max %d bytes)", info.Size(), s.MaxFileBytes)}
		return result
	}

	content, err := os.ReadFile(path)
	if err != nil {
		result.Err = &FileAccessError{Path: path, Err: err}
		return result
	}

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			result.Err = err
			return result
		}
	}

	budget := budgetFor(int64(len(content)))
	messages := []cloud.ChatMessage{
		cloud.NewSystemMessage(summarySystemPrompt(budget)),
		cloud.NewUserMessage(fmt.Sprintf("%s\n\nPath: %s\n\n%s", summaryInstruction, path, content)),
	}
	opts := s.Options.Merge(cloud.RequestOptions{MaxTokens: budget})

	start := time.Now()
	summary, err := s.Client.Complete(ctx, messages, opts)
	if err != nil {
		result.Err = err
		return result
	}
	log.Printf("SUMMARIZE | %s: %d bytes, budget=%d, %v", path, len(content), budget, time.Since(start))

	result.Summary = summary
	return result
}

// FormatReport renders successful results as "path\nsummary\n\n" entries in
// result order.
func FormatReport(results []FileSummary) []byte {
	var buf bytes.Buffer
	for _, r := range results {
		if r.Err != nil || r.Path == "" {
			continue
		}
		fmt.Fprintf(&buf, "%s\n%s\n\n", r.Path, r.Summary)
	}
	return buf.Bytes()
}

// =============================================================================
// SUMMARIZE HANDLER
// =============================================================================

// RunSummarize summarizes the directory given with -d and writes the report.
func (a *App) RunSummarize(ctx context.Context, args Args) error {
	cfg := a.Config.Summary

	info, err := os.Stat(args.Dir)
	if err != nil {
		return &FileAccessError{Path: args.Dir, Err: err}
	}
	if !info.IsDir() {
		return NewValidationError("dir", args.Dir, "not a directory")
	}

	output := args.Output
	if output == "" {
		output = cfg.ReportFile
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	s := &Summarizer{
		Client: a.Client,
		Options: cloud.DefaultOptions(a.Config.API.Model, cfg.Temperature).Merge(cloud.RequestOptions{
			Model:       args.Model,
			Temperature: args.Temperature,
		}),
		Extensions:   cfg.Extensions,
		Workers:      cfg.Workers,
		Limiter:      limiter,
		MaxFileBytes: cfg.MaxFileBytes,
		OnResult:     a.reportProgress,
	}

	results, err := s.Summarize(ctx, args.Dir)
	if err != nil {
		return err
	}

	ok := 0
	for _, r := range results {
		if r.Err == nil {
			ok++
		}
	}

	if err := util.AtomicWriteFile(output, FormatReport(results), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(a.Out, "Summarized %d of %d files into %s\n", ok, len(results), output)
	return nil
}

// reportProgress prints one status line per file.
func (a *App) reportProgress(r FileSummary) {
	if r.Err != nil {
		fmt.Fprintf(a.Err, "%s %s: %v\n", RenderStatus("fail"), r.Path, r.Err)
		return
	}
	fmt.Fprintf(a.Out, "%s %s\n", RenderStatus("ok"), r.Path)
}
