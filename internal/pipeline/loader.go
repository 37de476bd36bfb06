// Package pipeline turns a profile's transcripts into session summaries,
// in parallel and optionally through the SQLite cache.
package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"agentctl/internal/store"
	"agentctl/internal/transcript"
)

// LoadResult holds the output of a full scan.
type LoadResult struct {
	Summaries   []store.Summary
	TotalFiles  int
	ParsedFiles int
	FileErrors  int
}

// ProgressFunc reports scan progress: files processed so far out of total.
type ProgressFunc func(current, total int)

// Summarize flattens a parsed session for caching and display.
func Summarize(s *transcript.Session) store.Summary {
	out := store.Summary{
		SessionID:     s.ID,
		Project:       s.Project,
		FilePath:      s.FilePath,
		Cwd:           s.Cwd,
		GitBranch:     s.GitBranch,
		Model:         s.Model,
		StartTime:     s.Start,
		EndTime:       s.End,
		Messages:      s.Messages,
		ToolCalls:     len(s.Tools),
		AgentCalls:    len(s.Agents),
		Errors:        s.Errors,
		InputTokens:   s.Tokens.Input,
		OutputTokens:  s.Tokens.Output,
		CacheCreation: s.Tokens.CacheCreation,
		CacheRead:     s.Tokens.CacheRead,
		ToolCounts:    make(map[string]int),
	}
	if s.HasTodo {
		out.TodoTotal = len(s.Todo.Items)
		out.TodoDone = s.Todo.Completed()
	}
	for _, tc := range s.Tools {
		out.ToolCounts[tc.Name]++
	}
	return out
}

// Load discovers and parses every transcript under projectsDir with a
// bounded worker pool.
func Load(projectsDir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := transcript.ScanDir(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", projectsDir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	summaries, errs := parseAll(files, 0, len(files), progressFn)
	result.FileErrors = errs
	result.ParsedFiles = len(files) - errs
	result.Summaries = summaries
	return result, nil
}

// parseAll parses files in parallel and returns summaries for the ones
// that had any content. done/total seed the progress reporting so cached
// loads can count their hits up front.
func parseAll(files []transcript.File, done, total int, progressFn ProgressFunc) ([]store.Summary, int) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	type parsed struct {
		summary store.Summary
		ok      bool
		failed  bool
	}

	work := make(chan int, len(files))
	results := make([]parsed, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				s, err := transcript.ParseFile(files[idx].Path)
				if err != nil {
					results[idx] = parsed{failed: true}
				} else {
					s.Project = files[idx].Project
					if s.ID == "" {
						s.ID = files[idx].SessionID
					}
					if s.Messages > 0 || len(s.Tools) > 0 {
						results[idx] = parsed{summary: Summarize(s), ok: true}
					}
				}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(done+int(n), total)
				}
			}
		}()
	}
	wg.Wait()

	var summaries []store.Summary
	errs := 0
	for _, r := range results {
		if r.failed {
			errs++
		} else if r.ok {
			summaries = append(summaries, r.summary)
		}
	}
	return summaries, errs
}
