package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"agentctl/internal/store"
	"agentctl/internal/transcript"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache diffs discovered transcripts against the cache by mtime
// and size, reparses only what changed, and serves the rest from SQLite.
func LoadWithCache(projectsDir string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := transcript.ScanDir(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", projectsDir, err)
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}

	tracked, err := cache.TrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	current := make(map[string]struct{}, len(files))
	var toReparse []transcript.File
	unchanged := make(map[string]struct{})

	for _, f := range files {
		current[f.Path] = struct{}{}
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged[f.Path] = struct{}{}
		} else {
			toReparse = append(toReparse, f)
		}
	}

	// Prune tracker rows for transcripts deleted since the last scan.
	pruned := false
	for path := range tracked {
		if _, ok := current[path]; !ok {
			_ = cache.DeleteFileTracker(path)
			pruned = true
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	if len(unchanged) > 0 || pruned {
		cachedSummaries, err := cache.LoadSummaries()
		if err != nil {
			return nil, fmt.Errorf("loading cached sessions: %w", err)
		}
		for _, s := range cachedSummaries {
			if _, ok := unchanged[s.FilePath]; ok {
				result.Summaries = append(result.Summaries, s)
				result.ParsedFiles++
				continue
			}
			if _, ok := current[s.FilePath]; !ok {
				_ = cache.DeleteSummary(s.SessionID)
			}
		}
	}

	if len(toReparse) > 0 {
		summaries, errs := parseAll(toReparse, result.CacheHits, result.TotalFiles, progressFn)
		result.FileErrors = errs
		result.ParsedFiles += len(toReparse) - errs

		for i := range summaries {
			result.Summaries = append(result.Summaries, summaries[i])
			if info, err := os.Stat(summaries[i].FilePath); err == nil {
				_ = cache.SaveSummary(summaries[i], info.ModTime().UnixNano(), info.Size())
			}
		}
	}

	return result, nil
}

// CacheDir returns the platform cache directory for the session database.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "agentctl")
}

// CachePath returns the session database location for one profile. Each
// profile gets its own database so deleting a profile never poisons
// another's cache.
func CachePath(profileName string) string {
	return filepath.Join(CacheDir(), profileName+".db")
}
