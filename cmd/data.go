package cmd

import (
	"fmt"
	"os"
	"sort"

	"agentctl/internal/pipeline"
	"agentctl/internal/profile"
	"agentctl/internal/store"
)

// loadSummaries is the shared scan path: cache-assisted unless --no-cache,
// falling back to a full parse when the cache is unusable. Results come
// back newest first.
func loadSummaries(st *profile.Store, name string) ([]store.Summary, error) {
	projectsDir := st.ProjectsDir(name)

	var summaries []store.Summary

	if !flagNoCache {
		cachePath := pipeline.CachePath(name)
		debugf("session cache: %s", cachePath)
		cache, err := store.Open(cachePath)
		if err == nil {
			defer func() { _ = cache.Close() }()
			result, err := pipeline.LoadWithCache(projectsDir, cache, progressFn())
			if err == nil {
				debugf("scan: %d cached, %d reparsed", result.CacheHits, result.Reparsed)
				if n, err := cache.SummaryCount(); err == nil {
					debugf("cache holds %d sessions", n)
				}
				summaries = result.Summaries
				sortSummaries(summaries)
				return summaries, nil
			}
			if !flagQuiet {
				fmt.Fprintln(os.Stderr, "  Cache error, falling back to full parse")
			}
		} else if !flagQuiet {
			fmt.Fprintln(os.Stderr, "  Cache unavailable, doing full parse")
		}
	}

	result, err := pipeline.Load(projectsDir, progressFn())
	if err != nil {
		return nil, err
	}
	summaries = result.Summaries
	sortSummaries(summaries)
	return summaries, nil
}

func sortSummaries(summaries []store.Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})
}
