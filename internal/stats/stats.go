// Package stats reads the stats-cache.json file Claude Code maintains
// with precomputed historical usage, for analytics that reach further
// back than the transcripts still on disk.
package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

const cacheFile = "stats-cache.json"

// Cache mirrors Claude Code's stats-cache.json. All fields are optional;
// schema drift degrades to zero values rather than errors.
type Cache struct {
	Version          int               `json:"version"`
	LastComputedDate string            `json:"lastComputedDate"`
	DailyActivity    []DailyActivity   `json:"dailyActivity"`
	DailyModelTokens []DailyTokens     `json:"dailyModelTokens"`
	TotalSessions    int64             `json:"totalSessions"`
	TotalMessages    int64             `json:"totalMessages"`
	ModelUsage       map[string]Models `json:"modelUsage"`
}

// DailyActivity is one day's counters.
type DailyActivity struct {
	Date          string `json:"date"`
	MessageCount  int64  `json:"messageCount"`
	SessionCount  int64  `json:"sessionCount"`
	ToolCallCount int64  `json:"toolCallCount"`
}

// DailyTokens is one day's token usage keyed by model id.
type DailyTokens struct {
	Date          string           `json:"date"`
	TokensByModel map[string]int64 `json:"tokensByModel"`
}

// Models is the per-model lifetime summary.
type Models struct {
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	CostUSD      float64 `json:"costUsd"`
}

// IsEmpty reports whether the cache carries no usable data.
func (c *Cache) IsEmpty() bool {
	return len(c.DailyActivity) == 0 && len(c.DailyModelTokens) == 0 && c.TotalSessions == 0
}

// TokensForDate sums all models' tokens on a YYYY-MM-DD date.
func (c *Cache) TokensForDate(date string) int64 {
	for _, d := range c.DailyModelTokens {
		if d.Date == date {
			var total int64
			for _, n := range d.TokensByModel {
				total += n
			}
			return total
		}
	}
	return 0
}

// ActivityForDate returns one day's counters, if recorded.
func (c *Cache) ActivityForDate(date string) (DailyActivity, bool) {
	for _, d := range c.DailyActivity {
		if d.Date == date {
			return d, true
		}
	}
	return DailyActivity{}, false
}

// RecentActivity returns up to n days of activity, most recent first.
func (c *Cache) RecentActivity(n int) []DailyActivity {
	out := make([]DailyActivity, len(c.DailyActivity))
	copy(out, c.DailyActivity)
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// recentTokens returns up to n days of token usage, most recent first.
// n < 0 means all days.
func (c *Cache) recentTokens(n int) []DailyTokens {
	out := make([]DailyTokens, len(c.DailyModelTokens))
	copy(out, c.DailyModelTokens)
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TokensByModel aggregates per-model tokens over the last n days, or over
// everything when n < 0.
func (c *Cache) TokensByModel(n int) map[string]int64 {
	result := make(map[string]int64)
	for _, day := range c.recentTokens(n) {
		for model, count := range day.TokensByModel {
			result[model] += count
		}
	}
	return result
}

// TotalTokens sums all models over the last n days, or everything when
// n < 0.
func (c *Cache) TotalTokens(n int) int64 {
	var total int64
	for _, count := range c.TokensByModel(n) {
		total += count
	}
	return total
}

// Load reads a stats cache, degrading to an empty cache when the file is
// missing or malformed. History is advisory; a broken cache should never
// stop a command.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Cache{}
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return &Cache{}
	}
	return &c
}

// ProfilePath returns the per-profile stats cache location.
func ProfilePath(profileDir string) string {
	return filepath.Join(profileDir, cacheFile)
}

// GlobalPath returns the unprofiled Claude Code stats cache location.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", cacheFile), nil
}

// LoadForProfile prefers the profile's own cache and falls back to the
// global one.
func LoadForProfile(profileDir string) *Cache {
	p := ProfilePath(profileDir)
	if _, err := os.Stat(p); err == nil {
		return Load(p)
	}
	if g, err := GlobalPath(); err == nil {
		return Load(g)
	}
	return &Cache{}
}
