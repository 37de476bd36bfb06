package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleSummary() Summary {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return Summary{
		SessionID:    "sess-1",
		Project:      "widget",
		FilePath:     "/data/projects/widget/sess-1.jsonl",
		Cwd:          "/home/dev/widget",
		GitBranch:    "main",
		Model:        "claude-opus-4",
		StartTime:    start,
		EndTime:      start.Add(20 * time.Minute),
		Messages:     40,
		ToolCalls:    12,
		AgentCalls:   2,
		Errors:       1,
		InputTokens:  120000,
		OutputTokens: 8000,
		CacheRead:    50000,
		TodoTotal:    5,
		TodoDone:     3,
		ToolCounts:   map[string]int{"Bash": 5, "Read": 4, "Edit": 3},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := openTestCache(t)

	if err := c.SaveSummary(sampleSummary(), 1000, 2048); err != nil {
		t.Fatal(err)
	}

	summaries, err := c.LoadSummaries()
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries", len(summaries))
	}

	got := summaries[0]
	want := sampleSummary()
	if got.SessionID != want.SessionID || got.Project != want.Project {
		t.Errorf("identity = %q %q", got.SessionID, got.Project)
	}
	if got.ToolCalls != 12 || got.AgentCalls != 2 || got.Errors != 1 {
		t.Errorf("counts = %+v", got)
	}
	if got.InputTokens != 120000 || got.CacheRead != 50000 {
		t.Errorf("tokens = %+v", got)
	}
	if got.Duration() != 20*time.Minute {
		t.Errorf("Duration = %v", got.Duration())
	}
	if got.ToolCounts["Bash"] != 5 || got.ToolCounts["Edit"] != 3 {
		t.Errorf("tool counts = %v", got.ToolCounts)
	}
	if got.TodoDone != 3 || got.TodoTotal != 5 {
		t.Errorf("todo = %d/%d", got.TodoDone, got.TodoTotal)
	}
}

func TestCacheReplaceOnReparse(t *testing.T) {
	c := openTestCache(t)

	s := sampleSummary()
	if err := c.SaveSummary(s, 1000, 2048); err != nil {
		t.Fatal(err)
	}

	s.Messages = 60
	s.ToolCounts = map[string]int{"Grep": 9}
	if err := c.SaveSummary(s, 2000, 4096); err != nil {
		t.Fatal(err)
	}

	summaries, err := c.LoadSummaries()
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want upsert", len(summaries))
	}
	if summaries[0].Messages != 60 {
		t.Errorf("Messages = %d", summaries[0].Messages)
	}
	if len(summaries[0].ToolCounts) != 1 || summaries[0].ToolCounts["Grep"] != 9 {
		t.Errorf("stale tool counts survived: %v", summaries[0].ToolCounts)
	}
}

func TestCacheTrackedFiles(t *testing.T) {
	c := openTestCache(t)

	if err := c.SaveSummary(sampleSummary(), 1234, 5678); err != nil {
		t.Fatal(err)
	}

	tracked, err := c.TrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	fi, ok := tracked["/data/projects/widget/sess-1.jsonl"]
	if !ok || fi.MtimeNs != 1234 || fi.SizeBytes != 5678 {
		t.Errorf("tracked = %+v, ok=%v", fi, ok)
	}

	if err := c.DeleteFileTracker("/data/projects/widget/sess-1.jsonl"); err != nil {
		t.Fatal(err)
	}
	tracked, err = c.TrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(tracked) != 0 {
		t.Errorf("tracker entry survived delete: %v", tracked)
	}
}

func TestCacheDeleteSummary(t *testing.T) {
	c := openTestCache(t)

	if err := c.SaveSummary(sampleSummary(), 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteSummary("sess-1"); err != nil {
		t.Fatal(err)
	}

	n, err := c.SummaryCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("SummaryCount = %d", n)
	}
}
