package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTranscript(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const fixtureSession = `{"type":"user","timestamp":"2026-03-01T10:00:00Z","sessionId":"sess-1","cwd":"/home/dev/projects/widget","gitBranch":"main","message":{"role":"user","content":"add a flag"}}
{"type":"assistant","timestamp":"2026-03-01T10:00:05Z","sessionId":"sess-1","message":{"role":"assistant","model":"claude-opus-4","content":[{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"/src/main.go"}}],"usage":{"input_tokens":1000,"output_tokens":50,"cache_read_input_tokens":200}}}
{"type":"user","timestamp":"2026-03-01T10:00:07Z","sessionId":"sess-1","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1"}]}}
{"type":"assistant","timestamp":"2026-03-01T10:00:10Z","sessionId":"sess-1","message":{"role":"assistant","model":"claude-opus-4","content":[{"type":"tool_use","id":"t2","name":"Bash","input":{"command":"go test ./..."}},{"type":"tool_use","id":"t3","name":"Task","input":{"subagent_type":"reviewer"}}],"usage":{"input_tokens":1200,"output_tokens":80}}}
{"type":"user","timestamp":"2026-03-01T10:00:20Z","sessionId":"sess-1","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t2","is_error":true}]}}
{"type":"summary","summary":"a summary line"}
not valid json, should be skipped
{"type":"user","timestamp":"2026-03-01T10:01:00Z","sessionId":"sess-1","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t3"}]}}`

func TestParseFile(t *testing.T) {
	path := writeTranscript(t, t.TempDir(), "sess-1.jsonl", fixtureSession)

	s, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if s.ID != "sess-1" {
		t.Errorf("ID = %q", s.ID)
	}
	if s.Cwd != "/home/dev/projects/widget" || s.GitBranch != "main" {
		t.Errorf("Cwd=%q GitBranch=%q", s.Cwd, s.GitBranch)
	}
	if s.Model != "claude-opus-4" {
		t.Errorf("Model = %q", s.Model)
	}
	// 4 user + 2 assistant events carry messages; summary and garbage do not.
	if s.Messages != 6 {
		t.Errorf("Messages = %d, want 6", s.Messages)
	}
	// One ToolCall per tool_use block, Task included.
	if len(s.Tools) != 3 {
		t.Errorf("Tools = %d, want 3", len(s.Tools))
	}
	if len(s.Agents) != 1 || s.Agents[0].SubagentType != "reviewer" {
		t.Errorf("Agents = %+v", s.Agents)
	}
	if s.Errors != 1 {
		t.Errorf("Errors = %d", s.Errors)
	}
	if s.Tokens.Input != 2200 || s.Tokens.Output != 130 || s.Tokens.CacheRead != 200 {
		t.Errorf("Tokens = %+v", s.Tokens)
	}
	wantDur := 60 * time.Second
	if s.Duration() != wantDur {
		t.Errorf("Duration = %v, want %v", s.Duration(), wantDur)
	}
}

func TestParseFileIdempotent(t *testing.T) {
	path := writeTranscript(t, t.TempDir(), "s.jsonl", fixtureSession)

	a, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if a.Messages != b.Messages || len(a.Tools) != len(b.Tools) ||
		a.Errors != b.Errors || a.Tokens != b.Tokens {
		t.Errorf("parse is not deterministic: %+v vs %+v", a, b)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseFileEmpty(t *testing.T) {
	path := writeTranscript(t, t.TempDir(), "empty.jsonl", "")
	s, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Messages != 0 || len(s.Tools) != 0 {
		t.Errorf("empty file should yield empty session: %+v", s)
	}
	if s.Duration() != 0 {
		t.Errorf("Duration = %v", s.Duration())
	}
}

func TestToolBreakdown(t *testing.T) {
	s := &Session{
		Tools: []*ToolCall{
			{Name: "Read"}, {Name: "Read"}, {Name: "Bash"},
			{Name: "Edit"}, {Name: "Bash"}, {Name: "Read"},
		},
	}
	bd := s.ToolBreakdown()
	if len(bd) != 3 {
		t.Fatalf("got %d entries", len(bd))
	}
	if bd[0].Name != "Read" || bd[0].Count != 3 {
		t.Errorf("bd[0] = %+v", bd[0])
	}
	if bd[1].Name != "Bash" || bd[1].Count != 2 {
		t.Errorf("bd[1] = %+v", bd[1])
	}
	if bd[0].Percent != 50.0 {
		t.Errorf("Percent = %v", bd[0].Percent)
	}
}

func TestAgentBreakdownsMeanSkipsPending(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := &Session{
		Agents: []*AgentCall{
			{ToolCall: ToolCall{Started: t0, Ended: t0.Add(4 * time.Second), Done: true}, SubagentType: "reviewer"},
			{ToolCall: ToolCall{Started: t0, Ended: t0.Add(8 * time.Second), Done: true}, SubagentType: "reviewer"},
			{ToolCall: ToolCall{Started: t0}, SubagentType: "reviewer"}, // pending
		},
	}
	bd := s.AgentBreakdowns()
	if len(bd) != 1 {
		t.Fatalf("got %d entries", len(bd))
	}
	if bd[0].Count != 3 {
		t.Errorf("Count = %d", bd[0].Count)
	}
	if bd[0].MeanDuration != 6*time.Second {
		t.Errorf("MeanDuration = %v, want 6s over completed calls only", bd[0].MeanDuration)
	}
}

func TestAggregatorFirstWins(t *testing.T) {
	agg := NewAggregator("/tmp/x.jsonl")
	agg.Add(Event{Type: "user", SessionID: "first", Cwd: "/a",
		Message: &Message{Role: "user"}})
	agg.Add(Event{Type: "user", SessionID: "second", Cwd: "/b",
		Message: &Message{Role: "user"}})

	s := agg.Session()
	if s.ID != "first" || s.Cwd != "/a" {
		t.Errorf("got ID=%q Cwd=%q, want first values kept", s.ID, s.Cwd)
	}
}

func TestAggregatorReset(t *testing.T) {
	agg := NewAggregator("/tmp/x.jsonl")
	agg.Add(Event{Type: "user", SessionID: "s1", Message: &Message{Role: "user"}})
	agg.Reset()
	s := agg.Session()
	if s.ID != "" || s.Messages != 0 {
		t.Errorf("reset did not clear state: %+v", s)
	}
}
