package transcript

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func toolUseEvent(t *testing.T, ts time.Time, id, name string, input any) Event {
	t.Helper()
	raw, err := json.Marshal(input)
	if err != nil {
		t.Fatal(err)
	}
	return Event{
		Type: "assistant",
		Time: ts,
		Message: &Message{
			Role: "assistant",
			Content: []ContentBlock{
				{Kind: BlockToolUse, ID: id, Name: name, Input: raw},
			},
		},
	}
}

func toolResultEvent(ts time.Time, toolUseID string, isError bool) Event {
	return Event{
		Type: "user",
		Time: ts,
		Message: &Message{
			Role: "user",
			Content: []ContentBlock{
				{Kind: BlockToolResult, ToolUseID: toolUseID, IsError: isError},
			},
		},
	}
}

func TestCorrelatorReadLifecycle(t *testing.T) {
	c := NewCorrelator()
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(1500 * time.Millisecond)

	ups := c.Feed(toolUseEvent(t, t1, "toolu_1", "Read", map[string]string{"file_path": "/src/main.go"}))
	if len(ups) != 1 || ups[0].Tool == nil {
		t.Fatalf("start: got %+v", ups)
	}
	call := ups[0].Tool
	if call.Target != "/src/main.go" {
		t.Errorf("Target = %q", call.Target)
	}
	if call.Done {
		t.Error("pending call marked done")
	}
	if c.PendingCount() != 1 {
		t.Errorf("PendingCount = %d", c.PendingCount())
	}

	ups = c.Feed(toolResultEvent(t2, "toolu_1", false))
	if len(ups) != 1 || !ups[0].Finished {
		t.Fatalf("finish: got %+v", ups)
	}
	if !call.Done || call.IsError {
		t.Errorf("call state = %+v", call)
	}
	if got := call.Duration(); got != t2.Sub(t1) {
		t.Errorf("Duration = %v, want %v", got, t2.Sub(t1))
	}
	if c.PendingCount() != 0 {
		t.Errorf("PendingCount = %d after completion", c.PendingCount())
	}
}

func TestCorrelatorOrphanResult(t *testing.T) {
	c := NewCorrelator()
	ups := c.Feed(toolResultEvent(time.Now(), "toolu_ghost", false))
	if len(ups) != 0 {
		t.Errorf("orphan result produced updates: %+v", ups)
	}
}

func TestCorrelatorReusedID(t *testing.T) {
	c := NewCorrelator()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	c.Feed(toolUseEvent(t, t0, "toolu_dup", "Read", map[string]string{"file_path": "/a"}))
	ups := c.Feed(toolUseEvent(t, t0.Add(time.Second), "toolu_dup", "Read", map[string]string{"file_path": "/b"}))
	if len(ups) != 1 {
		t.Fatalf("got %d updates", len(ups))
	}
	second := ups[0].Tool

	c.Feed(toolResultEvent(t0.Add(2*time.Second), "toolu_dup", false))
	if !second.Done || second.Target != "/b" {
		t.Errorf("result should land on latest call, got %+v", second)
	}
	if c.PendingCount() != 0 {
		t.Errorf("PendingCount = %d", c.PendingCount())
	}
}

func TestCorrelatorTaskIsAgent(t *testing.T) {
	c := NewCorrelator()
	ups := c.Feed(toolUseEvent(t, time.Now(), "toolu_a", "Task", map[string]string{
		"subagent_type": "code-reviewer",
		"description":   "review the changes",
	}))
	if len(ups) != 1 || ups[0].Agent == nil {
		t.Fatalf("got %+v", ups)
	}
	if ups[0].Agent.SubagentType != "code-reviewer" {
		t.Errorf("SubagentType = %q", ups[0].Agent.SubagentType)
	}
	if ups[0].Tool == nil {
		t.Fatal("agent invocation is still a tool call")
	}
	if ups[0].Tool != &ups[0].Agent.ToolCall {
		t.Error("Tool must alias the agent's embedded call")
	}

	fin := c.Feed(toolResultEvent(time.Now(), "toolu_a", true))
	if len(fin) != 1 || fin[0].Tool == nil || fin[0].Agent == nil || !fin[0].Finished {
		t.Fatalf("finish: got %+v", fin)
	}
	if !fin[0].Tool.IsError {
		t.Error("error flag not visible through the tool view")
	}
}

func TestCorrelatorTaskMissingSubagentType(t *testing.T) {
	c := NewCorrelator()
	ups := c.Feed(toolUseEvent(t, time.Now(), "toolu_a", "Task", map[string]string{"description": "do stuff"}))
	if len(ups) != 1 || ups[0].Agent == nil {
		t.Fatalf("got %+v", ups)
	}
	if ups[0].Agent.SubagentType != "unknown" {
		t.Errorf("SubagentType = %q, want unknown", ups[0].Agent.SubagentType)
	}
}

func TestCorrelatorTodoReplace(t *testing.T) {
	c := NewCorrelator()
	now := time.Now()

	c.Feed(toolUseEvent(t, now, "toolu_1", "TodoWrite", map[string]any{
		"todos": []map[string]string{
			{"content": "first", "status": "pending"},
			{"content": "second", "status": "pending"},
			{"content": "third", "status": "pending"},
		},
	}))
	c.Feed(toolUseEvent(t, now.Add(time.Minute), "toolu_2", "TodoWrite", map[string]any{
		"todos": []map[string]string{
			{"content": "alpha", "status": "completed"},
			{"content": "beta", "status": "in_progress"},
		},
	}))

	todo, ok := c.Todo()
	if !ok {
		t.Fatal("expected todo snapshot")
	}
	if len(todo.Items) != 2 {
		t.Fatalf("got %d items, want 2 (snapshot replaced)", len(todo.Items))
	}
	if todo.Items[0].Content != "alpha" {
		t.Errorf("Items[0] = %+v", todo.Items[0])
	}
	if todo.Completed() != 1 {
		t.Errorf("Completed = %d", todo.Completed())
	}
}

func TestCorrelatorPendingNeverCompletes(t *testing.T) {
	c := NewCorrelator()
	ups := c.Feed(toolUseEvent(t, time.Now(), "toolu_1", "Bash", map[string]string{"command": "sleep 999"}))
	call := ups[0].Tool
	if call.Done {
		t.Error("call without result must stay pending")
	}
	if call.Duration() != 0 {
		t.Errorf("pending Duration = %v, want 0", call.Duration())
	}
}

func TestExtractTarget(t *testing.T) {
	mk := func(v any) json.RawMessage {
		raw, _ := json.Marshal(v)
		return raw
	}
	long := "for i in $(seq 1 100); do echo hello world; done"

	cases := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{"Bash", mk(map[string]string{"command": "ls -la"}), "ls -la"},
		{"Bash", mk(map[string]string{"command": long}), Truncate(long, 30)},
		{"Read", mk(map[string]string{"file_path": "/etc/hosts"}), "/etc/hosts"},
		{"Write", mk(map[string]string{"file_path": "/tmp/out.txt"}), "/tmp/out.txt"},
		{"Edit", mk(map[string]string{"file_path": "/src/x.go"}), "/src/x.go"},
		{"Glob", mk(map[string]string{"pattern": "**/*.go"}), "**/*.go"},
		{"Grep", mk(map[string]string{"pattern": "func main"}), "func main"},
		{"Task", mk(map[string]string{"subagent_type": "explorer"}), "explorer"},
		{"Task", mk(map[string]string{}), "unknown"},
		{"WebFetch", mk(map[string]string{"url": "https://example.com"}), ""},
		{"Read", json.RawMessage(`{"file_path":123}`), ""},
		{"Read", nil, ""},
	}
	for _, c := range cases {
		if got := ExtractTarget(c.name, c.input); got != c.want {
			t.Errorf("ExtractTarget(%s, %s) = %q, want %q", c.name, c.input, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 30); got != "short" {
		t.Errorf("got %q", got)
	}
	long := "for i in $(seq 1 100); do echo hello; done"
	got := Truncate(long, 30)
	if len([]rune(got)) != 30 {
		t.Errorf("len = %d, want exactly 30", len([]rune(got)))
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("got %q, want ellipsis suffix", got)
	}
	// Multibyte input must not be split mid-rune.
	uni := ""
	for i := 0; i < 40; i++ {
		uni += "é"
	}
	got = Truncate(uni, 30)
	if len([]rune(got)) != 30 {
		t.Errorf("unicode len = %d runes", len([]rune(got)))
	}
	_ = fmt.Sprint(got)
}
