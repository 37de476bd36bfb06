package transcript

import (
	"testing"
	"time"
)

func TestParseLineValid(t *testing.T) {
	line := []byte(`{"type":"assistant","timestamp":"2026-03-01T10:00:00Z","sessionId":"abc-123","message":{"role":"assistant","model":"claude-opus-4","content":[{"type":"text","text":"hi"}],"usage":{"input_tokens":100,"output_tokens":20}}}`)

	ev, ok := ParseLine(line)
	if !ok {
		t.Fatal("expected valid event")
	}
	if ev.Type != "assistant" {
		t.Errorf("Type = %q, want assistant", ev.Type)
	}
	if ev.SessionID != "abc-123" {
		t.Errorf("SessionID = %q", ev.SessionID)
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !ev.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", ev.Time, want)
	}
	if ev.Message == nil || ev.Message.Usage == nil {
		t.Fatal("expected message with usage")
	}
	if ev.Message.Usage.InputTokens != 100 {
		t.Errorf("InputTokens = %d", ev.Message.Usage.InputTokens)
	}
}

func TestParseLineMalformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not json at all",
		`{"type":"user", truncated`,
		`[1,2,3]`,
	}
	for _, c := range cases {
		if _, ok := ParseLine([]byte(c)); ok {
			t.Errorf("ParseLine(%q) succeeded, want skip", c)
		}
	}
}

func TestParseLineUnknownTypePreserved(t *testing.T) {
	ev, ok := ParseLine([]byte(`{"type":"file-history-snapshot","timestamp":"2026-03-01T10:00:00Z"}`))
	if !ok {
		t.Fatal("unknown event types must still parse")
	}
	if ev.Type != "file-history-snapshot" {
		t.Errorf("Type = %q", ev.Type)
	}
	if ev.IsMessage() {
		t.Error("unknown type should not count as message")
	}
}

func TestParseLineStringContent(t *testing.T) {
	// User events often carry content as a plain string rather than blocks.
	ev, ok := ParseLine([]byte(`{"type":"user","timestamp":"2026-03-01T10:00:00Z","message":{"role":"user","content":"please fix the bug"}}`))
	if !ok {
		t.Fatal("string-content message must parse")
	}
	if !ev.IsMessage() {
		t.Error("user event should count as message")
	}
	if len(ev.Blocks()) != 0 {
		t.Errorf("string content yields no blocks, got %d", len(ev.Blocks()))
	}
}

func TestParseLineBadTimestamp(t *testing.T) {
	ev, ok := ParseLine([]byte(`{"type":"user","timestamp":"yesterday","message":{"role":"user","content":"x"}}`))
	if !ok {
		t.Fatal("bad timestamp should not reject the event")
	}
	if !ev.Time.IsZero() {
		t.Errorf("Time = %v, want zero", ev.Time)
	}
}

func TestContentBlockKinds(t *testing.T) {
	line := []byte(`{"type":"assistant","timestamp":"2026-03-01T10:00:00Z","message":{"role":"assistant","content":[` +
		`{"type":"text","text":"thinking"},` +
		`{"type":"tool_use","id":"toolu_01","name":"Read","input":{"file_path":"/tmp/a.go"}},` +
		`{"type":"tool_result","tool_use_id":"toolu_00","is_error":true}]}}`)

	ev, ok := ParseLine(line)
	if !ok {
		t.Fatal("expected valid event")
	}
	blocks := ev.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	if blocks[0].Kind != BlockOther {
		t.Errorf("block 0 kind = %v", blocks[0].Kind)
	}
	if blocks[1].Kind != BlockToolUse || blocks[1].ID != "toolu_01" || blocks[1].Name != "Read" {
		t.Errorf("block 1 = %+v", blocks[1])
	}
	if blocks[2].Kind != BlockToolResult || blocks[2].ToolUseID != "toolu_00" || !blocks[2].IsError {
		t.Errorf("block 2 = %+v", blocks[2])
	}
}
