// Package transcript parses and aggregates Claude Code JSONL session files.
package transcript

import (
	"bytes"
	"encoding/json"
	"time"
)

// BlockKind discriminates the content block variants we care about.
type BlockKind int

const (
	// BlockOther is any unrecognized block (text, thinking, images, ...).
	// Counted but never interpreted.
	BlockOther BlockKind = iota
	BlockToolUse
	BlockToolResult
)

// ContentBlock is one element of a message's content array.
// Exactly one variant is populated, selected by Kind.
type ContentBlock struct {
	Kind BlockKind

	// BlockToolUse fields
	ID    string
	Name  string
	Input json.RawMessage

	// BlockToolResult fields
	ToolUseID string
	IsError   bool
}

// UnmarshalJSON maps the open-ended block schema onto the closed variant.
// Unknown block types become BlockOther rather than errors.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type      string          `json:"type"`
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Input     json.RawMessage `json:"input"`
		ToolUseID string          `json:"tool_use_id"`
		IsError   *bool           `json:"is_error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Type {
	case "tool_use":
		b.Kind = BlockToolUse
		b.ID = raw.ID
		b.Name = raw.Name
		b.Input = raw.Input
	case "tool_result":
		b.Kind = BlockToolResult
		b.ToolUseID = raw.ToolUseID
		if raw.IsError != nil {
			b.IsError = *raw.IsError
		}
	default:
		b.Kind = BlockOther
	}
	return nil
}

// Message is the envelope carried by user/assistant entries.
type Message struct {
	Role    string         `json:"role"`
	Model   string         `json:"model"`
	Content []ContentBlock `json:"content"`
	Usage   *Usage         `json:"usage"`
}

// UnmarshalJSON tolerates content being either a block array or a plain
// string (user entries use both forms). String content yields no blocks.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Model   string          `json:"model"`
		Content json.RawMessage `json:"content"`
		Usage   *Usage          `json:"usage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Role = raw.Role
	m.Model = raw.Model
	m.Usage = raw.Usage

	if len(raw.Content) > 0 && raw.Content[0] == '[' {
		var blocks []ContentBlock
		if err := json.Unmarshal(raw.Content, &blocks); err == nil {
			m.Content = blocks
		}
	}
	return nil
}

// Usage holds token counts reported on assistant messages.
type Usage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

// Event is one parsed transcript line.
type Event struct {
	Type      string   `json:"type"`
	Timestamp string   `json:"timestamp"`
	SessionID string   `json:"sessionId"`
	Cwd       string   `json:"cwd"`
	GitBranch string   `json:"gitBranch"`
	Message   *Message `json:"message"`

	// Parsed from Timestamp; zero when absent or malformed.
	Time time.Time `json:"-"`
}

// ParseLine converts one raw transcript line into an Event.
// Empty lines, invalid JSON, and lines that are not a JSON object all
// return ok=false; the stream must never abort on a bad line because the
// file is written by an external process and partial writes happen.
func ParseLine(line []byte) (Event, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return Event{}, false
	}

	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, false
	}

	if ev.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, ev.Timestamp); err == nil {
			ev.Time = ts.UTC()
		}
	}
	return ev, true
}

// IsMessage reports whether the event counts toward the message total.
func (e Event) IsMessage() bool {
	return e.Type == "user" || e.Type == "assistant"
}

// Blocks returns the event's content blocks, or nil for non-message events.
func (e Event) Blocks() []ContentBlock {
	if e.Message == nil {
		return nil
	}
	return e.Message.Content
}
