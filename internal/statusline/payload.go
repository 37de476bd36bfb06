// Package statusline implements the Claude Code statusline protocol: a
// JSON payload on stdin describing the live session, one rendered line on
// stdout.
package statusline

import (
	"encoding/json"
	"strings"
)

// Payload is the statusline request Claude Code writes to stdin. Every
// field is optional; hosts ship partial payloads routinely.
type Payload struct {
	TranscriptPath string         `json:"transcript_path"`
	Cwd            string         `json:"cwd"`
	Model          *ModelInfo     `json:"model"`
	ContextWindow  *ContextWindow `json:"context_window"`
}

// ModelInfo names the active model.
type ModelInfo struct {
	Name string `json:"name"`
}

// ContextWindow reports context capacity and current consumption.
type ContextWindow struct {
	Size         int64       `json:"context_window_size"`
	CurrentUsage *TokenUsage `json:"current_usage"`
}

// TokenUsage is the token consumption snapshot inside a context window.
// Missing fields default to zero.
type TokenUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

// Total sums all counted token categories.
func (u TokenUsage) Total() int64 {
	return u.InputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens
}

// ParsePayload decodes a statusline request.
func ParsePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// ShortModelName compresses a full model id for display:
// "claude-sonnet-4-5-20250929" becomes "sonnet-4-5". Unrecognized names
// pass through unchanged.
func ShortModelName(name string) string {
	s := strings.ReplaceAll(name, "claude-", "")
	s = strings.ReplaceAll(s, "-20", " ")
	if first, _, found := strings.Cut(s, " "); found && first != "" {
		return first
	}
	if s != "" {
		return s
	}
	return name
}
