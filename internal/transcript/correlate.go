package transcript

import (
	"encoding/json"
	"time"
)

// Tool names with dedicated handling.
const (
	toolTask      = "Task"
	toolTodoWrite = "TodoWrite"
)

const bashTargetMax = 30

// ToolCall is one tool invocation derived from a tool_use block, completed
// by the matching tool_result if one ever arrives.
type ToolCall struct {
	ID      string
	Name    string
	Target  string
	Started time.Time
	Ended   time.Time
	Done    bool
	IsError bool
}

// Duration returns the call's wall time, or 0 while pending or when either
// endpoint had no timestamp.
func (tc ToolCall) Duration() time.Duration {
	if !tc.Done || tc.Started.IsZero() || tc.Ended.IsZero() {
		return 0
	}
	d := tc.Ended.Sub(tc.Started)
	if d < 0 {
		return 0
	}
	return d
}

// AgentCall is a Task tool invocation dispatching a sub-agent.
type AgentCall struct {
	ToolCall
	SubagentType string
}

// TodoItem is one entry of a TodoWrite payload.
type TodoItem struct {
	Content string `json:"content"`
	Status  string `json:"status"`
}

// TodoSnapshot is the current todo list. Each TodoWrite replaces it whole.
type TodoSnapshot struct {
	Items []TodoItem
}

// Completed returns the number of items with status "completed".
func (s TodoSnapshot) Completed() int {
	n := 0
	for _, it := range s.Items {
		if it.Status == "completed" {
			n++
		}
	}
	return n
}

// Update is emitted by the correlator for each call transition.
type Update struct {
	Tool     *ToolCall  // set on every transition; aliases Agent's embedded call for Task
	Agent    *AgentCall // additionally set when the call dispatches a sub-agent
	Finished bool       // true when the update closes a pending call
}

// Correlator matches tool_use blocks to their tool_result by id, streaming
// one Update per transition. A reused id overwrites the pending entry
// (last-write-wins); the superseded call stays pending forever but remains
// counted. Orphan results are dropped.
type Correlator struct {
	pending map[string]*entry
	todo    TodoSnapshot
	hasTodo bool
}

type entry struct {
	tool  *ToolCall
	agent *AgentCall
}

// NewCorrelator returns an empty correlator.
func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[string]*entry)}
}

// Feed consumes one event and returns the updates it produced, in block
// order. Events without tool blocks yield nil.
func (c *Correlator) Feed(ev Event) []Update {
	var updates []Update

	for _, b := range ev.Blocks() {
		switch b.Kind {
		case BlockToolUse:
			updates = append(updates, c.startCall(b, ev.Time))
		case BlockToolResult:
			if u, ok := c.finishCall(b, ev.Time); ok {
				updates = append(updates, u)
			}
		case BlockOther:
			// ignored, never interpreted
		}
	}
	return updates
}

func (c *Correlator) startCall(b ContentBlock, ts time.Time) Update {
	call := ToolCall{
		ID:      b.ID,
		Name:    b.Name,
		Target:  ExtractTarget(b.Name, b.Input),
		Started: ts,
	}

	if b.Name == toolTodoWrite {
		c.replaceTodo(b.Input)
	}

	if b.Name == toolTask {
		ac := &AgentCall{ToolCall: call, SubagentType: call.Target}
		c.pending[b.ID] = &entry{agent: ac}
		return Update{Tool: &ac.ToolCall, Agent: ac}
	}

	tc := call
	c.pending[b.ID] = &entry{tool: &tc}
	return Update{Tool: &tc}
}

func (c *Correlator) finishCall(b ContentBlock, ts time.Time) (Update, bool) {
	e, ok := c.pending[b.ToolUseID]
	if !ok {
		return Update{}, false // orphan result, tolerated
	}
	delete(c.pending, b.ToolUseID)

	if e.agent != nil {
		e.agent.Ended = ts
		e.agent.Done = true
		e.agent.IsError = b.IsError
		return Update{Tool: &e.agent.ToolCall, Agent: e.agent, Finished: true}, true
	}

	e.tool.Ended = ts
	e.tool.Done = true
	e.tool.IsError = b.IsError
	return Update{Tool: e.tool, Finished: true}, true
}

func (c *Correlator) replaceTodo(input json.RawMessage) {
	var payload struct {
		Todos []TodoItem `json:"todos"`
	}
	if err := json.Unmarshal(input, &payload); err != nil {
		return
	}
	c.todo = TodoSnapshot{Items: payload.Todos}
	c.hasTodo = true
}

// Todo returns the latest todo snapshot and whether one was ever observed.
func (c *Correlator) Todo() (TodoSnapshot, bool) {
	return c.todo, c.hasTodo
}

// PendingCount returns the number of calls still awaiting a result.
func (c *Correlator) PendingCount() int {
	return len(c.pending)
}

// ExtractTarget derives a short human-readable target for a tool call.
// The mapping is fixed per tool; unknown tools have no target.
func ExtractTarget(name string, input json.RawMessage) string {
	if len(input) == 0 {
		if name == toolTask {
			return "unknown"
		}
		return ""
	}

	var in struct {
		Command      string `json:"command"`
		FilePath     string `json:"file_path"`
		Path         string `json:"path"`
		Pattern      string `json:"pattern"`
		SubagentType string `json:"subagent_type"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		if name == toolTask {
			return "unknown"
		}
		return ""
	}

	switch name {
	case "Bash":
		return Truncate(in.Command, bashTargetMax)
	case "Read", "Write", "Edit":
		if in.FilePath != "" {
			return in.FilePath
		}
		return in.Path
	case "Glob", "Grep":
		return in.Pattern
	case toolTask:
		if in.SubagentType == "" {
			return "unknown"
		}
		return in.SubagentType
	}
	return ""
}

// Truncate shortens s to at most max runes, marking the cut with an
// ellipsis so the result is still exactly max runes long.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
