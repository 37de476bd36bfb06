package transcript

import "time"

// Default monitor caps.
const (
	DefaultToolWindow  = 20
	DefaultAgentWindow = 10
)

// DisplayLine is one renderable live event. The monitor performs no I/O;
// the caller owns the polling cadence and terminal writes.
type DisplayLine struct {
	Time     time.Time
	Category string // tool name, or subagent type for agent calls
	Target   string
	Agent    bool
	Done     bool
	IsError  bool
}

// Monitor is a bounded rolling view over the correlated event stream:
// the last N tool calls and last M agent calls, evicted FIFO by arrival.
// Memory stays bounded no matter how long the session runs.
type Monitor struct {
	agg *Aggregator

	toolCap  int
	agentCap int
	tools    []*ToolCall
	agents   []*AgentCall
}

// NewMonitor returns a monitor over the given transcript path with the
// given window caps; non-positive caps fall back to the defaults.
func NewMonitor(path string, toolCap, agentCap int) *Monitor {
	if toolCap <= 0 {
		toolCap = DefaultToolWindow
	}
	if agentCap <= 0 {
		agentCap = DefaultAgentWindow
	}
	return &Monitor{
		agg:      NewAggregator(path),
		toolCap:  toolCap,
		agentCap: agentCap,
	}
}

// Feed parses and folds one raw line, returning a display line per tool
// or agent transition it produced.
func (m *Monitor) Feed(line []byte) []DisplayLine {
	ev, ok := ParseLine(line)
	if !ok {
		return nil
	}

	var out []DisplayLine
	for _, u := range m.agg.Add(ev) {
		switch {
		case u.Agent != nil:
			if !u.Finished {
				m.agents = append(m.agents, u.Agent)
				if len(m.agents) > m.agentCap {
					m.agents = m.agents[1:]
				}
			}
			out = append(out, DisplayLine{
				Time:     ev.Time,
				Category: u.Agent.SubagentType,
				Target:   u.Agent.Target,
				Agent:    true,
				Done:     u.Finished,
				IsError:  u.Agent.IsError,
			})
		case u.Tool != nil:
			if !u.Finished {
				m.tools = append(m.tools, u.Tool)
				if len(m.tools) > m.toolCap {
					m.tools = m.tools[1:]
				}
			}
			out = append(out, DisplayLine{
				Time:     ev.Time,
				Category: u.Tool.Name,
				Target:   u.Tool.Target,
				Done:     u.Finished,
				IsError:  u.Tool.IsError,
			})
		}
	}
	return out
}

// Reset clears all rolling state after a file truncation (new session).
func (m *Monitor) Reset() {
	m.agg.Reset()
	m.tools = nil
	m.agents = nil
}

// RecentTools returns the retained tool calls, oldest first.
func (m *Monitor) RecentTools() []*ToolCall {
	return m.tools
}

// RecentAgents returns the retained agent calls, oldest first.
func (m *Monitor) RecentAgents() []*AgentCall {
	return m.agents
}

// Session exposes the running aggregate for header/summary rendering.
func (m *Monitor) Session() *Session {
	return m.agg.Session()
}
