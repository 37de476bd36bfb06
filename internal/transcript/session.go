package transcript

import (
	"bufio"
	"os"
	"sort"
	"time"
)

// TokenTotals accumulates usage reported on assistant messages.
type TokenTotals struct {
	Input         int64
	Output        int64
	CacheCreation int64
	CacheRead     int64
}

// ToolCount pairs a tool name with its call count for breakdowns.
type ToolCount struct {
	Name    string
	Count   int
	Percent float64
}

// AgentBreakdown summarizes agent calls for one subagent type.
type AgentBreakdown struct {
	SubagentType string
	Count        int
	MeanDuration time.Duration
}

// Session is the aggregate over one transcript file.
type Session struct {
	ID        string
	FilePath  string
	Project   string
	Cwd       string
	GitBranch string
	Model     string

	Start time.Time
	End   time.Time

	Messages int
	Tools    []*ToolCall // every tool_use in order, Task included
	Agents   []*AgentCall
	Errors   int

	Todo    TodoSnapshot
	HasTodo bool

	Tokens TokenTotals
}

// Duration is End-Start, or 0 when either timestamp is unknown.
func (s *Session) Duration() time.Duration {
	if s.Start.IsZero() || s.End.IsZero() {
		return 0
	}
	d := s.End.Sub(s.Start)
	if d < 0 {
		return 0
	}
	return d
}

// ToolBreakdown groups tool calls by name with counts and percentages,
// sorted by count descending.
func (s *Session) ToolBreakdown() []ToolCount {
	counts := make(map[string]int)
	for _, tc := range s.Tools {
		counts[tc.Name]++
	}

	out := make([]ToolCount, 0, len(counts))
	for name, n := range counts {
		pct := 0.0
		if len(s.Tools) > 0 {
			pct = float64(n) / float64(len(s.Tools)) * 100
		}
		out = append(out, ToolCount{Name: name, Count: n, Percent: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AgentBreakdowns groups agent calls by subagent type with mean durations
// over the completed calls, sorted by count descending.
func (s *Session) AgentBreakdowns() []AgentBreakdown {
	type acc struct {
		count int
		done  int
		total time.Duration
	}
	byType := make(map[string]*acc)
	for _, ac := range s.Agents {
		a, ok := byType[ac.SubagentType]
		if !ok {
			a = &acc{}
			byType[ac.SubagentType] = a
		}
		a.count++
		if d := ac.Duration(); d > 0 {
			a.done++
			a.total += d
		}
	}

	out := make([]AgentBreakdown, 0, len(byType))
	for st, a := range byType {
		b := AgentBreakdown{SubagentType: st, Count: a.count}
		if a.done > 0 {
			b.MeanDuration = a.total / time.Duration(a.done)
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SubagentType < out[j].SubagentType
	})
	return out
}

// Aggregator folds correlated events into a Session. One instance per
// transcript file; not safe for concurrent use.
type Aggregator struct {
	corr    *Correlator
	session *Session
}

// NewAggregator returns an aggregator for the given file path.
func NewAggregator(path string) *Aggregator {
	return &Aggregator{
		corr:    NewCorrelator(),
		session: &Session{FilePath: path},
	}
}

// Add folds one event into the session and returns the correlator updates
// it produced (used by the live path; the batch path ignores them).
func (a *Aggregator) Add(ev Event) []Update {
	s := a.session

	if s.ID == "" && ev.SessionID != "" {
		s.ID = ev.SessionID
	}
	if s.Cwd == "" && ev.Cwd != "" {
		s.Cwd = ev.Cwd
	}
	if s.GitBranch == "" && ev.GitBranch != "" {
		s.GitBranch = ev.GitBranch
	}
	if ev.Message != nil && s.Model == "" && ev.Message.Model != "" {
		s.Model = ev.Message.Model
	}

	if !ev.Time.IsZero() {
		if s.Start.IsZero() {
			s.Start = ev.Time
		}
		if ev.Time.After(s.End) {
			s.End = ev.Time
		}
	}

	if ev.IsMessage() {
		s.Messages++
	}
	if ev.Message != nil && ev.Message.Usage != nil {
		u := ev.Message.Usage
		s.Tokens.Input += u.InputTokens
		s.Tokens.Output += u.OutputTokens
		s.Tokens.CacheCreation += u.CacheCreationInputTokens
		s.Tokens.CacheRead += u.CacheReadInputTokens
	}

	updates := a.corr.Feed(ev)
	for _, u := range updates {
		switch {
		case u.Agent != nil && !u.Finished:
			s.Agents = append(s.Agents, u.Agent)
			s.Tools = append(s.Tools, &u.Agent.ToolCall)
		case u.Tool != nil && !u.Finished:
			s.Tools = append(s.Tools, u.Tool)
		case u.Finished && (u.Tool != nil && u.Tool.IsError || u.Agent != nil && u.Agent.IsError):
			s.Errors++
		}
	}

	if todo, ok := a.corr.Todo(); ok {
		s.Todo = todo
		s.HasTodo = true
	}

	return updates
}

// Session returns the aggregate built so far. The caller owns the result;
// the aggregator keeps mutating it as more events arrive.
func (a *Aggregator) Session() *Session {
	return a.session
}

// Reset discards all state, for reuse after file truncation.
func (a *Aggregator) Reset() {
	path := a.session.FilePath
	a.corr = NewCorrelator()
	a.session = &Session{FilePath: path}
}

// Scanner buffer sizing: transcript lines routinely exceed bufio's default
// 64KB cap (large tool results), so give the scanner room.
const (
	scanBufInitial = 256 * 1024
	scanBufMax     = 4 * 1024 * 1024
)

// ParseFile reads a whole transcript and produces its Session.
// Malformed lines are skipped; only an unreadable file is an error.
func ParseFile(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	agg := NewAggregator(path)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, scanBufInitial), scanBufMax)
	for scanner.Scan() {
		ev, ok := ParseLine(scanner.Bytes())
		if !ok {
			continue
		}
		agg.Add(ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return agg.Session(), nil
}
