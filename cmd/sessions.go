package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"agentctl/internal/cli"
	"agentctl/internal/store"
	"agentctl/internal/transcript"
)

var (
	flagProfile       string
	flagLimit         int
	flagSessionsToday bool
	flagSessionsJSON  bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions [session-id-prefix]",
	Short: "List recorded sessions, or show one in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().StringVarP(&flagProfile, "profile", "p", "", "Profile to inspect")
	sessionsCmd.Flags().IntVarP(&flagLimit, "limit", "n", 25, "Maximum sessions to list")
	sessionsCmd.Flags().BoolVar(&flagSessionsToday, "today", false, "Only sessions started today")
	sessionsCmd.Flags().BoolVar(&flagSessionsJSON, "json", false, "Emit JSON instead of a table")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	name, err := resolveProfileName(st, flagProfile)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return showSession(st.ProjectsDir(name), args[0])
	}

	summaries, err := loadSummaries(st, name)
	if err != nil {
		return err
	}
	if flagSessionsToday {
		summaries = filterToday(summaries)
	}
	if len(summaries) == 0 {
		fmt.Printf("No sessions recorded for profile %q yet.\n", name)
		return nil
	}

	shown := summaries
	if flagLimit > 0 && len(shown) > flagLimit {
		shown = shown[:flagLimit]
	}

	if flagSessionsJSON {
		return printJSON(sessionListJSON(shown))
	}

	t := cli.Table{
		Title:   fmt.Sprintf("Sessions (%d of %d)", len(shown), len(summaries)),
		Headers: []string{"Session", "Project", "Start", "Duration", "Msgs", "Tools", "Agents", "Errors", "Tokens"},
	}
	for _, s := range shown {
		t.Rows = append(t.Rows, []string{
			cli.ShortID(s.SessionID),
			s.Project,
			cli.FormatTime(s.StartTime),
			cli.FormatDuration(s.Duration()),
			strconv.Itoa(s.Messages),
			strconv.Itoa(s.ToolCalls),
			strconv.Itoa(s.AgentCalls),
			strconv.Itoa(s.Errors),
			cli.FormatTokens(s.InputTokens + s.OutputTokens),
		})
	}
	fmt.Print(cli.RenderTable(t))
	return nil
}

func filterToday(summaries []store.Summary) []store.Summary {
	now := time.Now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	out := summaries[:0]
	for _, s := range summaries {
		if !s.StartTime.Before(midnight) {
			out = append(out, s)
		}
	}
	return out
}

type sessionJSON struct {
	SessionID    string `json:"session_id"`
	Project      string `json:"project"`
	Start        string `json:"start,omitempty"`
	DurationSecs int64  `json:"duration_secs"`
	Messages     int    `json:"messages"`
	ToolCalls    int    `json:"tool_calls"`
	AgentCalls   int    `json:"agent_calls"`
	Errors       int    `json:"errors"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

func sessionListJSON(summaries []store.Summary) []sessionJSON {
	out := make([]sessionJSON, 0, len(summaries))
	for _, s := range summaries {
		j := sessionJSON{
			SessionID:    s.SessionID,
			Project:      s.Project,
			DurationSecs: int64(s.Duration().Seconds()),
			Messages:     s.Messages,
			ToolCalls:    s.ToolCalls,
			AgentCalls:   s.AgentCalls,
			Errors:       s.Errors,
			InputTokens:  s.InputTokens,
			OutputTokens: s.OutputTokens,
		}
		if !s.StartTime.IsZero() {
			j.Start = s.StartTime.UTC().Format(time.RFC3339)
		}
		out = append(out, j)
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func showSession(projectsDir, prefix string) error {
	files, err := transcript.ScanDir(projectsDir)
	if err != nil {
		return err
	}
	file, err := transcript.FindByPrefix(files, prefix)
	if err != nil {
		return err
	}

	s, err := transcript.ParseFile(file.Path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", file.Path, err)
	}
	s.Project = file.Project

	printSessionDetail(s)
	return nil
}

// printSessionDetail renders one parsed session: identity block, tool
// breakdown, agents and todo state.
func printSessionDetail(s *transcript.Session) {
	pairs := [][2]string{
		{"Session", s.ID},
		{"Project", s.Project},
		{"Model", s.Model},
		{"Branch", s.GitBranch},
		{"Started", cli.FormatTime(s.Start)},
		{"Duration", cli.FormatDuration(s.Duration())},
		{"Messages", cli.FormatNumber(int64(s.Messages))},
		{"Tool calls", cli.FormatNumber(int64(len(s.Tools)))},
		{"Errors", cli.FormatNumber(int64(s.Errors))},
		{"Tokens in/out", cli.FormatTokens(s.Tokens.Input) + " / " + cli.FormatTokens(s.Tokens.Output)},
		{"Cache read", cli.FormatTokens(s.Tokens.CacheRead)},
	}
	fmt.Print(cli.RenderKeyValues(pairs))

	if bd := s.ToolBreakdown(); len(bd) > 0 {
		t := cli.Table{Title: "Tools", Headers: []string{"Tool", "Calls", "Share"}}
		for _, tc := range bd {
			t.Rows = append(t.Rows, []string{
				tc.Name,
				cli.FormatNumber(int64(tc.Count)),
				cli.FormatPercent(tc.Percent),
			})
		}
		fmt.Print(cli.RenderTable(t))
	}

	if bd := s.AgentBreakdowns(); len(bd) > 0 {
		t := cli.Table{Title: "Agents", Headers: []string{"Type", "Calls", "Mean duration"}}
		for _, ab := range bd {
			t.Rows = append(t.Rows, []string{
				ab.SubagentType,
				cli.FormatNumber(int64(ab.Count)),
				cli.FormatDuration(ab.MeanDuration),
			})
		}
		fmt.Print(cli.RenderTable(t))
	}

	if s.HasTodo && len(s.Todo.Items) > 0 {
		fmt.Printf("  Todo: %d/%d done\n", s.Todo.Completed(), len(s.Todo.Items))
		for _, item := range s.Todo.Items {
			mark := "○"
			switch item.Status {
			case "completed":
				mark = cli.SuccessStyle.Render("●")
			case "in_progress":
				mark = cli.WarnStyle.Render("◐")
			}
			fmt.Printf("    %s %s\n", mark, item.Content)
		}
	}
}
