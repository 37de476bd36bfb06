package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"agentctl/internal/cli"
	"agentctl/internal/profile"
	"agentctl/internal/stats"
	"agentctl/internal/statusline"
	"agentctl/internal/store"
)

var (
	flagAnalyticsDays int
	flagAnalyticsCost bool
	flagAnalyticsAll  bool
	flagAnalyticsJSON bool
)

// Per-million-token prices, matched by substring against the model name.
// Output tokens are not tracked in the stats cache, so cost output
// estimates them at outputRatio times input.
var modelPricing = []struct {
	pattern   string
	inputUSD  float64
	outputUSD float64
}{
	{"claude-sonnet-4-5", 3.0, 15.0},
	{"claude-opus-4-5", 15.0, 75.0},
	{"claude-haiku-4-5", 0.80, 4.0},
	{"claude-haiku-3-5", 0.25, 1.25},
}

const outputRatio = 3.0

var analyticsCmd = &cobra.Command{
	Use:   "analytics [profile]",
	Short: "Aggregate usage across all sessions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalytics,
}

func init() {
	analyticsCmd.Flags().IntVarP(&flagAnalyticsDays, "days", "n", 7, "Days of history to show")
	analyticsCmd.Flags().BoolVar(&flagAnalyticsCost, "cost", false, "Show an estimated spend breakdown instead")
	analyticsCmd.Flags().BoolVar(&flagAnalyticsAll, "all", false, "Summarize every profile")
	analyticsCmd.Flags().BoolVar(&flagAnalyticsJSON, "json", false, "Emit JSON instead of tables")
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if flagAnalyticsAll {
		return printAllProfiles(st)
	}

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	name, err := resolveProfileName(st, arg)
	if err != nil {
		return err
	}

	if flagAnalyticsCost {
		return printCostEstimate(st.Dir(name), name)
	}

	summaries, err := loadSummaries(st, name)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Printf("No sessions recorded for profile %q yet.\n", name)
		return nil
	}

	if flagAnalyticsJSON {
		return printJSON(analyticsJSON(name, summaries))
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("Usage analytics — %s", name)))
	printTotals(summaries)
	printProjectTable(summaries)
	printToolTable(summaries)
	printHistory(st.Dir(name))
	return nil
}

func printTotals(summaries []store.Summary) {
	var messages, toolCalls, agentCalls, errors int
	var input, output, cacheRead int64
	for _, s := range summaries {
		messages += s.Messages
		toolCalls += s.ToolCalls
		agentCalls += s.AgentCalls
		errors += s.Errors
		input += s.InputTokens
		output += s.OutputTokens
		cacheRead += s.CacheRead
	}

	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Sessions", cli.FormatNumber(int64(len(summaries)))},
		{"Messages", cli.FormatNumber(int64(messages))},
		{"Tool calls", cli.FormatNumber(int64(toolCalls))},
		{"Agent calls", cli.FormatNumber(int64(agentCalls))},
		{"Tool errors", cli.FormatNumber(int64(errors))},
		{"Input tokens", cli.FormatTokens(input)},
		{"Output tokens", cli.FormatTokens(output)},
		{"Cache read", cli.FormatTokens(cacheRead)},
	}))
}

func printProjectTable(summaries []store.Summary) {
	type acc struct {
		sessions int
		tools    int
		tokens   int64
	}
	byProject := make(map[string]*acc)
	for _, s := range summaries {
		a, ok := byProject[s.Project]
		if !ok {
			a = &acc{}
			byProject[s.Project] = a
		}
		a.sessions++
		a.tools += s.ToolCalls
		a.tokens += s.InputTokens + s.OutputTokens
	}

	names := make([]string, 0, len(byProject))
	for p := range byProject {
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool {
		return byProject[names[i]].sessions > byProject[names[j]].sessions
	})

	t := cli.Table{Title: "Projects", Headers: []string{"Project", "Sessions", "Tool calls", "Tokens"}}
	for _, p := range names {
		a := byProject[p]
		t.Rows = append(t.Rows, []string{
			p,
			cli.FormatNumber(int64(a.sessions)),
			cli.FormatNumber(int64(a.tools)),
			cli.FormatTokens(a.tokens),
		})
	}
	fmt.Print(cli.RenderTable(t))
}

func printToolTable(summaries []store.Summary) {
	counts := make(map[string]int)
	total := 0
	for _, s := range summaries {
		for tool, n := range s.ToolCounts {
			counts[tool] += n
			total += n
		}
	}
	if total == 0 {
		return
	}

	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	t := cli.Table{Title: "Tools", Headers: []string{"Tool", "Calls", "Share"}}
	for _, n := range names {
		t.Rows = append(t.Rows, []string{
			n,
			cli.FormatNumber(int64(counts[n])),
			cli.FormatPercent(float64(counts[n]) / float64(total) * 100),
		})
	}
	fmt.Print(cli.RenderTable(t))
}

type analyticsTotalsJSON struct {
	Sessions     int   `json:"sessions"`
	Messages     int   `json:"messages"`
	ToolCalls    int   `json:"tool_calls"`
	AgentCalls   int   `json:"agent_calls"`
	Errors       int   `json:"errors"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type analyticsOutputJSON struct {
	Profile  string              `json:"profile"`
	Totals   analyticsTotalsJSON `json:"totals"`
	Sessions []sessionJSON       `json:"sessions"`
}

func analyticsJSON(name string, summaries []store.Summary) analyticsOutputJSON {
	out := analyticsOutputJSON{
		Profile:  name,
		Sessions: sessionListJSON(summaries),
	}
	out.Totals.Sessions = len(summaries)
	for _, s := range summaries {
		out.Totals.Messages += s.Messages
		out.Totals.ToolCalls += s.ToolCalls
		out.Totals.AgentCalls += s.AgentCalls
		out.Totals.Errors += s.Errors
		out.Totals.InputTokens += s.InputTokens
		out.Totals.OutputTokens += s.OutputTokens
	}
	return out
}

// printAllProfiles summarizes recent activity per profile from each
// profile's stats cache, skipping profiles without one.
func printAllProfiles(st *profile.Store) error {
	names, err := st.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No profiles. Create one with: agentctl profile add <name> --tool <claude|codex>")
		return nil
	}

	type profileRow struct {
		Name       string `json:"name"`
		Tool       string `json:"tool"`
		Messages   int64  `json:"messages_7d"`
		Tokens     int64  `json:"tokens_7d"`
		LastActive string `json:"last_active,omitempty"`
	}

	rows := make([]profileRow, 0, len(names))
	for _, name := range names {
		p, err := st.Load(name)
		if err != nil {
			continue
		}
		row := profileRow{Name: p.Name, Tool: string(p.Tool)}
		cache := stats.LoadForProfile(st.Dir(name))
		for _, day := range cache.RecentActivity(7) {
			row.Messages += day.MessageCount
		}
		row.Tokens = cache.TotalTokens(7)
		if p.LastUsed != nil {
			row.LastActive = cli.FormatAgo(*p.LastUsed)
		}
		rows = append(rows, row)
	}

	if flagAnalyticsJSON {
		return printJSON(rows)
	}

	t := cli.Table{Title: "Profiles (last 7 days)", Headers: []string{"Profile", "Tool", "Messages", "Tokens", "Last active"}}
	for _, r := range rows {
		last := r.LastActive
		if last == "" {
			last = "never"
		}
		t.Rows = append(t.Rows, []string{
			r.Name,
			r.Tool,
			cli.FormatNumber(r.Messages),
			cli.FormatTokens(r.Tokens),
			last,
		})
	}
	fmt.Print(cli.RenderTable(t))
	return nil
}

func printCostEstimate(profileDir, name string) error {
	cache := stats.LoadForProfile(profileDir)
	if cache.IsEmpty() {
		fmt.Println("No usage data found. Run the tool to generate statistics.")
		return nil
	}

	tokens := cache.TokensByModel(flagAnalyticsDays)
	type modelCost struct {
		Model       string  `json:"model"`
		InputTokens int64   `json:"input_tokens"`
		InputCost   float64 `json:"input_cost"`
		OutputCost  float64 `json:"output_cost_estimated"`
		TotalCost   float64 `json:"total_cost_estimated"`
	}
	rows := make([]modelCost, 0, len(tokens))
	var grand float64
	for model, input := range tokens {
		in, out := priceFor(model)
		inCost := float64(input) / 1e6 * in
		outCost := float64(input) * outputRatio / 1e6 * out
		rows = append(rows, modelCost{model, input, inCost, outCost, inCost + outCost})
		grand += inCost + outCost
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TotalCost > rows[j].TotalCost })

	if flagAnalyticsJSON {
		return printJSON(struct {
			Profile        string      `json:"profile"`
			Days           int         `json:"days"`
			Models         []modelCost `json:"models"`
			TotalEstimated float64     `json:"total_estimated"`
		}{name, flagAnalyticsDays, rows, grand})
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("Estimated costs — %s (last %d days)", name, flagAnalyticsDays)))
	t := cli.Table{Headers: []string{"Model", "Input tokens", "Input cost", "Output cost*", "Total est."}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			statusline.ShortModelName(r.Model),
			cli.FormatTokens(r.InputTokens),
			fmt.Sprintf("$%.2f", r.InputCost),
			fmt.Sprintf("~$%.2f", r.OutputCost),
			fmt.Sprintf("~$%.2f", r.TotalCost),
		})
	}
	t.Rows = append(t.Rows, []string{"", "", "", "Total:", fmt.Sprintf("~$%.2f", grand)})
	fmt.Print(cli.RenderTable(t))
	fmt.Println(cli.MutedStyle.Render(fmt.Sprintf("* output tokens are not recorded, estimated at %.0fx input", outputRatio)))
	return nil
}

func priceFor(model string) (input, output float64) {
	for _, p := range modelPricing {
		if strings.Contains(model, p.pattern) {
			return p.inputUSD, p.outputUSD
		}
	}
	return 3.0, 15.0
}

// printHistory shows precomputed daily activity when the tool keeps a
// stats cache; transcripts already rotated away still show up here.
func printHistory(profileDir string) {
	cache := stats.LoadForProfile(profileDir)
	if cache.IsEmpty() {
		return
	}

	recent := cache.RecentActivity(flagAnalyticsDays)
	if len(recent) == 0 {
		return
	}

	t := cli.Table{Title: "Daily activity", Headers: []string{"Date", "Sessions", "Messages", "Tool calls", "Tokens"}}
	for _, day := range recent {
		t.Rows = append(t.Rows, []string{
			day.Date,
			cli.FormatNumber(day.SessionCount),
			cli.FormatNumber(day.MessageCount),
			cli.FormatNumber(day.ToolCallCount),
			cli.FormatTokens(cache.TokensForDate(day.Date)),
		})
	}
	fmt.Print(cli.RenderTable(t))
}
