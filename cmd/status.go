package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"agentctl/internal/cli"
	"agentctl/internal/config"
	"agentctl/internal/profile"
	"agentctl/internal/stats"
	"agentctl/internal/tool"
)

var statusCmd = &cobra.Command{
	Use:   "status [profile]",
	Short: "Show auth and usage state for profiles",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		name, err := resolveProfileName(st, args[0])
		if err != nil {
			return err
		}
		return showSingleStatus(st, name)
	}
	return showAllStatus(st)
}

func showSingleStatus(st *profile.Store, name string) error {
	p, err := st.Load(name)
	if err != nil {
		return err
	}
	g, err := config.Load(st.Root())
	if err != nil {
		return err
	}
	authenticated := tool.IsAuthenticated(st, p)

	pairs := [][2]string{
		{"Profile", p.Name},
	}
	switch name {
	case g.DefaultProfile:
		pairs = append(pairs, [2]string{"Status", "★ default profile"})
	case g.LastUsedProfile:
		pairs = append(pairs, [2]string{"Status", "→ last used"})
	}
	pairs = append(pairs, [2]string{"Tool", string(p.Tool)})
	if authenticated {
		pairs = append(pairs, [2]string{"Auth", cli.SuccessStyle.Render("✓ authenticated")})
	} else {
		pairs = append(pairs, [2]string{"Auth", cli.ErrorStyle.Render("✗ not authenticated")})
	}
	pairs = append(pairs, [2]string{"Created", cli.FormatTime(p.CreatedAt)})
	lastUsed := "never"
	if p.LastUsed != nil {
		lastUsed = cli.FormatAgo(*p.LastUsed)
	}
	pairs = append(pairs, [2]string{"Last used", lastUsed})

	sc := stats.LoadForProfile(st.Dir(name))
	if day, ok := sc.ActivityForDate(time.Now().Format("2006-01-02")); ok {
		pairs = append(pairs, [2]string{"Today", fmt.Sprintf("%s messages, %s tool calls",
			cli.FormatNumber(day.MessageCount), cli.FormatNumber(day.ToolCallCount))})
	}

	fmt.Print(cli.RenderKeyValues(pairs))

	if !authenticated {
		fmt.Println(cli.MutedStyle.Render(fmt.Sprintf("  Sign in by running: agentctl run %s", name)))
	}
	return nil
}

func showAllStatus(st *profile.Store) error {
	names, err := st.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No profiles. Create one with: agentctl profile add <name> --tool <claude|codex>")
		return nil
	}
	g, err := config.Load(st.Root())
	if err != nil {
		return err
	}

	t := cli.Table{Headers: []string{"Name", "Tool", "Auth", "Last used"}}
	for _, name := range names {
		p, err := st.Load(name)
		if err != nil {
			continue
		}

		display := p.Name
		switch name {
		case g.DefaultProfile:
			display += " (default)"
		case g.LastUsedProfile:
			display += " →"
		}
		auth := "✗"
		if tool.IsAuthenticated(st, p) {
			auth = "✓"
		}
		lastUsed := "never"
		if p.LastUsed != nil {
			lastUsed = cli.FormatAgo(*p.LastUsed)
		}
		t.Rows = append(t.Rows, []string{display, string(p.Tool), auth, lastUsed})
	}
	fmt.Print(cli.RenderTable(t))
	return nil
}
