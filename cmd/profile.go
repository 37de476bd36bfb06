package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"agentctl/internal/cli"
	"agentctl/internal/config"
	"agentctl/internal/profile"
	"agentctl/internal/tool"
)

var flagTool string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage tool profiles",
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAdd,
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List profiles",
	Args:    cobra.NoArgs,
	RunE:    runProfileList,
}

var profileRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a profile and all its data",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileRemove,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileShow,
}

var flagYes bool

func init() {
	profileAddCmd.Flags().StringVarP(&flagTool, "tool", "t", "", "Tool type: claude or codex")
	profileRemoveCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")

	profileCmd.AddCommand(profileAddCmd, profileListCmd, profileRemoveCmd, profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := profile.ValidateName(name); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	if st.Exists(name) {
		return fmt.Errorf("profile %q already exists", name)
	}

	toolName := flagTool
	if toolName == "" {
		err := huh.NewSelect[string]().
			Title("Which tool does this profile run?").
			Options(
				huh.NewOption("Claude Code", "claude"),
				huh.NewOption("Codex", "codex"),
			).
			Value(&toolName).
			Run()
		if err != nil {
			return err
		}
	}

	toolType, err := profile.ParseToolType(toolName)
	if err != nil {
		return err
	}

	p := profile.New(name, toolType)
	if err := st.Save(p); err != nil {
		return err
	}

	if toolType == profile.ToolCodex {
		if err := tool.SeedCodexConfig(st.Dir(name), tool.CodexConfig{}); err != nil {
			return err
		}
	}

	fmt.Printf("Created profile %q (%s)\n", p.Name, p.Tool)
	fmt.Printf("Run it with: agentctl run %s\n", p.Name)
	return nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	names, err := st.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No profiles. Create one with: agentctl profile add <name> --tool <claude|codex>")
		return nil
	}

	def, _ := config.DefaultProfile(st.Root())

	t := cli.Table{Headers: []string{"Name", "Tool", "Created", "Last used", "Auth"}}
	for _, name := range names {
		p, err := st.Load(name)
		if err != nil {
			continue
		}

		display := p.Name
		if name == def {
			display += " *"
		}
		lastUsed := "never"
		if p.LastUsed != nil {
			lastUsed = cli.FormatAgo(*p.LastUsed)
		}
		auth := "no"
		if tool.IsAuthenticated(st, p) {
			auth = "yes"
		}
		t.Rows = append(t.Rows, []string{display, string(p.Tool), cli.FormatTime(p.CreatedAt), lastUsed, auth})
	}

	fmt.Print(cli.RenderTable(t))
	if def != "" {
		fmt.Println(cli.MutedStyle.Render("  * default profile"))
	}
	return nil
}

func runProfileRemove(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	name, err := resolveProfileName(st, args[0])
	if err != nil {
		return err
	}

	if !flagYes {
		var confirmed bool
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete profile %q and all its data?", name)).
			Description("This removes credentials, settings and transcripts.").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := st.Delete(name); err != nil {
		return err
	}

	// Drop stale default/last-used references.
	g, err := config.Load(st.Root())
	if err == nil {
		changed := false
		if g.DefaultProfile == name {
			g.DefaultProfile = ""
			changed = true
		}
		if g.LastUsedProfile == name {
			g.LastUsedProfile = ""
			changed = true
		}
		if changed {
			_ = config.Save(st.Root(), g)
		}
	}

	fmt.Printf("Deleted profile %q\n", name)
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	name, err := resolveProfileName(st, arg)
	if err != nil {
		return err
	}

	p, err := st.Load(name)
	if err != nil {
		return err
	}

	lastUsed := "never"
	if p.LastUsed != nil {
		lastUsed = cli.FormatTime(*p.LastUsed)
	}
	auth := "not authenticated"
	if tool.IsAuthenticated(st, p) {
		auth = "authenticated"
	}

	pairs := [][2]string{
		{"Name", p.Name},
		{"Tool", string(p.Tool)},
		{"Directory", st.Dir(name)},
		{"Transcripts", st.TranscriptsDir(name)},
		{"Created", cli.FormatTime(p.CreatedAt)},
		{"Last used", lastUsed},
		{"Auth", auth},
	}
	if p.Tool == profile.ToolCodex {
		if cfg, err := tool.LoadCodexConfig(st.Dir(name)); err == nil {
			if cfg.Model != "" {
				pairs = append(pairs, [2]string{"Model", cfg.Model})
			}
			if cfg.ApprovalPolicy != "" {
				pairs = append(pairs, [2]string{"Approval policy", cfg.ApprovalPolicy})
			}
		}
	}

	fmt.Print(cli.RenderKeyValues(pairs))
	return nil
}
