package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agentctl/internal/config"
	"agentctl/internal/tool"
)

var runCmd = &cobra.Command{
	Use:   "run [profile] [-- tool args...]",
	Short: "Launch a profile's tool",
	Long: `Launch the profile's tool with its config directory pointed inside the
profile, so auth and settings stay isolated. Arguments after -- pass
through to the tool unchanged.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	// First arg names the profile when it matches one; everything else
	// passes through to the tool.
	profileArg := ""
	toolArgs := args
	if len(args) > 0 && st.Exists(args[0]) {
		profileArg = args[0]
		toolArgs = args[1:]
	}

	name, err := resolveProfileName(st, profileArg)
	if err != nil {
		return err
	}
	p, err := st.Load(name)
	if err != nil {
		return err
	}

	if err := tool.CheckAvailable(p.Tool); err != nil {
		return err
	}
	debugf("launching %s with %s=%s", p.Tool.Command(), tool.InfoFor(p.Tool).EnvVar, st.Dir(name))

	launcher := tool.NewLauncher(st, Version)
	launcher.SetTerminalTitle(p)

	code, err := launcher.Run(cmd.Context(), p, toolArgs, nil)
	if err != nil {
		return err
	}

	if err := st.Touch(name); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to update profile: %v\n", err)
	}
	if err := config.SetLastUsed(st.Root(), name); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record last used profile: %v\n", err)
	}

	if code != 0 {
		os.Exit(code)
	}
	return nil
}
