package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agentctl/internal/pipeline"
	"agentctl/internal/store"
	"agentctl/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard [profile]",
	Aliases: []string{"tui"},
	Short:   "Interactive session browser",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
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

	var cache *store.Cache
	if !flagNoCache {
		cache, err = store.Open(pipeline.CachePath(name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: session cache unavailable: %v\n", err)
			cache = nil
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	return tui.Run(tui.NewApp(name, st.ProjectsDir(name), cache))
}
