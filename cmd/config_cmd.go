package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agentctl/internal/cli"
	"agentctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change global settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current global configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		cfg, err := config.Load(st.Root())
		if err != nil {
			return err
		}
		pairs := [][2]string{
			{"Config root", st.Root()},
			{"Default profile", orUnset(cfg.DefaultProfile)},
			{"Last used profile", orUnset(cfg.LastUsedProfile)},
		}
		fmt.Println(cli.RenderKeyValues(pairs))
		return nil
	},
}

var configSetDefaultCmd = &cobra.Command{
	Use:   "set-default <profile>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		name, err := resolveProfileName(st, args[0])
		if err != nil {
			return err
		}
		cfg, err := config.Load(st.Root())
		if err != nil {
			return err
		}
		cfg.DefaultProfile = name
		if err := config.Save(st.Root(), cfg); err != nil {
			return err
		}
		fmt.Printf("default profile set to %q\n", name)
		return nil
	},
}

var configClearDefaultCmd = &cobra.Command{
	Use:   "clear-default",
	Short: "Unset the default profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		cfg, err := config.Load(st.Root())
		if err != nil {
			return err
		}
		cfg.DefaultProfile = ""
		if err := config.Save(st.Root(), cfg); err != nil {
			return err
		}
		fmt.Println("default profile cleared")
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the global config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		fmt.Println(config.Path(st.Root()))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetDefaultCmd, configClearDefaultCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
