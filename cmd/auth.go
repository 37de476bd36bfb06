package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"agentctl/internal/cli"
	"agentctl/internal/tool"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage per-profile authentication",
}

var authLoginCmd = &cobra.Command{
	Use:   "login <profile>",
	Short: "Run the tool's sign-in flow inside the profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout <profile>",
	Short: "Remove the profile's stored credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status [profile]",
	Short: "Show authentication state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	name, err := resolveProfileName(st, args[0])
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

	info := tool.InfoFor(p.Tool)
	if len(info.AuthArgs) == 0 {
		// Claude authenticates on first run; just launch it.
		fmt.Printf("%s authenticates automatically on first run.\n", p.Tool)
		fmt.Println("Starting it now, complete authentication in the browser...")
	} else {
		fmt.Printf("Opening browser for %s authorization...\n", p.Tool)
	}

	launcher := tool.NewLauncher(st, Version)
	code, err := launcher.Run(cmd.Context(), p, info.AuthArgs, nil)
	if err != nil {
		return err
	}

	if code == 0 && tool.IsAuthenticated(st, p) {
		fmt.Println(cli.SuccessStyle.Render("✓") + " Authenticated successfully")
	} else {
		fmt.Println(cli.ErrorStyle.Render("✗") + " Authentication failed or was cancelled")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	name, err := resolveProfileName(st, args[0])
	if err != nil {
		return err
	}
	p, err := st.Load(name)
	if err != nil {
		return err
	}

	switch err := tool.Logout(st, p); {
	case errors.Is(err, tool.ErrNotAuthenticated):
		fmt.Printf("Profile %q is not authenticated\n", name)
	case err != nil:
		return err
	default:
		fmt.Printf("Logged out of %q\n", name)
	}
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		name, err := resolveProfileName(st, args[0])
		if err != nil {
			return err
		}
		p, err := st.Load(name)
		if err != nil {
			return err
		}
		fmt.Printf("Profile: %s\n  Tool: %s\n", p.Name, p.Tool)
		if tool.IsAuthenticated(st, p) {
			fmt.Printf("  Auth: %s authenticated\n", cli.SuccessStyle.Render("✓"))
			if p.LastUsed != nil {
				if days := int(time.Since(*p.LastUsed).Hours() / 24); days > 7 {
					fmt.Println(cli.WarnStyle.Render(fmt.Sprintf("  ⚠ Last used %d days ago, auth may need refresh", days)))
				}
			}
		} else {
			fmt.Printf("  Auth: %s not authenticated\n", cli.ErrorStyle.Render("✗"))
			fmt.Println(cli.MutedStyle.Render(fmt.Sprintf("  Run: agentctl auth login %s", name)))
		}
		return nil
	}

	names, err := st.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No profiles. Create one with: agentctl profile add <name> --tool <claude|codex>")
		return nil
	}

	fmt.Println("Auth status:")
	for _, name := range names {
		p, err := st.Load(name)
		if err != nil {
			fmt.Printf("  %s %s (corrupted)\n", cli.ErrorStyle.Render("✗"), name)
			continue
		}
		if tool.IsAuthenticated(st, p) {
			fmt.Printf("  %s %s [%s]: authenticated\n", cli.SuccessStyle.Render("✓"), p.Name, p.Tool)
		} else {
			fmt.Printf("  %s %s [%s]: not authenticated\n", cli.ErrorStyle.Render("✗"), p.Name, p.Tool)
		}
	}
	return nil
}
