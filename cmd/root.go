// Package cmd wires the agentctl command tree.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"agentctl/internal/config"
	"agentctl/internal/profile"
)

// Version is stamped by the build; the default marks dev builds.
var Version = "0.3.0-dev"

var (
	flagNoCache bool
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "agentctl",
	Short: "Profile manager for AI coding tools",
	Long: `agentctl keeps multiple Claude Code and Codex accounts isolated in
per-profile directories, and reads their session transcripts for live
monitoring, session history and usage analytics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the session cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug output on stderr")
	rootCmd.Version = Version
}

// debugf writes a labeled debug line to stderr when --verbose is set or
// AGENTCTL_DEBUG is non-empty.
func debugf(format string, args ...any) {
	if !flagVerbose && os.Getenv("AGENTCTL_DEBUG") == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
}

// openStore resolves the config root and returns the profile store.
func openStore() (*profile.Store, error) {
	root, err := profile.DefaultRoot()
	if err != nil {
		return nil, err
	}
	return profile.NewStore(root), nil
}

// resolveProfileName picks the profile to operate on: the explicit
// argument if given, else the configured default, else an error listing
// what exists.
func resolveProfileName(store *profile.Store, arg string) (string, error) {
	if arg != "" {
		name := strings.ToLower(arg)
		if store.Exists(name) {
			return name, nil
		}
		names, _ := store.List()
		if similar, ok := profile.FindSimilar(arg, names); ok {
			return "", fmt.Errorf("profile %q not found, did you mean %q?", arg, similar)
		}
		return "", fmt.Errorf("profile %q not found", arg)
	}

	def, err := config.DefaultProfile(store.Root())
	if err != nil {
		return "", err
	}
	if def != "" && store.Exists(def) {
		return def, nil
	}

	names, err := store.List()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no profiles found, create one with: agentctl profile add <name> --tool <claude|codex>")
	}
	return "", fmt.Errorf("no default profile set, specify one of: %s", strings.Join(names, ", "))
}

func progressFn() func(current, total int) {
	if flagQuiet {
		return nil
	}
	return func(current, total int) {
		if current%100 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
			if current == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}
}
