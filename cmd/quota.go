package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"agentctl/internal/anthropic"
	"agentctl/internal/cli"
	"agentctl/internal/profile"
	"agentctl/internal/tool"
)

var flagQuotaJSON bool

var quotaCmd = &cobra.Command{
	Use:   "quota [profile]",
	Short: "Show Anthropic usage limits for a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQuota,
}

func init() {
	quotaCmd.Flags().BoolVar(&flagQuotaJSON, "json", false, "Emit JSON instead of bars")
	rootCmd.AddCommand(quotaCmd)
}

func runQuota(cmd *cobra.Command, args []string) error {
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
	if p.Tool != profile.ToolClaude {
		fmt.Printf("profile %q uses %s; usage limits are only available for claude profiles\n", name, p.Tool)
		return nil
	}

	if !tool.IsAuthenticated(st, p) {
		return fmt.Errorf("%w: run agentctl auth login %s first", tool.ErrNotAuthenticated, name)
	}

	credPath := filepath.Join(st.Dir(name), ".credentials.json")
	token, err := anthropic.ReadOAuthToken(credPath)
	if err != nil {
		return fmt.Errorf("no OAuth credentials for %q: run the tool once to sign in (%w)", name, err)
	}

	client := anthropic.NewClient("agentctl/" + Version)
	limits, err := client.FetchUsage(cmd.Context(), token)
	switch {
	case errors.Is(err, anthropic.ErrUnauthorized):
		return fmt.Errorf("token for %q was rejected: sign in again", name)
	case errors.Is(err, anthropic.ErrRateLimited):
		return errors.New("usage API is rate limiting requests, try again shortly")
	case err != nil:
		return err
	}

	if flagQuotaJSON {
		return printJSON(struct {
			Profile string                 `json:"profile"`
			Limits  *anthropic.UsageLimits `json:"limits"`
		}{name, limits})
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("Usage Limits: %s", name)))
	fmt.Println()
	printUsageWindow("5-hour window", limits.FiveHour)
	printUsageWindow("7-day window", limits.SevenDay)
	return nil
}

func printUsageWindow(label string, w *anthropic.UsageWindow) {
	if w == nil {
		fmt.Printf("%-14s no data\n", label)
		return
	}
	pct := w.Utilization
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	bar := usageBar(pct, 20)
	line := fmt.Sprintf("%-14s %s %5.1f%%", label, bar, pct)
	if w.ResetsAt != "" {
		line += "  resets " + formatReset(w.ResetsAt)
	}
	fmt.Println(line)
}

func usageBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatReset renders an RFC 3339 reset timestamp in local time, falling
// back to the raw string when the API sends something else.
func formatReset(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("2006-01-02 15:04")
}
