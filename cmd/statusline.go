package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"agentctl/internal/statusline"
	"agentctl/internal/tool"
	"agentctl/internal/transcript"
)

// Stdin payload cap; hosts send a few hundred bytes.
const statuslineMaxInput = 1 << 20

var statuslineCmd = &cobra.Command{
	Use:    "statusline",
	Short:  "Render a statusline from the host payload on stdin",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runStatusline,
}

func init() {
	rootCmd.AddCommand(statuslineCmd)
}

func runStatusline(cmd *cobra.Command, args []string) error {
	input, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), statuslineMaxInput))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(input))) == 0 {
		fmt.Println("Initializing...")
		return nil
	}

	payload, err := statusline.ParsePayload(input)
	if err != nil {
		// A malformed payload must not break the host's statusline.
		fmt.Println("Initializing...")
		return nil
	}

	home, _ := os.UserHomeDir()
	line := statusline.Line{
		Profile:        os.Getenv(tool.EnvProfile),
		Cwd:            payload.Cwd,
		ContextPercent: statusline.ContextPercent(payload.ContextWindow),
		GitBranch:      gitBranch(payload.Cwd),
		ConfigCount:    statusline.CountConfigs(home, payload.Cwd),
	}
	if payload.Model != nil {
		line.Model = statusline.ShortModelName(payload.Model.Name)
	}
	if payload.TranscriptPath != "" {
		if s, err := transcript.ParseFile(payload.TranscriptPath); err == nil {
			line.Session = s
		}
	}

	fmt.Println(statusline.Render(line))
	return nil
}

// gitBranch shells out once per render; statuslines refresh rarely enough
// that spawning git is fine.
func gitBranch(cwd string) string {
	if cwd == "" {
		return ""
	}
	out, err := exec.Command("git", "-C", cwd, "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return ""
	}
	branch := strings.TrimSpace(string(out))
	if branch == "" || branch == "HEAD" {
		return ""
	}
	return branch
}
