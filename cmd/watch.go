package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agentctl/internal/cli"
	"agentctl/internal/transcript"
)

const watchInterval = 300 * time.Millisecond

// How often to re-scan for a newer session file.
const rescanInterval = 3 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [profile]",
	Short: "Stream tool activity from the live session",
	Long: `Follow the most recent session transcript and print each tool call and
agent dispatch as it lands. Switches to a newer session automatically
and survives transcript truncation. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watchLoop(ctx, st.ProjectsDir(name))
}

func watchLoop(ctx context.Context, projectsDir string) error {
	var (
		monitor *transcript.Monitor
		tail    *transcript.TailReader
		current string
	)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()
	lastScan := time.Time{}

	waiting := false

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case <-ticker.C:
		}

		// Periodically look for a newer session file.
		if time.Since(lastScan) >= rescanInterval || current == "" {
			lastScan = time.Now()
			file, ok, err := transcript.MostRecent(projectsDir)
			if err != nil {
				return err
			}
			if !ok {
				if !waiting {
					fmt.Println(cli.MutedStyle.Render("  waiting for a session to start..."))
					waiting = true
				}
				continue
			}
			waiting = false
			if file.Path != current {
				if current != "" {
					fmt.Println(cli.MutedStyle.Render("  switched to session " + cli.ShortID(file.SessionID)))
				} else {
					fmt.Println(cli.MutedStyle.Render("  watching session " + cli.ShortID(file.SessionID)))
				}
				current = file.Path
				monitor = transcript.NewMonitor(file.Path, transcript.DefaultToolWindow, transcript.DefaultAgentWindow)
				tail = transcript.NewTailReader(file.Path)
			}
		}
		if tail == nil {
			continue
		}

		lines, truncated, err := tail.Poll()
		if err != nil {
			return err
		}
		if truncated {
			monitor.Reset()
			fmt.Println(cli.MutedStyle.Render("  transcript restarted"))
		}
		for _, line := range lines {
			for _, dl := range monitor.Feed(line) {
				printDisplayLine(dl)
			}
		}
	}
}

func printDisplayLine(dl transcript.DisplayLine) {
	ts := dl.Time.Local().Format("15:04:05")
	if dl.Time.IsZero() {
		ts = "--:--:--"
	}

	label := dl.Category
	if dl.Agent {
		label = "agent:" + dl.Target
	} else if dl.Target != "" {
		label = dl.Category + " " + dl.Target
	}

	var mark string
	switch {
	case dl.IsError:
		mark = cli.ErrorStyle.Render("✗")
	case dl.Done:
		mark = cli.SuccessStyle.Render("✓")
	default:
		mark = cli.WarnStyle.Render("…")
	}

	fmt.Printf("  %s %s %s\n", cli.MutedStyle.Render(ts), mark, label)
}
