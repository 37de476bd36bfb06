package statusline

import (
	"os"
	"path/filepath"
)

// CountConfigs counts the Claude Code configuration files in effect for
// a working directory: global ones under homeDir/.claude plus the
// project-local set. Either argument may be empty.
func CountConfigs(homeDir, cwd string) int {
	count := 0

	if homeDir != "" {
		claudeDir := filepath.Join(homeDir, ".claude")
		for _, name := range []string{"CLAUDE.md", "settings.json"} {
			if fileExists(filepath.Join(claudeDir, name)) {
				count++
			}
		}
		if entries, err := os.ReadDir(filepath.Join(claudeDir, "rules")); err == nil {
			count += len(entries)
		}
	}

	if cwd != "" {
		for _, rel := range []string{
			"CLAUDE.md",
			"CLAUDE.local.md",
			filepath.Join(".claude", "CLAUDE.md"),
			".mcp.json",
			filepath.Join(".claude", "settings.local.json"),
		} {
			if fileExists(filepath.Join(cwd, rel)) {
				count++
			}
		}
	}

	return count
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
