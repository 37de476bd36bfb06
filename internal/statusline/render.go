package statusline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"agentctl/internal/transcript"
)

const (
	barFilled = "█"
	barEmpty  = "░"
	barWidth  = 10
)

var (
	profileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3AA99F"))
	modelStyle   = lipgloss.NewStyle().Bold(true)
	branchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B7EC8"))
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#879A39"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0A215"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#D14D41"))
)

// Line bundles everything the renderer displays.
type Line struct {
	Profile        string
	Cwd            string
	Model          string
	ContextPercent int
	GitBranch      string
	ConfigCount    int
	Session        *transcript.Session
}

// Render produces the single statusline string, segments joined by " | ".
// Empty fields are left out entirely so a sparse payload still renders
// cleanly.
func Render(l Line) string {
	var parts []string

	if l.Profile != "" {
		parts = append(parts, "["+profileStyle.Render(l.Profile)+"]")
	}

	if l.Cwd != "" {
		name := filepath.Base(l.Cwd)
		if name == "." || name == string(filepath.Separator) {
			name = "project"
		}
		parts = append(parts, "📁 "+name)
	}

	if l.Model != "" {
		parts = append(parts, "["+modelStyle.Render(l.Model)+"]")
	}

	bar := gaugeStyle(l.ContextPercent).Render(progressBar(l.ContextPercent))
	parts = append(parts, fmt.Sprintf("%s %d%%", bar, l.ContextPercent))

	if l.GitBranch != "" {
		parts = append(parts, "git:("+branchStyle.Render(l.GitBranch)+")")
	}

	if l.ConfigCount > 0 {
		parts = append(parts, fmt.Sprintf("⚙%d", l.ConfigCount))
	}

	if s := l.Session; s != nil {
		if n := len(s.Tools); n > 0 {
			seg := fmt.Sprintf("🔧%d", n)
			if s.Errors > 0 {
				seg += " " + redStyle.Render(fmt.Sprintf("(%d!)", s.Errors))
			}
			parts = append(parts, seg)
		}
		if n := len(s.Agents); n > 0 {
			parts = append(parts, fmt.Sprintf("🤖%d", n))
		}
		if s.HasTodo && len(s.Todo.Items) > 0 {
			parts = append(parts, fmt.Sprintf("☑ %d/%d", s.Todo.Completed(), len(s.Todo.Items)))
		}
	}

	return strings.Join(parts, " | ")
}

func progressBar(percent int) string {
	filled := int(float64(percent)/100*barWidth + 0.5)
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled)
}

func gaugeStyle(percent int) lipgloss.Style {
	switch ContextTier(percent) {
	case "red":
		return redStyle
	case "yellow":
		return yellowStyle
	default:
		return greenStyle
	}
}
