// Package tui provides the interactive Bubble Tea session dashboard.
package tui

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agentctl/internal/cli"
	"agentctl/internal/pipeline"
	"agentctl/internal/store"
)

// DataLoadedMsg is sent when the scan pipeline finishes.
type DataLoadedMsg struct {
	Summaries []store.Summary
	LoadTime  time.Duration
	Err       error
}

// ProgressMsg reports transcript parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// App is the root Bubble Tea model: a loading spinner, then a session
// table with a toggleable detail pane.
type App struct {
	profileName string
	projectsDir string
	cache       *store.Cache

	summaries []store.Summary
	loaded    bool
	loadErr   error
	loadTime  time.Duration

	spin       spinner.Model
	tbl        table.Model
	showDetail bool

	width  int
	height int
}

// NewApp builds the dashboard for one profile. cache may be nil to force
// a full reparse.
func NewApp(profileName, projectsDir string, cache *store.Cache) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(cli.ColorAccent)

	return &App{
		profileName: profileName,
		projectsDir: projectsDir,
		cache:       cache,
		spin:        sp,
	}
}

// Init starts the spinner and kicks off the data load.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.loadCmd())
}

func (a *App) loadCmd() tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		var summaries []store.Summary
		var err error
		if a.cache != nil {
			var result *pipeline.CachedLoadResult
			result, err = pipeline.LoadWithCache(a.projectsDir, a.cache, nil)
			if result != nil {
				summaries = result.Summaries
			}
		} else {
			var result *pipeline.LoadResult
			result, err = pipeline.Load(a.projectsDir, nil)
			if result != nil {
				summaries = result.Summaries
			}
		}

		return DataLoadedMsg{
			Summaries: summaries,
			LoadTime:  time.Since(start),
			Err:       err,
		}
	}
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.loaded {
			a.resizeTable()
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "enter":
			if a.loaded {
				a.showDetail = !a.showDetail
			}
			return a, nil
		case "esc":
			a.showDetail = false
			return a, nil
		case "r":
			if a.loaded {
				a.loaded = false
				return a, tea.Batch(a.spin.Tick, a.loadCmd())
			}
			return a, nil
		}

	case DataLoadedMsg:
		a.loaded = true
		a.loadErr = msg.Err
		a.loadTime = msg.LoadTime
		a.summaries = msg.Summaries
		sort.Slice(a.summaries, func(i, j int) bool {
			return a.summaries[i].StartTime.After(a.summaries[j].StartTime)
		})
		a.buildTable()
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spin, cmd = a.spin.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.loaded {
		var cmd tea.Cmd
		a.tbl, cmd = a.tbl.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) buildTable() {
	cols := []table.Column{
		{Title: "Session", Width: 10},
		{Title: "Project", Width: 18},
		{Title: "Start", Width: 17},
		{Title: "Duration", Width: 9},
		{Title: "Msgs", Width: 6},
		{Title: "Tools", Width: 6},
		{Title: "Agents", Width: 7},
		{Title: "Errors", Width: 7},
		{Title: "Tokens", Width: 8},
	}

	rows := make([]table.Row, 0, len(a.summaries))
	for _, s := range a.summaries {
		rows = append(rows, table.Row{
			cli.ShortID(s.SessionID),
			s.Project,
			cli.FormatTime(s.StartTime),
			cli.FormatDuration(s.Duration()),
			strconv.Itoa(s.Messages),
			strconv.Itoa(s.ToolCalls),
			strconv.Itoa(s.AgentCalls),
			strconv.Itoa(s.Errors),
			cli.FormatTokens(s.InputTokens + s.OutputTokens),
		})
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(cli.ColorAccent).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(cli.ColorBorder).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(cli.ColorText).
		Background(cli.ColorBorder)
	t.SetStyles(styles)

	a.tbl = t
	a.resizeTable()
}

func (a *App) resizeTable() {
	h := a.height - 6
	if h < 4 {
		h = 4
	}
	a.tbl.SetHeight(h)
}

// View renders the dashboard.
func (a *App) View() string {
	if !a.loaded {
		return fmt.Sprintf("\n  %s scanning sessions for profile %q...\n", a.spin.View(), a.profileName)
	}
	if a.loadErr != nil {
		return "\n  " + cli.ErrorStyle.Render("load failed: "+a.loadErr.Error()) + "\n"
	}
	if len(a.summaries) == 0 {
		return "\n  " + cli.MutedStyle.Render("no sessions recorded for profile "+a.profileName) + "\n"
	}

	header := cli.RenderTitle(fmt.Sprintf("%s — %d sessions (scanned in %s)",
		a.profileName, len(a.summaries), a.loadTime.Round(time.Millisecond)))

	body := a.tbl.View()
	if a.showDetail {
		body = lipgloss.JoinVertical(lipgloss.Left, body, a.detailView())
	}

	footer := cli.MutedStyle.Render("  ↑/↓ select · enter detail · r rescan · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (a *App) detailView() string {
	idx := a.tbl.Cursor()
	if idx < 0 || idx >= len(a.summaries) {
		return ""
	}
	s := a.summaries[idx]

	pairs := [][2]string{
		{"Session", s.SessionID},
		{"File", s.FilePath},
		{"Cwd", s.Cwd},
		{"Branch", s.GitBranch},
		{"Model", s.Model},
		{"Tokens in/out", fmt.Sprintf("%s / %s", cli.FormatTokens(s.InputTokens), cli.FormatTokens(s.OutputTokens))},
		{"Cache create/read", fmt.Sprintf("%s / %s", cli.FormatTokens(s.CacheCreation), cli.FormatTokens(s.CacheRead))},
	}
	if s.TodoTotal > 0 {
		pairs = append(pairs, [2]string{"Todo", fmt.Sprintf("%d/%d done", s.TodoDone, s.TodoTotal)})
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.ColorBorder).
		Padding(0, 1).
		Render(cli.RenderKeyValues(pairs))
}

// Run starts the program.
func Run(app *App) error {
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
