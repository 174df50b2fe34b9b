package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/jirawatch/internal/jira"
	"github.com/sadopc/jirawatch/internal/store"
	"github.com/sadopc/jirawatch/internal/storage"
	"github.com/sadopc/jirawatch/internal/timer"
	"github.com/sadopc/jirawatch/internal/worklog"
)

// Config carries the wired application state into the TUI.
type Config struct {
	Registry *timer.Registry
	Queue    *worklog.Queue
	Dir      *storage.Dir
	History  *store.Store
	Settings storage.Settings
}

// App is the root Bubble Tea model.
type App struct {
	state  *appState
	width  int
	height int

	activeView viewState
	showHelp   bool

	timers   timersModel
	pending  pendingModel
	reports  reportsModel
	settings settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(cfg Config) App {
	st := &appState{
		registry: cfg.Registry,
		queue:    cfg.Queue,
		coord:    worklog.NewCoordinator(cfg.Queue),
		client:   jira.NewClient(cfg.Settings.BaseURL, cfg.Settings.Email, cfg.Settings.APIToken),
		dir:      cfg.Dir,
		history:  cfg.History,
		settings: cfg.Settings,
	}
	applyTheme(cfg.Settings.DarkMode)

	h := help.New()
	h.ShowAll = false

	return App{
		state:      st,
		activeView: viewTimers,
		timers:     newTimersModel(st),
		pending:    newPendingModel(st),
		reports:    newReportsModel(st),
		settings:   newSettingsModel(st),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.timers.init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timers.setSize(a.width, contentHeight)
		a.pending.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// A capturing child (form, picker, confirm) sees every key first.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, a.shutdown()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimers
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewPending
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			a.settings.reload()
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			if a.activeView == viewReports {
				return a, a.reports.refresh()
			}
			if a.activeView == viewSettings {
				a.settings.reload()
			}
			return a, nil
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		var cmd tea.Cmd
		a.timers, cmd = a.timers.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case themeChangedMsg:
		applyTheme(bool(msg))
		return a, nil

	// Background results go to their owning model even when another tab
	// is in front; a post result must land regardless of where the user is.
	case summariesLoadedMsg, issueFetchedMsg, worklogPostedMsg,
		filtersLoadedMsg, issuesLoadedMsg, transitionDoneMsg:
		var cmd tea.Cmd
		a.timers, cmd = a.timers.update(msg)
		return a, cmd

	case pendingPostedMsg:
		var cmd tea.Cmd
		a.pending, cmd = a.pending.update(msg)
		return a, cmd

	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd

	case authTestedMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

// shutdown folds running segments into their counters and persists every
// document before the program exits.
func (a App) shutdown() tea.Cmd {
	a.state.registry.PrepareForSuspension()
	if err := a.state.dir.SaveTimers(a.state.registry.Snapshot()); err != nil {
		slog.Error("save timers on exit failed", "error", err)
	}
	if err := a.state.dir.SavePending(a.state.queue.Entries()); err != nil {
		slog.Error("save pending on exit failed", "error", err)
	}
	if err := a.state.dir.SaveSettings(a.state.settings); err != nil {
		slog.Error("save settings on exit failed", "error", err)
	}
	return tea.Quit
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimers:
		a.timers, cmd = a.timers.update(msg)
	case viewPending:
		a.pending, cmd = a.pending.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.activeView {
	case viewTimers:
		return a.timers.capturing()
	case viewPending:
		return a.pending.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimers:
		content = a.timers.view()
	case viewPending:
		content = a.pending.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		label := name
		if viewState(i) == viewPending && a.state.queue.Len() > 0 {
			label = fmt.Sprintf("%s (%d)", name, a.state.queue.Len())
		}
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("jirawatch")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Running-timer indicator, visible from every view.
	timerInfo := ""
	for _, t := range a.state.registry.Timers() {
		if t.Running() {
			label := t.IssueKey()
			if label == "" {
				label = "timer"
			}
			timerInfo = successStyle.Render(" ● " + label + " " + formatClock(t.CurrentSeconds()))
			break
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
