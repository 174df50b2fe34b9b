package tui

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/jirawatch/internal/jira"
	"github.com/sadopc/jirawatch/internal/store"
	"github.com/sadopc/jirawatch/internal/storage"
	"github.com/sadopc/jirawatch/internal/timer"
	"github.com/sadopc/jirawatch/internal/worklog"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimers viewState = iota
	viewPending
	viewReports
	viewSettings
)

var viewNames = []string{"Timers", "Pending", "Reports", "Settings"}

// appState is the mutable application state shared by every view model.
// It is owned by the update loop; background commands never touch it and
// only report results back as messages.
type appState struct {
	registry *timer.Registry
	queue    *worklog.Queue
	coord    *worklog.Coordinator
	client   jira.API
	dir      *storage.Dir
	history  *store.Store
	settings storage.Settings
}

// persistTimers writes the timer document, reporting failures as a status
// command so they are never silent.
func (st *appState) persistTimers() tea.Cmd {
	if err := st.dir.SaveTimers(st.registry.Snapshot()); err != nil {
		slog.Error("persist timers failed", "error", err)
		return errorStatus(fmt.Sprintf("Could not save timers: %v", err))
	}
	return nil
}

func (st *appState) persistSettings() tea.Cmd {
	if err := st.dir.SaveSettings(st.settings); err != nil {
		slog.Error("persist settings failed", "error", err)
		return errorStatus(fmt.Sprintf("Could not save settings: %v", err))
	}
	return nil
}

// replaceClient swaps in a client built from the current settings. The old
// client is dropped atomically; in-flight commands keep their own reference
// and their late results are ignored where the target is gone.
func (st *appState) replaceClient() {
	st.client = jira.NewClient(st.settings.BaseURL, st.settings.Email, st.settings.APIToken)
}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

// issueFetchedMsg reports a background issue lookup for a timer slot.
type issueFetchedMsg struct {
	slot  int
	key   string
	issue jira.Issue
	err   error
}

// worklogPostedMsg reports a background worklog post for a timer slot.
type worklogPostedMsg struct {
	slot int
	sub  jira.Submission
	id   string
	err  error
}

// pendingPostedMsg reports one step of a pending-queue batch post.
type pendingPostedMsg struct {
	entry worklog.Pending
	id    string
	err   error
}

type filtersLoadedMsg struct {
	filters []jira.Filter
	err     error
}

type issuesLoadedMsg struct {
	filterID string
	issues   []jira.Issue
	err      error
}

type authTestedMsg struct {
	ok bool
}

// themeChangedMsg is emitted when the dark-mode setting is toggled.
type themeChangedMsg bool

type transitionDoneMsg struct {
	key string
	err error
}

type reportsDataMsg struct {
	totals []store.DailyTotal
	recent []store.PostedWorklog
	err    error
}

// --- Helpers ---

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorStatus(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

// formatClock renders seconds as hh:mm:ss for the live displays.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
