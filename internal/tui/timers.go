package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/jirawatch/internal/duration"
	"github.com/sadopc/jirawatch/internal/jira"
	"github.com/sadopc/jirawatch/internal/timer"
)

type formKind int

const (
	formNone formKind = iota
	formIssue
	formComment
	formEdit
	formWorklog
	formDelete
	formResetAll
	formRemoveAll
)

type pickerPhase int

const (
	pickFilters pickerPhase = iota
	pickIssues
)

type timersModel struct {
	st     *appState
	width  int
	height int
	cursor int

	// issueKey -> summary, seeded from the cache and refreshed by lookups.
	summaries map[string]string

	// Slots with a post in flight; their worklog form is locked out.
	posting map[int]bool

	formActive bool
	formSlot   int
	form       *huh.Form
	kind       formKind

	picking      bool
	pickerFor    int
	phase        pickerPhase
	filters      []jira.Filter
	issues       []jira.Issue
	pickerCursor int
	pickerBusy   bool

	// Form values as pointers (survive value copies)
	fIssueKey  *string
	fComment   *string
	fTimeSpent *string
	fStarted   *string
	fAdjust    *string
	fRemaining *string
	fAction    *string
	fConfirm   *bool
}

const startedLayout = "2006-01-02 15:04"

func newTimersModel(st *appState) timersModel {
	ik, cm, ts, sd, ad, re, ac := "", "", "", "", "", "", ""
	cf := false
	return timersModel{
		st:         st,
		summaries:  make(map[string]string),
		posting:    make(map[int]bool),
		fIssueKey:  &ik,
		fComment:   &cm,
		fTimeSpent: &ts,
		fStarted:   &sd,
		fAdjust:    &ad,
		fRemaining: &re,
		fAction:    &ac,
		fConfirm:   &cf,
	}
}

func (m timersModel) init() tea.Cmd {
	st := m.st
	return func() tea.Msg {
		cached, err := st.history.IssueSummaries()
		if err != nil {
			slog.Warn("load issue summary cache failed", "error", err)
			return nil
		}
		return summariesLoadedMsg(cached)
	}
}

type summariesLoadedMsg map[string]string

func (m *timersModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m timersModel) capturing() bool {
	return m.formActive || m.picking
}

func (m timersModel) current() *timer.Timer {
	return m.st.registry.At(m.cursor)
}

func (m timersModel) update(msg tea.Msg) (timersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case summariesLoadedMsg:
		for k, v := range msg {
			m.summaries[k] = v
		}
		return m, nil

	case tickMsg:
		// The registry computes elapsed time on read; the tick only forces
		// a redraw. Nothing to update here.
		return m, nil

	case issueFetchedMsg:
		return m.applyIssueFetched(msg)

	case worklogPostedMsg:
		return m.applyWorklogPosted(msg)

	case transitionDoneMsg:
		if msg.err != nil {
			return m, errorStatus(fmt.Sprintf("Transition failed: %v", msg.err))
		}
		return m, status(msg.key + " moved to In Progress")

	case filtersLoadedMsg:
		if !m.picking {
			return m, nil
		}
		m.pickerBusy = false
		if msg.err != nil {
			m.picking = false
			return m, errorStatus(fmt.Sprintf("Could not load filters: %v", msg.err))
		}
		m.filters = msg.filters
		m.pickerCursor = 0
		if m.st.settings.FilterNames == nil {
			m.st.settings.FilterNames = make(map[string]string)
		}
		for i, f := range msg.filters {
			m.st.settings.FilterNames[f.ID] = f.Name
			if f.ID == m.st.settings.DefaultFilterID {
				m.pickerCursor = i
			}
		}
		return m, m.st.persistSettings()

	case issuesLoadedMsg:
		if !m.picking || m.phase != pickIssues {
			return m, nil
		}
		m.pickerBusy = false
		if msg.err != nil {
			m.phase = pickFilters
			return m, errorStatus(fmt.Sprintf("Could not load issues: %v", msg.err))
		}
		m.issues = msg.issues
		m.pickerCursor = 0
		return m, nil

	case tea.KeyMsg:
		if m.formActive && m.form != nil {
			return m.updateForm(msg)
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}

	// Remaining message types are the form's own (cursor blink and such).
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m timersModel) handleKey(msg tea.KeyMsg) (timersModel, tea.Cmd) {
	reg := m.st.registry

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.cursor < reg.Len()-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keys.New):
		reg.Add()
		m.cursor = reg.Len() - 1
		return m, m.st.persistTimers()

	case key.Matches(msg, keys.Delete):
		if m.current() == nil {
			return m, nil
		}
		return m.showDeleteConfirm()

	case key.Matches(msg, keys.StartPause):
		t := m.current()
		if t == nil {
			return m, nil
		}
		if t.Running() {
			t.Pause()
			return m, m.st.persistTimers()
		}
		if err := reg.Start(m.cursor); err != nil {
			return m, errorStatus("Set an issue key before starting the timer")
		}
		cmds := []tea.Cmd{}
		if c := m.st.persistTimers(); c != nil {
			cmds = append(cmds, c)
		}
		// Starting work moves the issue along, best effort.
		if m.st.client.Configured() {
			cmds = append(cmds, m.transitionCmd(t.IssueKey()))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, keys.Reset):
		t := m.current()
		if t == nil {
			return m, nil
		}
		t.Reset()
		return m, m.st.persistTimers()

	case key.Matches(msg, keys.Issue):
		if m.current() == nil {
			return m, nil
		}
		return m.showIssueForm()

	case key.Matches(msg, keys.Picker):
		if m.current() == nil {
			return m, nil
		}
		if !m.st.client.Configured() {
			return m, errorStatus("Configure Jira in Settings first")
		}
		m.picking = true
		m.pickerFor = m.cursor
		m.phase = pickFilters
		m.filters = nil
		m.issues = nil
		m.pickerBusy = true
		return m, m.loadFilters()

	case key.Matches(msg, keys.Comment):
		if m.current() == nil {
			return m, nil
		}
		return m.showCommentForm()

	case key.Matches(msg, keys.Edit):
		if m.current() == nil {
			return m, nil
		}
		return m.showEditForm()

	case key.Matches(msg, keys.Post):
		t := m.current()
		if t == nil {
			return m, nil
		}
		if t.IssueKey() == "" {
			return m, errorStatus("Set an issue key before posting a worklog")
		}
		if m.posting[m.cursor] {
			return m, errorStatus("A post for this timer is already in flight")
		}
		return m.showWorklogForm()

	case key.Matches(msg, keys.Transition):
		t := m.current()
		if t == nil || t.IssueKey() == "" {
			return m, nil
		}
		if !m.st.client.Configured() {
			return m, errorStatus("Configure Jira in Settings first")
		}
		return m, m.transitionCmd(t.IssueKey())

	case key.Matches(msg, keys.PauseAll):
		n := reg.PauseAll()
		if n == 0 {
			return m, nil
		}
		cmds := []tea.Cmd{status(fmt.Sprintf("Paused %d timer(s)", n))}
		if c := m.st.persistTimers(); c != nil {
			cmds = append(cmds, c)
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, keys.ResetAll):
		if reg.Len() == 0 {
			return m, errorStatus("Nothing to reset")
		}
		return m.showBulkConfirm(formResetAll, "Reset all timers?")

	case key.Matches(msg, keys.RemoveAll):
		if reg.Len() == 0 {
			return m, errorStatus("Nothing to remove")
		}
		return m.showBulkConfirm(formRemoveAll, "Remove all timers?")
	}
	return m, nil
}

// --- Background commands ---

func (m timersModel) fetchIssueCmd(slot int, issueKey string) tea.Cmd {
	client := m.st.client
	return func() tea.Msg {
		issue, err := client.FetchIssue(context.Background(), issueKey)
		return issueFetchedMsg{slot: slot, key: issueKey, issue: issue, err: err}
	}
}

func (m timersModel) transitionCmd(issueKey string) tea.Cmd {
	client := m.st.client
	return func() tea.Msg {
		err := client.TransitionToInProgress(context.Background(), issueKey)
		return transitionDoneMsg{key: issueKey, err: err}
	}
}

func (m timersModel) loadFilters() tea.Cmd {
	client := m.st.client
	return func() tea.Msg {
		filters, err := client.FetchFilters(context.Background())
		return filtersLoadedMsg{filters: filters, err: err}
	}
}

func (m timersModel) loadIssues(filterID string) tea.Cmd {
	client := m.st.client
	return func() tea.Msg {
		jql, err := client.FetchFilterJQL(context.Background(), filterID)
		if err != nil {
			return issuesLoadedMsg{filterID: filterID, err: err}
		}
		issues, err := client.FetchIssues(context.Background(), jql, 0)
		return issuesLoadedMsg{filterID: filterID, issues: issues, err: err}
	}
}

func (m timersModel) postWorklogCmd(slot int, sub jira.Submission) tea.Cmd {
	client := m.st.client
	return func() tea.Msg {
		id, err := client.PostWorklog(context.Background(), sub)
		return worklogPostedMsg{slot: slot, sub: sub, id: id, err: err}
	}
}

// --- Message application ---

// slotTimer resolves a slot index recorded when a command was launched. The
// result is dropped when the slot is gone or now holds a different issue.
func (m timersModel) slotTimer(slot int, issueKey string) *timer.Timer {
	t := m.st.registry.At(slot)
	if t == nil || t.IssueKey() != issueKey {
		return nil
	}
	return t
}

func (m timersModel) applyIssueFetched(msg issueFetchedMsg) (timersModel, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, jira.ErrNotFound) {
			return m, errorStatus(msg.key + " not found")
		}
		slog.Warn("issue lookup failed", "issue", msg.key, "error", msg.err)
		return m, errorStatus(fmt.Sprintf("Lookup failed: %v", msg.err))
	}

	m.summaries[msg.key] = msg.issue.Summary
	if err := m.st.history.CacheIssueSummary(msg.key, msg.issue.Summary); err != nil {
		slog.Warn("cache issue summary failed", "issue", msg.key, "error", err)
	}

	if t := m.slotTimer(msg.slot, msg.key); t != nil {
		t.SetIssue(msg.key, msg.issue.Summary)
		return m, m.st.persistTimers()
	}
	return m, nil
}

func (m timersModel) applyWorklogPosted(msg worklogPostedMsg) (timersModel, tea.Cmd) {
	delete(m.posting, msg.slot)

	t := m.slotTimer(msg.slot, msg.sub.IssueKey)
	outcome, err := m.st.coord.Finalize(t, msg.sub, msg.id, msg.err)
	if err != nil {
		return m, errorStatus(fmt.Sprintf("Post failed and could not be saved: %v", err))
	}

	var cmds []tea.Cmd
	if c := m.st.persistTimers(); c != nil {
		cmds = append(cmds, c)
	}

	if outcome.Deferred {
		slog.Warn("worklog post failed, entry queued", "issue", msg.sub.IssueKey, "error", outcome.Err)
		cmds = append(cmds, errorStatus(fmt.Sprintf("Post failed, saved to Pending: %v", outcome.Err)))
		return m, tea.Batch(cmds...)
	}

	if err := m.st.history.RecordPosted(msg.sub.IssueKey, msg.sub.Seconds, msg.sub.Comment, outcome.WorklogID, msg.sub.Started); err != nil {
		slog.Warn("record posted worklog failed", "issue", msg.sub.IssueKey, "error", err)
	}
	cmds = append(cmds, status(fmt.Sprintf("Logged %s on %s", duration.MustFormat(msg.sub.Seconds), msg.sub.IssueKey)))
	return m, tea.Batch(cmds...)
}

// --- Forms ---

func (m timersModel) showIssueForm() (timersModel, tea.Cmd) {
	*m.fIssueKey = m.current().IssueKey()
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Issue key").Placeholder("PROJ-123").Value(m.fIssueKey),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	m.formSlot = m.cursor
	m.kind = formIssue
	return m, m.form.Init()
}

func (m timersModel) showCommentForm() (timersModel, tea.Cmd) {
	*m.fComment = m.current().Comment()
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Worklog comment").Value(m.fComment),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	m.formSlot = m.cursor
	m.kind = formComment
	return m, m.form.Init()
}

func (m timersModel) showEditForm() (timersModel, tea.Cmd) {
	*m.fTimeSpent = duration.MustFormat(m.current().CurrentSeconds())
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Time spent").Description("e.g. 2h 30m").Value(m.fTimeSpent),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	m.formSlot = m.cursor
	m.kind = formEdit
	return m, m.form.Init()
}

func (m timersModel) showWorklogForm() (timersModel, tea.Cmd) {
	t := m.current()
	*m.fTimeSpent = duration.MustFormat(t.CurrentSeconds())
	*m.fStarted = time.Now().Format(startedLayout)
	*m.fComment = t.Comment()
	*m.fAdjust = jira.AdjustAuto
	*m.fRemaining = ""
	if m.st.client.Configured() {
		*m.fAction = "post"
	} else {
		*m.fAction = "queue"
	}

	actionOpts := []huh.Option[string]{
		huh.NewOption("Save for later", "queue"),
	}
	if m.st.client.Configured() {
		actionOpts = append([]huh.Option[string]{huh.NewOption("Post to Jira", "post")}, actionOpts...)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Time spent").Description("e.g. 2h 30m").Value(m.fTimeSpent),
			huh.NewInput().Title("Started").Description("YYYY-MM-DD HH:MM, local time").Value(m.fStarted),
			huh.NewText().Title("Comment").Value(m.fComment),
			huh.NewSelect[string]().Title("Remaining estimate").
				Options(
					huh.NewOption("Adjust automatically", jira.AdjustAuto),
					huh.NewOption("Leave as is", jira.AdjustLeave),
					huh.NewOption("Set new value", jira.AdjustNew),
				).Value(m.fAdjust),
			huh.NewInput().Title("New remaining").Description("only used with: set new value").Value(m.fRemaining),
			huh.NewSelect[string]().Title("Action").Options(actionOpts...).Value(m.fAction),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	m.formSlot = m.cursor
	m.kind = formWorklog
	return m, m.form.Init()
}

func (m timersModel) showDeleteConfirm() (timersModel, tea.Cmd) {
	*m.fConfirm = false
	label := m.current().IssueKey()
	if label == "" {
		label = "this timer"
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Delete " + label + "?").Value(m.fConfirm),
		),
	).WithShowHelp(true)
	m.formActive = true
	m.formSlot = m.cursor
	m.kind = formDelete
	return m, m.form.Init()
}

func (m timersModel) showBulkConfirm(kind formKind, title string) (timersModel, tea.Cmd) {
	*m.fConfirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Value(m.fConfirm),
		),
	).WithShowHelp(true)
	m.formActive = true
	m.formSlot = m.cursor
	m.kind = kind
	return m, m.form.Init()
}

func (m timersModel) updateForm(msg tea.Msg) (timersModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		kind := m.kind
		m.form = nil
		m.kind = formNone
		return m.completeForm(kind)
	}

	return m, cmd
}

func (m timersModel) completeForm(kind formKind) (timersModel, tea.Cmd) {
	switch kind {
	case formResetAll:
		if !*m.fConfirm {
			return m, nil
		}
		if err := m.st.registry.ResetAll(); err != nil {
			return m, errorStatus(err.Error())
		}
		return m, m.st.persistTimers()

	case formRemoveAll:
		if !*m.fConfirm {
			return m, nil
		}
		if err := m.st.registry.RemoveAll(); err != nil {
			return m, errorStatus(err.Error())
		}
		m.cursor = 0
		return m, m.st.persistTimers()
	}

	t := m.st.registry.At(m.formSlot)
	if t == nil {
		return m, nil
	}

	switch kind {
	case formIssue:
		key := strings.ToUpper(strings.TrimSpace(*m.fIssueKey))
		if key == t.IssueKey() {
			return m, nil
		}
		t.SetIssue(key, m.summaries[key])
		cmds := []tea.Cmd{}
		if c := m.st.persistTimers(); c != nil {
			cmds = append(cmds, c)
		}
		if key != "" && m.st.client.Configured() {
			cmds = append(cmds, m.fetchIssueCmd(m.formSlot, key))
		}
		return m, tea.Batch(cmds...)

	case formComment:
		t.SetComment(strings.TrimSpace(*m.fComment))
		return m, m.st.persistTimers()

	case formEdit:
		secs, err := duration.Parse(*m.fTimeSpent)
		if err != nil {
			return m, errorStatus(fmt.Sprintf("Invalid duration: %v", err))
		}
		if err := t.EditDuration(secs); err != nil {
			return m, errorStatus(fmt.Sprintf("Invalid duration: %v", err))
		}
		return m, m.st.persistTimers()

	case formWorklog:
		return m.completeWorklogForm(t)

	case formDelete:
		if !*m.fConfirm {
			return m, nil
		}
		m.st.registry.Remove(m.formSlot)
		if m.cursor >= m.st.registry.Len() && m.cursor > 0 {
			m.cursor--
		}
		return m, m.st.persistTimers()
	}
	return m, nil
}

func (m timersModel) completeWorklogForm(t *timer.Timer) (timersModel, tea.Cmd) {
	secs, err := duration.Parse(*m.fTimeSpent)
	if err != nil {
		return m, errorStatus(fmt.Sprintf("Invalid duration: %v", err))
	}
	if secs <= 0 {
		return m, errorStatus("Nothing to log")
	}

	started, err := time.ParseInLocation(startedLayout, strings.TrimSpace(*m.fStarted), time.Local)
	if err != nil {
		return m, errorStatus("Invalid start time, use YYYY-MM-DD HH:MM")
	}

	sub := jira.Submission{
		IssueKey:       t.IssueKey(),
		Seconds:        secs,
		Comment:        strings.TrimSpace(*m.fComment),
		Started:        started,
		AdjustEstimate: *m.fAdjust,
	}
	if *m.fAdjust == jira.AdjustNew {
		rem, err := duration.Parse(*m.fRemaining)
		if err != nil {
			return m, errorStatus(fmt.Sprintf("Invalid remaining estimate: %v", err))
		}
		sub.RemainingEstimate = &rem
	}

	if *m.fAction == "queue" || !m.st.client.Configured() {
		if err := m.st.coord.Defer(t, sub); err != nil {
			return m, errorStatus(fmt.Sprintf("Could not save worklog: %v", err))
		}
		cmds := []tea.Cmd{status("Saved to Pending")}
		if c := m.st.persistTimers(); c != nil {
			cmds = append(cmds, c)
		}
		return m, tea.Batch(cmds...)
	}

	m.posting[m.formSlot] = true
	return m, m.postWorklogCmd(m.formSlot, sub)
}

// --- Picker ---

func (m timersModel) updatePicker(msg tea.KeyMsg) (timersModel, tea.Cmd) {
	list := len(m.filters)
	if m.phase == pickIssues {
		list = len(m.issues)
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.pickerCursor < list-1 {
			m.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		if m.pickerBusy || list == 0 {
			return m, nil
		}
		if m.phase == pickFilters {
			f := m.filters[m.pickerCursor]
			m.phase = pickIssues
			m.issues = nil
			m.pickerBusy = true
			return m, m.loadIssues(f.ID)
		}
		issue := m.issues[m.pickerCursor]
		m.picking = false
		if t := m.st.registry.At(m.pickerFor); t != nil {
			t.SetIssue(issue.Key, issue.Summary)
			m.summaries[issue.Key] = issue.Summary
			if err := m.st.history.CacheIssueSummary(issue.Key, issue.Summary); err != nil {
				slog.Warn("cache issue summary failed", "issue", issue.Key, "error", err)
			}
			return m, m.st.persistTimers()
		}
	case key.Matches(msg, keys.Back):
		if m.phase == pickIssues {
			m.phase = pickFilters
			m.pickerCursor = 0
			return m, nil
		}
		m.picking = false
	}
	return m, nil
}

// --- Rendering ---

func (m timersModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}

	w := m.width - 4

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(m.form.View())
	}

	if m.picking {
		return m.renderPicker(w)
	}

	reg := m.st.registry
	if reg.Len() == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Timers"),
			"",
			mutedStyle.Render("No timers yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var panels []string
	for i, t := range reg.Timers() {
		panels = append(panels, m.renderSlot(i, t, w))
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (m timersModel) renderSlot(i int, t *timer.Timer, w int) string {
	issue := t.IssueKey()
	if issue == "" {
		issue = mutedStyle.Render("(no issue)")
	} else {
		issue = highlightStyle.Render(issue)
	}

	summary := t.Description()
	if summary == "" {
		summary = m.summaries[t.IssueKey()]
	}
	if r := []rune(summary); len(r) > w-30 && w > 34 {
		summary = string(r[:w-34]) + "…"
	}

	clock := clockStyle.Render(formatClock(t.CurrentSeconds()))
	indicator := mutedStyle.Render("■")
	if t.Running() {
		clock = clockRunningStyle.Render(formatClock(t.CurrentSeconds()))
		indicator = successStyle.Render("●")
	}

	marks := ""
	if t.Comment() != "" {
		marks += accentStyle.Render(" ✎")
	}
	if m.posting[i] {
		marks += warningStyle.Render(" posting…")
	}

	top := fmt.Sprintf("%s %s  %s%s", indicator, issue, clock, marks)
	line := lipgloss.JoinVertical(lipgloss.Left, top, mutedStyle.Render(summary))

	if i == m.cursor {
		return activePanelStyle.Width(w).Render(line)
	}
	return panelStyle.Width(w).Render(line)
}

func (m timersModel) renderPicker(w int) string {
	var rows []string
	if m.phase == pickFilters {
		rows = append(rows, titleStyle.Render("Favourite Filters"))
		if m.pickerBusy {
			rows = append(rows, mutedStyle.Render("  loading…"))
		} else if len(m.filters) == 0 {
			rows = append(rows, mutedStyle.Render("  no favourite filters"))
		}
		for i, f := range m.filters {
			cursor, style := "  ", normalItemStyle
			if i == m.pickerCursor {
				cursor, style = "> ", selectedItemStyle
			}
			rows = append(rows, style.Render(cursor+f.Name))
		}
	} else {
		rows = append(rows, titleStyle.Render("Issues"))
		if m.pickerBusy {
			rows = append(rows, mutedStyle.Render("  loading…"))
		} else if len(m.issues) == 0 {
			rows = append(rows, mutedStyle.Render("  no issues in filter"))
		}
		for i, issue := range m.issues {
			cursor, style := "  ", normalItemStyle
			if i == m.pickerCursor {
				cursor, style = "> ", selectedItemStyle
			}
			rows = append(rows, style.Render(fmt.Sprintf("%s%-12s %s", cursor, issue.Key, issue.Summary)))
		}
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: back"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
