package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/jirawatch/internal/duration"
	"github.com/sadopc/jirawatch/internal/worklog"
)

// pendingModel shows queued worklogs and posts subsets of them. A batch
// posts one entry at a time; each success is removed (and persisted)
// before the next attempt, so a mid-batch failure never loses paid work.
type pendingModel struct {
	st     *appState
	width  int
	height int
	cursor int

	selected map[int]bool

	// Batch state. While posting, the queue is read-only for the user.
	posting   bool
	remaining []int // original queue indices, ascending
	removed   int   // entries acked so far this batch
	batchDone int
	batchSize int

	confirming bool
	form       *huh.Form
	fConfirm   *bool
}

func newPendingModel(st *appState) pendingModel {
	cf := false
	return pendingModel{
		st:       st,
		selected: make(map[int]bool),
		fConfirm: &cf,
	}
}

func (m *pendingModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m pendingModel) capturing() bool {
	return m.posting || m.confirming
}

func (m pendingModel) update(msg tea.Msg) (pendingModel, tea.Cmd) {
	if m.confirming && m.form != nil {
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case pendingPostedMsg:
		return m.applyPosted(msg)

	case tea.KeyMsg:
		if m.posting {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m pendingModel) handleKey(msg tea.KeyMsg) (pendingModel, tea.Cmd) {
	q := m.st.queue

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < q.Len()-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Select):
		if q.Len() == 0 {
			return m, nil
		}
		m.selected[m.cursor] = !m.selected[m.cursor]
	case key.Matches(msg, keys.Post):
		return m.startBatch(m.selectedIndices())
	case key.Matches(msg, keys.PostAll):
		all := make([]int, q.Len())
		for i := range all {
			all[i] = i
		}
		return m.startBatch(all)
	case key.Matches(msg, keys.Delete):
		if len(m.selectedIndices()) == 0 {
			return m, nil
		}
		return m.showRemoveConfirm()
	}
	return m, nil
}

// selectedIndices returns the marked queue positions ascending, falling
// back to the cursor row when nothing is marked.
func (m pendingModel) selectedIndices() []int {
	var out []int
	for i, on := range m.selected {
		if on && i < m.st.queue.Len() {
			out = append(out, i)
		}
	}
	if len(out) == 0 && m.st.queue.Len() > 0 {
		return []int{m.cursor}
	}
	sort.Ints(out)
	return out
}

func (m pendingModel) startBatch(indices []int) (pendingModel, tea.Cmd) {
	if len(indices) == 0 {
		return m, nil
	}
	if !m.st.client.Configured() {
		return m, errorStatus("Configure Jira in Settings first")
	}
	m.posting = true
	m.remaining = indices
	m.removed = 0
	m.batchDone = 0
	m.batchSize = len(indices)
	m.selected = make(map[int]bool)
	return m.postNext()
}

// postNext launches the post for the next batch entry, or finishes the
// batch when none remain.
func (m pendingModel) postNext() (pendingModel, tea.Cmd) {
	if len(m.remaining) == 0 {
		m.posting = false
		if m.cursor >= m.st.queue.Len() && m.cursor > 0 {
			m.cursor = m.st.queue.Len() - 1
		}
		return m, status(fmt.Sprintf("Posted %d of %d", m.batchDone, m.batchSize))
	}

	idx := m.remaining[0] - m.removed
	entry, ok := m.st.queue.At(idx)
	if !ok {
		// Entry vanished under the batch; skip it.
		m.remaining = m.remaining[1:]
		return m.postNext()
	}

	client := m.st.client
	sub := worklog.BatchSubmission(entry, time.Now())
	return m, func() tea.Msg {
		id, err := client.PostWorklog(context.Background(), sub)
		return pendingPostedMsg{entry: entry, id: id, err: err}
	}
}

func (m pendingModel) applyPosted(msg pendingPostedMsg) (pendingModel, tea.Cmd) {
	if !m.posting || len(m.remaining) == 0 {
		return m, nil
	}

	if msg.err != nil {
		slog.Warn("batch post failed", "issue", msg.entry.IssueKey, "error", msg.err)
		m.posting = false
		m.remaining = nil
		if m.cursor >= m.st.queue.Len() && m.cursor > 0 {
			m.cursor = m.st.queue.Len() - 1
		}
		return m, errorStatus(fmt.Sprintf("Posted %d of %d, stopped at %s: %v",
			m.batchDone, m.batchSize, msg.entry.IssueKey, msg.err))
	}

	idx := m.remaining[0] - m.removed
	ackErr := m.st.coord.Ack(idx)
	if ackErr == nil {
		m.removed++
	}
	m.remaining = m.remaining[1:]
	m.batchDone++

	if err := m.st.history.RecordPosted(msg.entry.IssueKey, msg.entry.Seconds, msg.entry.Comment, msg.id, time.Now()); err != nil {
		slog.Warn("record posted worklog failed", "issue", msg.entry.IssueKey, "error", err)
	}

	// The posted entry must be durably gone before the next attempt. When
	// that write fails the batch's index bookkeeping is no longer trustworthy,
	// so stop here rather than risk posting entries the user never picked.
	if ackErr != nil {
		slog.Error("ack posted entry failed", "issue", msg.entry.IssueKey, "error", ackErr)
		m.posting = false
		m.remaining = nil
		if m.cursor >= m.st.queue.Len() && m.cursor > 0 {
			m.cursor = m.st.queue.Len() - 1
		}
		return m, errorStatus(fmt.Sprintf("Posted %d of %d, stopped: %v", m.batchDone, m.batchSize, ackErr))
	}

	return m.postNext()
}

func (m pendingModel) showRemoveConfirm() (pendingModel, tea.Cmd) {
	*m.fConfirm = false
	n := len(m.selectedIndices())
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(fmt.Sprintf("Discard %d pending worklog(s)?", n)).Value(m.fConfirm),
		),
	).WithShowHelp(true)
	m.confirming = true
	return m, m.form.Init()
}

func (m pendingModel) updateConfirm(msg tea.Msg) (pendingModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.confirming = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.confirming = false
		m.form = nil
		if !*m.fConfirm {
			return m, nil
		}
		indices := m.selectedIndices()
		if err := m.st.queue.RemoveByIndices(indices); err != nil {
			return m, errorStatus(fmt.Sprintf("Could not remove entries: %v", err))
		}
		m.selected = make(map[int]bool)
		if m.cursor >= m.st.queue.Len() && m.cursor > 0 {
			m.cursor = m.st.queue.Len() - 1
		}
		return m, status(fmt.Sprintf("Discarded %d entries", len(indices)))
	}

	return m, cmd
}

func (m pendingModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4

	if m.confirming && m.form != nil {
		return panelStyle.Width(w).Render(m.form.View())
	}

	entries := m.st.queue.Entries()

	var rows []string
	rows = append(rows, titleStyle.Render("Pending Worklogs"))
	rows = append(rows, "")

	if len(entries) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing waiting. Worklogs saved for later land here."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	for i, e := range entries {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := "[ ]"
		if m.selected[i] {
			mark = "[x]"
		}
		row := fmt.Sprintf("%s%s %-12s %-10s %s",
			cursor, mark, e.IssueKey,
			duration.MustFormat(e.Seconds),
			e.CreatedAt.Local().Format("Jan 02 15:04"),
		)
		rows = append(rows, style.Render(row))
		if e.Comment != "" {
			comment := e.Comment
			if nl := strings.IndexByte(comment, '\n'); nl >= 0 {
				comment = comment[:nl]
			}
			rows = append(rows, mutedStyle.Render("        "+comment))
		}
	}

	rows = append(rows, "")
	if m.posting {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("  posting %d of %d…", m.batchDone+1, m.batchSize)))
	} else {
		rows = append(rows, mutedStyle.Render("  space: select  p: post  a: post all  d: discard"))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
