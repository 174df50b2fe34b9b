package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/jirawatch/internal/duration"
	"github.com/sadopc/jirawatch/internal/store"
)

// reportsModel charts posted worklogs by day, stacked per issue, over a
// 7-day window. Only posts made from this app appear here; the posted
// history lives in the local database, not in Jira.
type reportsModel struct {
	st     *appState
	width  int
	height int

	totals []store.DailyTotal
	recent []store.PostedWorklog
	offset int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

var issueColors = []lipgloss.Color{
	"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#7AA2F7", "#E74C3C",
}

func newReportsModel(st *appState) reportsModel {
	return reportsModel{
		st:    st,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) refresh() tea.Cmd {
	st := r.st
	from, to := r.dateRange()
	return func() tea.Msg {
		totals, err := st.history.DailyTotals(from, to)
		if err != nil {
			return reportsDataMsg{err: err}
		}
		recent, err := st.history.RecentPosted(8)
		return reportsDataMsg{totals: totals, recent: recent, err: err}
	}
}

func (r reportsModel) dateRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-7*r.offset)
	return end.AddDate(0, 0, -7), end
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.err != nil {
			return r, errorStatus(fmt.Sprintf("Could not load report: %v", msg.err))
		}
		r.totals = msg.totals
		r.recent = msg.recent
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Down):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

// issueStyles assigns each issue a stable palette color for this window.
func (r reportsModel) issueStyles() map[string]lipgloss.Style {
	styles := make(map[string]lipgloss.Style)
	next := 0
	for _, t := range r.totals {
		if _, ok := styles[t.IssueKey]; ok {
			continue
		}
		styles[t.IssueKey] = lipgloss.NewStyle().Foreground(issueColors[next%len(issueColors)])
		next++
	}
	return styles
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	from, to := r.dateRange()
	styles := r.issueStyles()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		label := d.Format("Mon 02")

		var values []barchart.BarValue
		for _, t := range r.totals {
			if t.Date == dateStr {
				values = append(values, barchart.BarValue{
					Name:  t.IssueKey,
					Value: float64(t.TotalSeconds) / 3600.0,
					Style: styles[t.IssueKey],
				})
			}
		}

		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: values,
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", dateLabel,
	)

	chartView := r.chart.View()
	legend := r.renderLegend()
	recentView := r.renderRecent(w)
	nav := mutedStyle.Render("  ↑: older  ↓: newer")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", legend, "", recentView, "", nav,
		),
	)
}

func (r reportsModel) renderLegend() string {
	styles := r.issueStyles()
	seen := make(map[string]bool)
	var items []string
	for _, t := range r.totals {
		if seen[t.IssueKey] {
			continue
		}
		seen[t.IssueKey] = true
		dot := styles[t.IssueKey].Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, t.IssueKey))
	}
	if len(items) == 0 {
		return mutedStyle.Render("  No worklogs posted in this period")
	}
	return "  " + strings.Join(items, "  ")
}

func (r reportsModel) renderRecent(w int) string {
	if len(r.recent) == 0 {
		return ""
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-10s %s", "Issue", "Logged", "When")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))
	for _, p := range r.recent {
		rows = append(rows, fmt.Sprintf("  %-12s %-10s %s",
			p.IssueKey,
			duration.MustFormat(p.Seconds),
			p.PostedAt.Local().Format("Jan 02 15:04"),
		))
	}
	return strings.Join(rows, "\n")
}
