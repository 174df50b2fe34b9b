package tui

import "github.com/charmbracelet/lipgloss"

// Color palette, rebuilt by applyTheme when the dark-mode setting changes.
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// Styles
var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	clockStyle        lipgloss.Style
	clockRunningStyle lipgloss.Style
	titleStyle        lipgloss.Style
	accentStyle       lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
)

func applyTheme(dark bool) {
	if dark {
		colorMuted = lipgloss.Color("#666666")
		colorFg = lipgloss.Color("#C0CAF5")
		colorSubtle = lipgloss.Color("#414868")
		colorHighlight = lipgloss.Color("#7AA2F7")
	} else {
		colorMuted = lipgloss.Color("#8A8A8A")
		colorFg = lipgloss.Color("#2A2A3C")
		colorSubtle = lipgloss.Color("#C8CCE0")
		colorHighlight = lipgloss.Color("#3B6EA8")
	}

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorPrimary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(0, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(0, 2)

	clockStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorWarning)

	clockRunningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSuccess)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorFg)

	accentStyle = lipgloss.NewStyle().
		Foreground(colorAccent)

	successStyle = lipgloss.NewStyle().
		Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
		Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
		Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().
		Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	normalItemStyle = lipgloss.NewStyle().
		Foreground(colorFg)
}

func init() {
	applyTheme(true)
}
