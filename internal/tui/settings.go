package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/jirawatch/internal/storage"
)

type settingsModel struct {
	st     *appState
	width  int
	height int

	formActive bool
	form       *huh.Form
	clearing   bool
	testing    bool
	lastTest   string

	// Form values as pointers (survive value copies)
	fBaseURL  *string
	fEmail    *string
	fAPIToken *string
	fFilterID *string
	fDarkMode *bool
	fConfirm  *bool
}

func newSettingsModel(st *appState) settingsModel {
	bu, em, at, fi := "", "", "", ""
	dm, cf := true, false
	return settingsModel{
		st:        st,
		fBaseURL:  &bu,
		fEmail:    &em,
		fAPIToken: &at,
		fFilterID: &fi,
		fDarkMode: &dm,
		fConfirm:  &cf,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

// reload refreshes nothing remote; settings live in memory. Kept as the
// tab-switch hook so a stale test result is dropped.
func (s *settingsModel) reload() {
	s.lastTest = ""
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authTestedMsg:
		s.testing = false
		if msg.ok {
			s.lastTest = "ok"
		} else {
			s.lastTest = "failed"
		}
		return s, nil

	case tea.KeyMsg:
		if s.formActive && s.form != nil {
			return s.updateForm(msg)
		}
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
		switch msg.String() {
		case "t":
			if s.testing {
				return s, nil
			}
			if !s.st.client.Configured() {
				return s, errorStatus("Nothing to test, settings are empty")
			}
			s.testing = true
			client := s.st.client
			return s, func() tea.Msg {
				return authTestedMsg{ok: client.TestAuthentication(context.Background())}
			}
		case "x":
			return s.showClearConfirm()
		}
	}

	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.fBaseURL = s.st.settings.BaseURL
	*s.fEmail = s.st.settings.Email
	*s.fAPIToken = s.st.settings.APIToken
	*s.fFilterID = s.st.settings.DefaultFilterID
	*s.fDarkMode = s.st.settings.DarkMode

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Jira base URL").Placeholder("https://yoursite.atlassian.net").Value(s.fBaseURL),
			huh.NewInput().Title("Email").Value(s.fEmail),
			huh.NewInput().Title("API token").EchoMode(huh.EchoModePassword).Value(s.fAPIToken),
		).Title("Connection"),
		huh.NewGroup(
			huh.NewInput().Title("Default filter ID").Description("favourite filter used by the issue picker").Value(s.fFilterID),
			huh.NewConfirm().Title("Dark mode").Value(s.fDarkMode),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	s.clearing = false
	return s, s.form.Init()
}

func (s settingsModel) showClearConfirm() (settingsModel, tea.Cmd) {
	*s.fConfirm = false
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Clear all settings?").Description("URL, email and token are removed from disk").Value(s.fConfirm),
		),
	).WithShowHelp(true)
	s.formActive = true
	s.clearing = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if s.clearing {
			s.clearing = false
			if !*s.fConfirm {
				return s, nil
			}
			return s.clearSettings()
		}
		return s.saveSettings()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() (settingsModel, tea.Cmd) {
	st := s.st
	darkChanged := st.settings.DarkMode != *s.fDarkMode

	st.settings.BaseURL = strings.TrimSuffix(strings.TrimSpace(*s.fBaseURL), "/")
	st.settings.Email = strings.TrimSpace(*s.fEmail)
	st.settings.APIToken = strings.TrimSpace(*s.fAPIToken)
	st.settings.DefaultFilterID = strings.TrimSpace(*s.fFilterID)
	st.settings.DarkMode = *s.fDarkMode
	st.replaceClient()

	s.lastTest = ""

	cmds := []tea.Cmd{status("Settings saved")}
	if c := st.persistSettings(); c != nil {
		cmds = append(cmds, c)
	}
	if darkChanged {
		dark := *s.fDarkMode
		cmds = append(cmds, func() tea.Msg { return themeChangedMsg(dark) })
	}
	return s, tea.Batch(cmds...)
}

func (s settingsModel) clearSettings() (settingsModel, tea.Cmd) {
	st := s.st
	dark := st.settings.DarkMode
	st.settings = storage.Settings{DarkMode: dark}
	st.replaceClient()
	s.lastTest = ""

	cmds := []tea.Cmd{status("Settings cleared")}
	if c := st.persistSettings(); c != nil {
		cmds = append(cmds, c)
	}
	return s, tea.Batch(cmds...)
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	set := s.st.settings

	row := func(label, value string) string {
		l := lipgloss.NewStyle().Width(20).Render(label)
		if value == "" {
			return fmt.Sprintf("  %s %s", l, mutedStyle.Render("(not set)"))
		}
		return fmt.Sprintf("  %s %s", l, highlightStyle.Render(value))
	}

	token := ""
	if set.APIToken != "" {
		token = strings.Repeat("•", 12)
	}
	filter := set.DefaultFilterID
	if name, ok := set.FilterNames[set.DefaultFilterID]; ok && name != "" {
		filter = fmt.Sprintf("%s (%s)", name, set.DefaultFilterID)
	}
	theme := "light"
	if set.DarkMode {
		theme = "dark"
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"))
	rows = append(rows, "")
	rows = append(rows, row("Jira base URL", set.BaseURL))
	rows = append(rows, row("Email", set.Email))
	rows = append(rows, row("API token", token))
	rows = append(rows, row("Default filter", filter))
	rows = append(rows, row("Theme", theme))
	rows = append(rows, "")

	switch {
	case s.testing:
		rows = append(rows, warningStyle.Render("  testing connection…"))
	case s.lastTest == "ok":
		rows = append(rows, successStyle.Render("  connection ok"))
	case s.lastTest == "failed":
		rows = append(rows, errorStyle.Render("  connection failed, check URL and credentials"))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit  t: test connection  x: clear"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
