package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/jirawatch/internal/store"
	"github.com/sadopc/jirawatch/internal/storage"
	"github.com/sadopc/jirawatch/internal/timer"
	"github.com/sadopc/jirawatch/internal/tui"
	"github.com/sadopc/jirawatch/internal/worklog"
)

func main() {
	dir, err := storage.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog := setupLogging(dir.Path())
	defer closeLog()

	history, err := store.New(filepath.Join(dir.Path(), "jirawatch.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer history.Close()

	settings := dir.LoadSettings()

	registry := timer.NewRegistry()
	registry.Restore(dir.LoadTimers(), time.Now())

	queue := worklog.NewQueue(dir.LoadPending(), dir.SavePending)

	app := tui.NewApp(tui.Config{
		Registry: registry,
		Queue:    queue,
		Dir:      dir,
		History:  history,
		Settings: settings,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends slog output to a file in the config directory. The
// terminal belongs to the TUI, so nothing may write to stderr while it runs.
func setupLogging(dir string) func() {
	f, err := os.OpenFile(filepath.Join(dir, "jirawatch.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return func() {}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})))
	return func() { f.Close() }
}
