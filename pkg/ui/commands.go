package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/cdash/internal/datasource"
	"github.com/vanderheijden86/cdash/pkg/export"
	"github.com/vanderheijden86/cdash/pkg/model"
	"github.com/vanderheijden86/cdash/pkg/watcher"
)

// FileChangedMsg is sent when the dataset file changes on disk
type FileChangedMsg struct{}

// TableLoadedMsg carries the result of a reload.
type TableLoadedMsg struct {
	Table    *model.Table
	Source   datasource.DataSource
	Err      error
	Duration time.Duration
}

// ExportDoneMsg reports a finished snapshot export.
type ExportDoneMsg struct {
	Paths    []string
	Err      error
	Duration time.Duration
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadCmd loads the dataset at path off the update loop.
func ReloadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		tbl, src, err := datasource.LoadTable(path)
		return TableLoadedMsg{
			Table:    tbl,
			Source:   src,
			Err:      err,
			Duration: time.Since(start),
		}
	}
}

// ExportCmd writes the snapshot bundle off the update loop.
func ExportCmd(opts export.Options, b export.Bundle) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		start := time.Now()
		paths, err := export.ExportAll(ctx, opts, b)
		return ExportDoneMsg{Paths: paths, Err: err, Duration: time.Since(start)}
	}
}
