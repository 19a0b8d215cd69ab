package tui

import (
	"context"

	"memo-cli/internal/memo"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Session   *memo.Session
	Log       *zap.Logger
	ExportDir string
	// Theme is the configured theme (light, dark or auto). Env vars win.
	Theme string
}

func Run(ctx context.Context, opts Options) error {
	applyThemePreference(opts.Theme)
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	defer m.previewer.Cancel()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
