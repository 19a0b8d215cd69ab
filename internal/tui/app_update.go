package tui

import (
	"errors"
	"fmt"

	"memo-cli/internal/memo"
	"memo-cli/internal/present"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const lastMemoNotice = "Cannot delete the last memo."

func (m appModel) Init() tea.Cmd {
	return m.previewCmd()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, m.previewCmd()

	case previewDoneMsg:
		m.applyPreview(msg.res)
		return m, nil

	case externalEditorDoneMsg:
		m.applyExternalEditorResult(msg)
		return m, nil

	case minibufferClearMsg:
		if msg.at.Equal(m.minibufferSetAt) {
			m.minibufferText = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.previewer.Cancel()
			return m, tea.Quit
		}
		if m.notice != "" {
			switch msg.String() {
			case "enter", "esc":
				m.notice = ""
			}
			return m, nil
		}
		if m.session.Mode() == memo.ModeEditing {
			return m.updateEditing(msg)
		}
		return m.updateViewing(msg)
	}

	if m.session.Mode() == memo.ModeEditing {
		return m.forwardToFocused(msg)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.previewer.Cancel()
		return m, tea.Quit

	case "enter":
		it, ok := m.list.SelectedItem().(memoItem)
		if !ok {
			return m, nil
		}
		if err := m.session.Select(it.label.ID); err != nil {
			return m, m.showMinibuffer("Select failed: " + err.Error())
		}
		m.syncList(true)
		return m, m.previewCmd()

	case "a":
		created, err := m.session.Add(m.ctx)
		if err != nil {
			m.log.Error("tui: add memo failed", zap.Error(err))
			return m, m.showMinibuffer("Add failed: " + err.Error())
		}
		m.log.Info("tui: memo added", zap.String("memoId", created.ID))
		m.syncList(true)
		return m, m.loadDraft()

	case "e":
		m.session.Edit()
		return m, m.loadDraft()

	case "d":
		deleted := m.session.Active()
		err := m.session.Delete(m.ctx)
		var last *memo.LastMemoError
		switch {
		case errors.As(err, &last):
			m.notice = lastMemoNotice
			return m, nil
		case err != nil:
			m.log.Error("tui: delete memo failed", zap.String("memoId", deleted.ID), zap.Error(err))
			return m, m.showMinibuffer("Delete failed: " + err.Error())
		}
		m.log.Info("tui: memo deleted", zap.String("memoId", deleted.ID))
		m.syncList(true)
		return m, tea.Batch(m.previewCmd(), m.showMinibuffer("Deleted: "+deleted.Title))

	case "x":
		exp, err := present.ExportActive(m.session.Snapshot())
		if err == nil {
			var path string
			path, err = present.WriteExport(m.exportDir, exp)
			if err == nil {
				return m, m.showMinibuffer("Exported: " + path)
			}
		}
		return m, m.showMinibuffer("Export failed: " + err.Error())

	case "y":
		active := m.session.Active()
		if err := m.copy(active.Body); err != nil {
			return m, m.showMinibuffer("Clipboard error: " + err.Error())
		}
		return m, m.showMinibuffer(fmt.Sprintf("Copied body of %q", active.Title))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateEditing handles keys while a draft is open. With the list focused
// (esc), the viewing keys apply; selecting, adding or deleting drops the draft.
func (m appModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == focusList {
		switch msg.String() {
		case "e", "tab", "shift+tab":
			return m, m.setFocus(focusTitle)
		case "esc":
			return m, nil
		case "ctrl+s", "ctrl+e":
		default:
			return m.updateViewing(msg)
		}
	}

	switch msg.String() {
	case "esc":
		return m, m.setFocus(focusList)

	case "tab", "shift+tab":
		if m.focus == focusTitle {
			return m, m.setFocus(focusBody)
		}
		return m, m.setFocus(focusTitle)

	case "ctrl+s":
		active := m.session.Active()
		if err := m.session.Save(m.ctx, m.title.Value(), m.body.Value()); err != nil {
			m.log.Error("tui: save memo failed", zap.String("memoId", active.ID), zap.Error(err))
			return m, m.showMinibuffer("Save failed: " + err.Error())
		}
		m.log.Info("tui: memo saved", zap.String("memoId", active.ID))
		m.setFocus(focusList)
		m.syncList(true)
		return m, tea.Batch(m.previewCmd(), m.showMinibuffer("Saved"))

	case "ctrl+e":
		cmd, err := m.openExternalEditorForBody()
		if err != nil {
			return m, m.showMinibuffer("Editor failed: " + err.Error())
		}
		return m, cmd
	}
	return m.forwardToFocused(msg)
}

func (m appModel) forwardToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusTitle:
		m.title, cmd = m.title.Update(msg)
	case focusBody:
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}
