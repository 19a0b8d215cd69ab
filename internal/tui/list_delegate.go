package tui

import (
	"fmt"
	"io"
	"strings"

	"memo-cli/internal/present"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	glyphActive   = "●"
	glyphInactive = " "
)

// memoItem is one label in the memo list.
type memoItem struct {
	label present.Label
}

func (i memoItem) FilterValue() string { return i.label.Title }
func (i memoItem) Title() string       { return i.label.Title }

// memoDelegate renders one line per memo. The cursor row is highlighted and the
// active memo carries a marker, so the two can differ while browsing.
type memoDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	marker   lipgloss.Style
}

func newMemoDelegate() memoDelegate {
	return memoDelegate{
		normal: lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		marker: lipgloss.NewStyle().Foreground(colorAccent),
	}
}

func (d memoDelegate) Height() int  { return 1 }
func (d memoDelegate) Spacing() int { return 0 }
func (d memoDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d memoDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}
	it, ok := item.(memoItem)
	if !ok {
		fmt.Fprint(w, fmt.Sprint(item))
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	glyph := glyphInactive
	if it.label.Active {
		glyph = glyphActive
	}
	title := strings.ReplaceAll(it.label.Title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}

	textW := contentW - 2
	line := title
	if lineW := xansi.StringWidth(line); lineW > textW {
		line = xansi.Cut(line, 0, textW-1) + "…"
	} else if lineW < textW {
		line += strings.Repeat(" ", textW-lineW)
	}

	fmt.Fprint(w, d.marker.Render(glyph)+" "+style.Render(line))
}

func newMemoList() list.Model {
	l := list.New([]list.Item{}, newMemoDelegate(), 0, 0)
	l.Title = "Memos"
	// The app renders its own header and footer.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// q and ctrl+c are handled by the app so edits are never dropped by the list.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	// Emacs-style navigation aliases.
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}
