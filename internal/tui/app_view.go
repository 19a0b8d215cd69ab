package tui

import (
	"fmt"
	"strings"

	"memo-cli/internal/present"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	v := m.view()

	if v.Notice != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, renderNoticeModal(m.width, v.Notice))
	}

	listW, detailW, paneH := m.paneSizes()
	left := normalizePane(m.list.View(), listW, paneH)
	sep := lipgloss.NewStyle().Foreground(colorBorder).Render(strings.Repeat("│\n", paneH-1) + "│")
	right := normalizePane(m.renderDetail(v, detailW), detailW, paneH)

	return strings.Join([]string{
		m.renderHeader(v),
		lipgloss.JoinHorizontal(lipgloss.Top, left, " "+sep+" ", right),
		m.renderFooter(v),
	}, "\n")
}

func (m appModel) renderHeader(v present.View) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("Memo")
	meta := styleMuted().Render(fmt.Sprintf("%d memos  %s", len(v.Labels), v.Mode))
	return normalizePane(title+"  "+meta, m.width, 1) + "\n"
}

func (m appModel) renderDetail(v present.View, width int) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
	label := styleMuted()

	if v.BodyVisible {
		return strings.Join([]string{
			label.Render("Title"),
			m.title.View(),
			label.Render("Body"),
			m.body.View(),
		}, "\n")
	}

	title := v.Title.Value
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	preview := m.preview.View()
	if m.previewFor != v.MemoID {
		if m.previewFailedFor == v.MemoID {
			preview = label.Render("Preview unavailable")
		} else {
			preview = label.Render("Rendering…")
		}
	}
	rule := lipgloss.NewStyle().Foreground(colorBorder).Render(strings.Repeat("─", max(1, width)))
	return strings.Join([]string{heading.Render(title), rule, preview}, "\n")
}

func (m appModel) renderFooter(v present.View) string {
	if m.minibufferText != "" {
		return normalizePane(m.minibufferText, m.width, 1)
	}
	var keys []string
	if v.EditVisible {
		keys = append(keys, "enter select", "a add", "e edit", "d delete", "x export", "y copy", "q quit")
	}
	if v.SaveVisible {
		if m.focus == focusList {
			keys = append(keys, "enter select (drops draft)", "a add", "d delete", "e back to draft", "ctrl+s save")
		} else {
			keys = append(keys, "ctrl+s save", "tab switch field", "esc list", "ctrl+e $EDITOR", "ctrl+c quit")
		}
	}
	return normalizePane(styleMuted().Render(strings.Join(keys, "  ")), m.width, 1)
}
