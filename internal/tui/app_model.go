package tui

import (
	"context"
	"errors"
	"time"

	"memo-cli/internal/memo"
	"memo-cli/internal/present"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type focusArea int

const (
	focusList focusArea = iota
	focusTitle
	focusBody
)

const minibufferAutoClearAfter = 4 * time.Second

type previewDoneMsg struct {
	res present.PreviewResult
}

type minibufferClearMsg struct {
	at time.Time
}

type appModel struct {
	ctx       context.Context
	session   *memo.Session
	log       *zap.Logger
	exportDir string

	// copy and render are swapped out in tests.
	copy   func(string) error
	render func(width int) present.Renderer

	width  int
	height int

	list    list.Model
	title   textinput.Model
	body    textarea.Model
	preview viewport.Model

	previewer *present.Previewer
	// previewFor/previewSrc/previewW describe what the viewport currently shows;
	// the want* fields describe the latest job started.
	previewFor  string
	previewSrc  string
	previewW    int
	wantFor     string
	wantSrc     string
	wantW       int
	wantSeq     uint64
	previewBusy bool
	// previewFailedFor is the memo whose latest render failed.
	previewFailedFor string

	focus  focusArea
	notice string

	minibufferText  string
	minibufferSetAt time.Time

	externalEditorPath   string
	externalEditorBefore string
}

func newAppModel(ctx context.Context, opts Options) appModel {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Title"

	body := textarea.New()
	body.Placeholder = "Write markdown…"
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.MaxHeight = 0

	m := appModel{
		ctx:       ctx,
		session:   opts.Session,
		log:       log,
		exportDir: opts.ExportDir,
		copy:      copyToClipboard,
		render:    glamourRenderer,
		list:      newMemoList(),
		title:     title,
		body:      body,
		preview:   viewport.New(0, 0),
		previewer: present.NewPreviewer(log),
		focus:     focusList,
	}
	m.syncList(true)
	return m
}

func (m appModel) view() present.View {
	return present.Project(m.session.Snapshot(), m.notice)
}

// syncList rebuilds the list from the session. When moveCursor is set the
// cursor jumps to the active memo.
func (m *appModel) syncList(moveCursor bool) {
	v := m.view()
	items := make([]list.Item, 0, len(v.Labels))
	for _, l := range v.Labels {
		items = append(items, memoItem{label: l})
	}
	cursor := m.list.Index()
	m.list.SetItems(items)
	if moveCursor {
		cursor = v.ActiveLabel()
	}
	if cursor >= len(items) {
		cursor = len(items) - 1
	}
	if cursor >= 0 {
		m.list.Select(cursor)
	}
}

// loadDraft copies the active memo into the edit widgets.
func (m *appModel) loadDraft() tea.Cmd {
	active := m.session.Active()
	m.title.SetValue(active.Title)
	m.title.CursorEnd()
	m.body.SetValue(active.Body)
	return m.setFocus(focusTitle)
}

func (m *appModel) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.title.Blur()
	m.body.Blur()
	switch f {
	case focusTitle:
		return m.title.Focus()
	case focusBody:
		return m.body.Focus()
	}
	return nil
}

func (m *appModel) showMinibuffer(text string) tea.Cmd {
	m.minibufferText = text
	m.minibufferSetAt = time.Now()
	at := m.minibufferSetAt
	return tea.Tick(minibufferAutoClearAfter, func(time.Time) tea.Msg { return minibufferClearMsg{at: at} })
}

func (m *appModel) previewWidth() int {
	if m.preview.Width > 0 {
		return m.preview.Width
	}
	return 80
}

// previewCmd starts a render job when the viewport is out of date for the
// active memo. Starting a job supersedes any job still in flight.
func (m *appModel) previewCmd() tea.Cmd {
	if m.session.Mode() != memo.ModeViewing {
		return nil
	}
	v := m.view()
	if v.MemoID == "" {
		return nil
	}
	w := m.previewWidth()
	if v.MemoID == m.previewFor && v.PreviewSource == m.previewSrc && w == m.previewW {
		return nil
	}
	if m.previewBusy && v.MemoID == m.wantFor && v.PreviewSource == m.wantSrc && w == m.wantW {
		return nil
	}
	job := m.previewer.Start(m.ctx, m.render(w), v.MemoID, v.PreviewSource)
	m.wantFor, m.wantSrc, m.wantW, m.wantSeq = v.MemoID, v.PreviewSource, w, job.Seq
	m.previewBusy = true
	return func() tea.Msg { return previewDoneMsg{res: job.Run()} }
}

func (m *appModel) applyPreview(res present.PreviewResult) {
	activeID := m.session.Active().ID
	if res.Seq == m.wantSeq {
		m.previewBusy = false
		if res.Err != nil && !errors.Is(res.Err, context.Canceled) && res.MemoID == activeID {
			m.previewFailedFor = res.MemoID
		}
	}
	if !m.previewer.Accept(res, activeID) {
		return
	}
	m.previewFailedFor = ""
	m.previewFor, m.previewSrc, m.previewW = m.wantFor, m.wantSrc, m.wantW
	m.preview.SetContent(res.Output)
	m.preview.GotoTop()
}

func (m *appModel) resize() {
	listW, detailW, paneH := m.paneSizes()
	m.list.SetSize(listW, paneH)
	m.title.Width = max(1, detailW-2)
	m.body.SetWidth(detailW)
	m.body.SetHeight(max(1, paneH-3))
	m.preview.Width = detailW
	m.preview.Height = max(1, paneH-2)
}

func (m appModel) paneSizes() (listW, detailW, paneH int) {
	listW = m.width / 3
	if listW < 20 {
		listW = 20
	}
	if listW > 40 {
		listW = 40
	}
	detailW = max(10, m.width-listW-3)
	// header, blank line, footer
	paneH = max(3, m.height-3)
	return listW, detailW, paneH
}
