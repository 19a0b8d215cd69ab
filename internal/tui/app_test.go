package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"memo-cli/internal/memo"
	"memo-cli/internal/present"
	"memo-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"
)

func newTestModel(t *testing.T) (appModel, *store.Store) {
	t.Helper()
	log := zaptest.NewLogger(t)
	st := store.New(store.NewMemoryKV(), log)
	repo := memo.NewRepository(st, store.DefaultKey, memo.WithLogger(log))
	sess, err := memo.NewSession(context.Background(), repo, log)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	m := newAppModel(context.Background(), Options{Session: sess, Log: log, ExportDir: t.TempDir()})
	m.render = func(int) present.Renderer {
		return present.RendererFunc(func(_ context.Context, src string) (string, error) {
			return "R:" + src, nil
		})
	}
	m.copy = func(string) error { return errors.New("copy not stubbed") }
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return settlePreview(mm.(appModel)), st
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// press feeds msg through Update and then renders the preview synchronously
// so assertions see a settled model. Other commands (cursor blink, minibuffer
// timers) are dropped.
func press(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	mm, _ := m.Update(msg)
	return settlePreview(mm.(appModel))
}

func settlePreview(m appModel) appModel {
	m.previewBusy = false
	cmd := m.previewCmd()
	if cmd == nil {
		return m
	}
	mm, _ := m.Update(cmd())
	return mm.(appModel)
}

func TestAppModel_StartsViewingFirstMemo(t *testing.T) {
	m, _ := newTestModel(t)
	if got := m.session.Mode(); got != memo.ModeViewing {
		t.Fatalf("expected viewing mode, got %s", got)
	}
	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected 2 bootstrapped memos, got %d", got)
	}
	if m.list.Index() != 0 {
		t.Fatalf("expected cursor on first memo, got %d", m.list.Index())
	}
}

func TestAppModel_AddEntersEditingAndSavePersists(t *testing.T) {
	m, st := newTestModel(t)

	m = press(t, m, runes("a"))
	if got := m.session.Mode(); got != memo.ModeEditing {
		t.Fatalf("expected editing after add, got %s", got)
	}
	if m.session.Selected() != 2 || m.list.Index() != 2 {
		t.Fatalf("expected new memo selected; selected=%d cursor=%d", m.session.Selected(), m.list.Index())
	}
	if got := m.title.Value(); got != "new memo 3" {
		t.Fatalf("expected draft title %q, got %q", "new memo 3", got)
	}
	if m.focus != focusTitle {
		t.Fatalf("expected title focus, got %v", m.focus)
	}

	m.title.SetValue("Groceries")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusBody {
		t.Fatalf("expected tab to move focus to body, got %v", m.focus)
	}
	m.body.SetValue("- milk")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if got := m.session.Mode(); got != memo.ModeViewing {
		t.Fatalf("expected viewing after save, got %s", got)
	}
	saved := st.Load(context.Background(), store.DefaultKey)
	if len(saved) != 3 || saved[2].Title != "Groceries" || saved[2].Body != "- milk" {
		t.Fatalf("unexpected persisted memos: %+v", saved)
	}
	if m.previewFor != saved[2].ID || !strings.Contains(m.preview.View(), "R:- milk") {
		t.Fatalf("expected preview of saved memo; for=%q view=%q", m.previewFor, m.preview.View())
	}
}

func TestAppModel_EnterSelectsMemoUnderCursor(t *testing.T) {
	m, _ := newTestModel(t)
	first := m.session.Active().ID

	m = press(t, m, runes("j"))
	if m.list.Index() != 1 {
		t.Fatalf("expected cursor to move, got %d", m.list.Index())
	}
	if m.session.Active().ID != first {
		t.Fatalf("moving the cursor must not change the active memo")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Selected() != 1 {
		t.Fatalf("expected second memo active, got %d", m.session.Selected())
	}
	if m.previewFor != m.session.Active().ID {
		t.Fatalf("expected preview for the newly active memo")
	}
}

func TestAppModel_DeleteLastMemoShowsNotice(t *testing.T) {
	m, st := newTestModel(t)

	m = press(t, m, runes("d"))
	if got := len(m.list.Items()); got != 1 {
		t.Fatalf("expected one memo left, got %d", got)
	}
	m = press(t, m, runes("d"))
	if m.notice != lastMemoNotice {
		t.Fatalf("expected last-memo notice, got %q", m.notice)
	}
	if !strings.Contains(m.View(), lastMemoNotice) {
		t.Fatalf("expected notice in view")
	}

	// Keys other than enter/esc are swallowed while the notice is up.
	m = press(t, m, runes("a"))
	if len(st.Load(context.Background(), store.DefaultKey)) != 1 {
		t.Fatalf("expected no add while the notice is shown")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.notice != "" {
		t.Fatalf("expected notice dismissed, got %q", m.notice)
	}
	if got := m.session.Mode(); got != memo.ModeViewing {
		t.Fatalf("expected viewing mode, got %s", got)
	}
}

func TestAppModel_DropsStalePreview(t *testing.T) {
	m, _ := newTestModel(t)
	firstID := m.session.Active().ID

	// Start a job for the first memo, then switch before it finishes.
	m.previewFor = ""
	cmd := m.previewCmd()
	if cmd == nil {
		t.Fatalf("expected a preview job")
	}
	stale := cmd()

	m = press(t, m, runes("j"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	secondID := m.session.Active().ID
	if secondID == firstID {
		t.Fatalf("expected active memo to change")
	}

	mm, _ := m.Update(stale)
	m = mm.(appModel)
	if m.previewFor != secondID {
		t.Fatalf("stale preview replaced the active one: previewFor=%q", m.previewFor)
	}
}

func TestAppModel_ExportWritesActiveBody(t *testing.T) {
	m, _ := newTestModel(t)
	active := m.session.Active()

	m = press(t, m, runes("x"))
	if !strings.HasPrefix(m.minibufferText, "Exported: ") {
		t.Fatalf("expected export message, got %q", m.minibufferText)
	}
	b, err := os.ReadFile(filepath.Join(m.exportDir, present.SafeFileName(active.Title+".md")))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(b) != active.Body {
		t.Fatalf("expected export to equal body; got %q", string(b))
	}
}

func TestAppModel_CopyUsesClipboard(t *testing.T) {
	m, _ := newTestModel(t)
	var got string
	m.copy = func(s string) error {
		got = s
		return nil
	}

	m = press(t, m, runes("y"))
	if got != m.session.Active().Body {
		t.Fatalf("expected body copied, got %q", got)
	}
	if !strings.HasPrefix(m.minibufferText, "Copied") {
		t.Fatalf("expected copy message, got %q", m.minibufferText)
	}
}

func TestAppModel_MinibufferClearsOnlyForLatestMessage(t *testing.T) {
	m, _ := newTestModel(t)
	(&m).showMinibuffer("first")
	old := m.minibufferSetAt
	(&m).showMinibuffer("second")
	m.minibufferSetAt = old.Add(1)

	mm, _ := m.Update(minibufferClearMsg{at: old})
	m = mm.(appModel)
	if m.minibufferText != "second" {
		t.Fatalf("expected newer message to survive, got %q", m.minibufferText)
	}
}

func TestAppModel_QuitKeys(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}

	m = press(t, m, runes("e"))
	m = press(t, m, runes("q"))
	if got := m.session.Mode(); got != memo.ModeEditing {
		t.Fatalf("q must not leave editing, got %s", got)
	}
	if !strings.HasSuffix(m.title.Value(), "q") {
		t.Fatalf("expected q typed into the title, got %q", m.title.Value())
	}
}

func TestAppModel_SelectFromEditingDropsDraft(t *testing.T) {
	m, st := newTestModel(t)
	first := m.session.Active()

	m = press(t, m, runes("e"))
	m = press(t, m, runes("x"))
	if got := m.title.Value(); got != first.Title+"x" {
		t.Fatalf("expected draft edit, got %q", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != focusList {
		t.Fatalf("expected esc to focus the list, got %v", m.focus)
	}
	if got := m.session.Mode(); got != memo.ModeEditing {
		t.Fatalf("esc alone must keep the draft open, got %s", got)
	}

	m = press(t, m, runes("j"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Selected() != 1 {
		t.Fatalf("expected second memo selected, got %d", m.session.Selected())
	}
	if got := m.session.Mode(); got != memo.ModeViewing {
		t.Fatalf("expected viewing after select, got %s", got)
	}
	saved := st.Load(context.Background(), store.DefaultKey)
	if saved[0].Title != first.Title || saved[0].UpdatedAt != first.UpdatedAt {
		t.Fatalf("draft must not be persisted: %+v", saved[0])
	}
}

func TestAppModel_EscThenEReturnsToDraft(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, runes("e"))
	m = press(t, m, runes("z"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = press(t, m, runes("e"))
	if m.focus != focusTitle {
		t.Fatalf("expected title focus, got %v", m.focus)
	}
	if !strings.HasSuffix(m.title.Value(), "z") {
		t.Fatalf("expected draft kept, got %q", m.title.Value())
	}
}

func TestAppModel_AddAndDeleteFromEditing(t *testing.T) {
	m, st := newTestModel(t)

	m = press(t, m, runes("e"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = press(t, m, runes("a"))
	if got := len(st.Load(context.Background(), store.DefaultKey)); got != 3 {
		t.Fatalf("expected add from editing, got %d memos", got)
	}
	if m.session.Selected() != 2 || m.title.Value() != "new memo 3" || m.focus != focusTitle {
		t.Fatalf("expected fresh draft for the new memo; selected=%d title=%q focus=%v", m.session.Selected(), m.title.Value(), m.focus)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = press(t, m, runes("d"))
	if got := len(st.Load(context.Background(), store.DefaultKey)); got != 2 {
		t.Fatalf("expected delete from editing, got %d memos", got)
	}
	if got := m.session.Mode(); got != memo.ModeViewing {
		t.Fatalf("expected viewing after delete, got %s", got)
	}
	if m.session.Selected() != 1 {
		t.Fatalf("expected previous memo selected, got %d", m.session.Selected())
	}
}

func TestAppModel_FailedPreviewIsReported(t *testing.T) {
	m, _ := newTestModel(t)
	m.render = func(int) present.Renderer {
		return present.RendererFunc(func(context.Context, string) (string, error) {
			return "", errors.New("boom")
		})
	}

	m = press(t, m, runes("j"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.previewBusy {
		t.Fatalf("expected preview to settle after a failed render")
	}
	if m.previewFailedFor != m.session.Active().ID {
		t.Fatalf("expected failure recorded for the active memo, got %q", m.previewFailedFor)
	}
	view := m.View()
	if !strings.Contains(view, "Preview unavailable") || strings.Contains(view, "Rendering…") {
		t.Fatalf("expected unavailable preview in view:\n%s", view)
	}
}
