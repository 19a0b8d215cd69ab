package memo

import (
	"context"

	"memo-cli/internal/model"

	"go.uber.org/zap"
)

// Mode is whether the active memo is shown read-only or open for editing.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	default:
		return "viewing"
	}
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	Memos    []model.Memo
	Selected int
	Mode     Mode
}

// Active returns the selected memo, or false when the snapshot is empty.
func (s Snapshot) Active() (model.Memo, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Memos) {
		return model.Memo{}, false
	}
	return s.Memos[s.Selected], true
}

// Session is the selection/edit state machine over a Repository. It is owned
// by exactly one UI controller; it does no locking of its own.
type Session struct {
	repo     *Repository
	selected int
	mode     Mode
	log      *zap.Logger
}

// NewSession loads the repository (bootstrapping defaults on first run) and
// starts at the first memo in viewing mode.
func NewSession(ctx context.Context, repo *Repository, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := repo.Load(ctx); err != nil {
		return nil, err
	}
	return &Session{repo: repo, selected: 0, mode: ModeViewing, log: log}, nil
}

func (s *Session) Repository() *Repository { return s.repo }
func (s *Session) Selected() int            { return s.selected }
func (s *Session) Mode() Mode               { return s.mode }

// Active returns the selected memo.
func (s *Session) Active() model.Memo {
	return s.repo.At(s.selected)
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{Memos: s.repo.Memos(), Selected: s.selected, Mode: s.mode}
}

// Add creates a memo at the end of the list, selects it and enters editing.
func (s *Session) Add(ctx context.Context) (model.Memo, error) {
	m, err := s.repo.Create(ctx)
	if err != nil {
		return model.Memo{}, err
	}
	s.selected = s.repo.Len() - 1
	s.mode = ModeEditing
	return m, nil
}

// Select shows the memo with id in viewing mode. An unknown id changes nothing.
func (s *Session) Select(id string) error {
	idx, ok := s.repo.FindIndexByID(id)
	if !ok {
		s.log.Warn("select: unknown memo id; ignoring", zap.String("memoId", id))
		return NotFoundError{ID: id}
	}
	s.selected = idx
	s.mode = ModeViewing
	return nil
}

// Edit opens the active memo for editing.
func (s *Session) Edit() {
	s.mode = ModeEditing
}

// Save writes title and body to the active memo and returns to viewing mode.
func (s *Session) Save(ctx context.Context, title, body string) error {
	if err := s.repo.Update(ctx, s.selected, title, body); err != nil {
		return err
	}
	s.mode = ModeViewing
	return nil
}

// Delete removes the active memo and selects the one before it. Deleting the
// only memo returns *LastMemoError and leaves the state untouched.
func (s *Session) Delete(ctx context.Context) error {
	id := s.Active().ID
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.selected = max(0, s.selected-1)
	s.mode = ModeViewing
	return nil
}
