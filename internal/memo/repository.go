package memo

import (
	"context"
	"fmt"
	"time"

	"memo-cli/internal/model"
	"memo-cli/internal/store"

	"go.uber.org/zap"
)

// bootstrapCount is how many memos a first run starts with.
const bootstrapCount = 2

// Persister is the slice of the storage adapter the repository needs.
type Persister interface {
	Load(ctx context.Context, key string) []model.Memo
	Save(ctx context.Context, key string, memos []model.Memo) error
}

// Repository is the in-memory, ordered memo list. Every mutation is flushed to
// the Persister before it returns; a failed flush undoes the mutation.
type Repository struct {
	memos []model.Memo
	store Persister
	key   string
	log   *zap.Logger

	now   func() time.Time
	newID func() (string, error)
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the time source for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator replaces the random memo id source.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(r *Repository) { r.newID = gen }
}

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Repository) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRepository returns an empty repository over p. An empty key means
// store.DefaultKey. Call Load before use.
func NewRepository(p Persister, key string, opts ...Option) *Repository {
	if key == "" {
		key = store.DefaultKey
	}
	r := &Repository{
		store: p,
		key:   key,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: func() (string, error) { return store.NewRandomID("memo") },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key is the storage key the list is persisted under.
func (r *Repository) Key() string { return r.key }

// Load replaces the in-memory list with the persisted one. When storage holds
// no memos it creates the first-run defaults and persists them.
func (r *Repository) Load(ctx context.Context) (bootstrapped bool, err error) {
	r.memos = r.store.Load(ctx, r.key)
	if len(r.memos) > 0 {
		return false, nil
	}
	for i := 0; i < bootstrapCount; i++ {
		m, err := r.newMemo()
		if err != nil {
			r.memos = nil
			return false, err
		}
		r.memos = append(r.memos, m)
	}
	if err := r.store.Save(ctx, r.key, r.memos); err != nil {
		r.memos = nil
		return false, fmt.Errorf("bootstrap: %w", err)
	}
	r.log.Info("bootstrapped default memos", zap.Int("count", len(r.memos)))
	return true, nil
}

// Len is the number of memos.
func (r *Repository) Len() int { return len(r.memos) }

// At returns the memo at index i. It panics if i is out of range.
func (r *Repository) At(i int) model.Memo { return r.memos[i] }

// Memos returns a copy of the ordered list.
func (r *Repository) Memos() []model.Memo {
	out := make([]model.Memo, len(r.memos))
	copy(out, r.memos)
	return out
}

// FindIndexByID returns the position of the memo with id.
func (r *Repository) FindIndexByID(id string) (int, bool) {
	for i, m := range r.memos {
		if m.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Create appends a default-titled memo and persists the list.
func (r *Repository) Create(ctx context.Context) (model.Memo, error) {
	m, err := r.newMemo()
	if err != nil {
		return model.Memo{}, err
	}
	prev := r.memos
	r.memos = append(r.Memos(), m)
	if err := r.flush(ctx); err != nil {
		r.memos = prev
		return model.Memo{}, err
	}
	return m, nil
}

// Update sets the title and body of the memo at index and bumps updatedAt.
func (r *Repository) Update(ctx context.Context, index int, title, body string) error {
	if index < 0 || index >= len(r.memos) {
		return NotFoundError{ID: fmt.Sprintf("#%d", index)}
	}
	prev := r.memos[index]
	next := prev
	next.Title = title
	next.Body = body
	next.UpdatedAt = model.UnixMilli(r.now())
	r.memos[index] = next
	if err := r.flush(ctx); err != nil {
		r.memos[index] = prev
		return err
	}
	return nil
}

// Delete removes the memo with id. The last memo cannot be deleted.
func (r *Repository) Delete(ctx context.Context, id string) error {
	idx, ok := r.FindIndexByID(id)
	if !ok {
		return NotFoundError{ID: id}
	}
	if len(r.memos) == 1 {
		return &LastMemoError{ID: id}
	}
	prev := r.memos
	next := make([]model.Memo, 0, len(prev)-1)
	next = append(next, prev[:idx]...)
	next = append(next, prev[idx+1:]...)
	r.memos = next
	if err := r.flush(ctx); err != nil {
		r.memos = prev
		return err
	}
	return nil
}

func (r *Repository) flush(ctx context.Context) error {
	if err := r.store.Save(ctx, r.key, r.memos); err != nil {
		r.log.Error("persist failed; change rolled back", zap.String("key", r.key), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) newMemo() (model.Memo, error) {
	id, err := r.uniqueID()
	if err != nil {
		return model.Memo{}, err
	}
	ts := model.UnixMilli(r.now())
	return model.Memo{
		ID:        id,
		Title:     fmt.Sprintf("new memo %d", len(r.memos)+1),
		Body:      "",
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

func (r *Repository) uniqueID() (string, error) {
	const attempts = 8
	for i := 0; i < attempts; i++ {
		id, err := r.newID()
		if err != nil {
			return "", err
		}
		if _, taken := r.FindIndexByID(id); !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique memo id after %d attempts", attempts)
}
