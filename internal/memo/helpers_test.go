package memo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"memo-cli/internal/model"
	"memo-cli/internal/store"

	"github.com/stretchr/testify/require"
)

type tickClock struct{ t time.Time }

func (c *tickClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func seqIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("memo-%03d", n), nil
	}
}

// flakyStore wraps a Store and can be told to fail the next Save.
type flakyStore struct {
	*store.Store
	failNext bool
}

func (f *flakyStore) Save(ctx context.Context, key string, memos []model.Memo) error {
	if f.failNext {
		f.failNext = false
		return errors.New("write refused")
	}
	return f.Store.Save(ctx, key, memos)
}

func newTestStore() *store.Store {
	return store.New(store.NewMemoryKV(), nil)
}

func newTestRepo(t *testing.T, p Persister) *Repository {
	t.Helper()
	clock := &tickClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	return NewRepository(p, store.DefaultKey, WithClock(clock.Now), WithIDGenerator(seqIDs()))
}

func newTestSession(t *testing.T, p Persister) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), newTestRepo(t, p), nil)
	require.NoError(t, err)
	return s
}

// requirePersisted asserts a fresh read of storage equals the in-memory list.
func requirePersisted(t *testing.T, st *store.Store, r *Repository) {
	t.Helper()
	require.Equal(t, r.Memos(), st.Load(context.Background(), r.Key()))
}
