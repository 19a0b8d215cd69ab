package memo

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_StartsViewingFirstMemo(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, newTestStore())
	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, ModeViewing, s.Mode())
	assert.Equal(t, "new memo 1", s.Active().Title)

	snap := s.Snapshot()
	require.Len(t, snap.Memos, 2)
	active, ok := snap.Active()
	require.True(t, ok)
	assert.Equal(t, s.Active(), active)
}

func TestSession_Add_SelectsNewMemoInEditing(t *testing.T) {
	t.Parallel()

	st := newTestStore()
	s := newTestSession(t, st)

	m, err := s.Add(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new memo 3", m.Title)
	assert.Equal(t, 3, s.Repository().Len())
	assert.Equal(t, 2, s.Selected())
	assert.Equal(t, ModeEditing, s.Mode())
	assert.Equal(t, m, s.Active())
	requirePersisted(t, st, s.Repository())
}

func TestSession_Select(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, newTestStore())
	s.Edit()
	second := s.Repository().At(1)

	require.NoError(t, s.Select(second.ID))
	assert.Equal(t, 1, s.Selected())
	assert.Equal(t, ModeViewing, s.Mode())

	// Unknown id is a no-op, not a jump to index -1.
	s.Edit()
	var nf NotFoundError
	require.ErrorAs(t, s.Select("memo-missing"), &nf)
	assert.Equal(t, "memo-missing", nf.ID)
	assert.Equal(t, 1, s.Selected())
	assert.Equal(t, ModeEditing, s.Mode())
}

func TestSession_SelectThenSave_OnlyChangesThatMemo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore()
	s := newTestSession(t, st)
	before := s.Repository().Memos()
	b := before[1]

	require.NoError(t, s.Select(b.ID))
	s.Edit()
	require.Equal(t, ModeEditing, s.Mode())
	require.NoError(t, s.Save(ctx, "T", "B"))

	after := s.Repository().Memos()
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, b.ID, after[1].ID)
	assert.Equal(t, "T", after[1].Title)
	assert.Equal(t, "B", after[1].Body)
	assert.Equal(t, b.CreatedAt, after[1].CreatedAt)
	assert.Greater(t, after[1].UpdatedAt, after[1].CreatedAt)
	assert.Equal(t, ModeViewing, s.Mode())
	requirePersisted(t, st, s.Repository())
}

func TestSession_Delete_ClampsSelection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore()
	s := newTestSession(t, st)
	_, err := s.Add(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, s.Selected())

	require.NoError(t, s.Delete(ctx))
	assert.Equal(t, 1, s.Selected())
	assert.Equal(t, ModeViewing, s.Mode())
	assert.Equal(t, 2, s.Repository().Len())

	require.NoError(t, s.Select(s.Repository().At(0).ID))
	require.NoError(t, s.Delete(ctx))
	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, 1, s.Repository().Len())
	requirePersisted(t, st, s.Repository())
}

func TestSession_Delete_LastMemoIsNoOp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore()
	s := newTestSession(t, st)
	require.NoError(t, s.Delete(ctx))
	s.Edit()
	before := s.Snapshot()

	err := s.Delete(ctx)
	var last *LastMemoError
	require.ErrorAs(t, err, &last)
	assert.Equal(t, "cannot delete the last memo", err.Error())
	assert.Equal(t, before, s.Snapshot())
	requirePersisted(t, st, s.Repository())
}

func TestSession_FailedSaveKeepsEditing(t *testing.T) {
	t.Parallel()

	fs := &flakyStore{Store: newTestStore()}
	s := newTestSession(t, fs)
	s.Edit()
	before := s.Snapshot()

	fs.failNext = true
	require.Error(t, s.Save(context.Background(), "T", "B"))
	assert.Equal(t, before, s.Snapshot())
}

// Property: size tracks creates minus successful deletes, never drops below 1,
// and storage agrees with memory after every step.
func TestSession_RandomOperations_SizeAndPersistence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		st := newTestStore()
		s := newTestSession(t, st)
		want := s.Repository().Len()

		for step := 0; step < 60; step++ {
			switch rng.Intn(4) {
			case 0:
				_, err := s.Add(ctx)
				require.NoError(t, err)
				want++
			case 1:
				require.NoError(t, s.Save(ctx, "t", "b"))
			case 2:
				memos := s.Repository().Memos()
				require.NoError(t, s.Select(memos[rng.Intn(len(memos))].ID))
			case 3:
				err := s.Delete(ctx)
				if want == 1 {
					var last *LastMemoError
					require.ErrorAs(t, err, &last)
				} else {
					require.NoError(t, err)
					want--
				}
			}
			require.Equal(t, want, s.Repository().Len())
			require.GreaterOrEqual(t, s.Repository().Len(), 1)
			require.GreaterOrEqual(t, s.Selected(), 0)
			require.Less(t, s.Selected(), s.Repository().Len())
			requirePersisted(t, st, s.Repository())
		}
	}
}
