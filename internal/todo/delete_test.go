package todo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagedDelete_RemovesAfterDelay(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	var removed []model.Todo
	m, sched := newTestManager(t, st, "alice", WithOnRemoved(func(td model.Todo) {
		removed = append(removed, td)
	}))

	keep, err := m.Add(ctx, "keep", "", "")
	require.NoError(t, err)
	target, err := m.Add(ctx, "target", "", "")
	require.NoError(t, err)

	got, err := m.RequestDelete(target.ID)
	require.NoError(t, err)
	assert.Equal(t, "target", got.Title)
	assert.Equal(t, model.DeletePendingConfirmation, m.DeleteState(target.ID))
	assert.Len(t, m.All(), 2)

	require.NoError(t, m.ConfirmDelete(target.ID))
	assert.Equal(t, model.DeleteDeleting, m.DeleteState(target.ID))
	td, ok := m.Get(target.ID)
	require.True(t, ok)
	assert.True(t, td.IsDeleting)
	_, pending := m.Pending()
	assert.False(t, pending)

	// Still stored until the delay passes
	sched.Advance(DefaultDeleteDelay - time.Millisecond)
	assert.Len(t, storedTodos(t, st, "alice"), 2)

	sched.Advance(time.Millisecond)
	assert.Equal(t, model.DeleteRemoved, m.DeleteState(target.ID))
	_, ok = m.Get(target.ID)
	assert.False(t, ok)

	stored := storedTodos(t, st, "alice")
	require.Len(t, stored, 1)
	assert.Equal(t, keep.ID, stored[0].ID)

	require.Len(t, removed, 1)
	assert.Equal(t, target.ID, removed[0].ID)
}

func TestStagedDelete_CancelLeavesListUntouched(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m, sched := newTestManager(t, st, "alice")

	td, err := m.Add(ctx, "survivor", "", "")
	require.NoError(t, err)
	before := storedTodos(t, st, "alice")

	_, err = m.RequestDelete(td.ID)
	require.NoError(t, err)
	m.CancelDelete()

	sched.Advance(time.Hour)
	assert.Equal(t, model.DeleteIdle, m.DeleteState(td.ID))
	assert.Equal(t, before, storedTodos(t, st, "alice"))
	assert.Len(t, m.All(), 1)

	// Nothing left to confirm
	assert.ErrorIs(t, m.ConfirmDelete(""), ErrNotFound)
}

func TestStagedDelete_ConfirmPending(t *testing.T) {
	ctx := context.Background()
	m, sched := newTestManager(t, store.NewMemory(), "alice")

	td, err := m.Add(ctx, "x", "", "")
	require.NoError(t, err)
	_, err = m.RequestDelete(td.ID)
	require.NoError(t, err)

	pending, ok := m.Pending()
	require.True(t, ok)
	assert.Equal(t, td.ID, pending.ID)

	require.NoError(t, m.ConfirmDelete(""))
	sched.Advance(DefaultDeleteDelay)
	assert.Empty(t, m.All())
}

func TestStagedDelete_RequestMissing(t *testing.T) {
	m, _ := newTestManager(t, store.NewMemory(), "alice")

	_, err := m.RequestDelete("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.ConfirmDelete("nope"), ErrNotFound)
	assert.False(t, m.AbortDelete("nope"))
}

func TestStagedDelete_ConfirmTwiceSchedulesOnce(t *testing.T) {
	ctx := context.Background()
	m, sched := newTestManager(t, store.NewMemory(), "alice")

	td, err := m.Add(ctx, "x", "", "")
	require.NoError(t, err)

	require.NoError(t, m.ConfirmDelete(td.ID))
	require.NoError(t, m.ConfirmDelete(td.ID))
	assert.Equal(t, 1, sched.Pending())
}

func TestStagedDelete_Abort(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m, sched := newTestManager(t, st, "alice")

	td, err := m.Add(ctx, "saved at the last second", "", "")
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(td.ID))

	assert.True(t, m.AbortDelete(td.ID))
	assert.Zero(t, sched.Pending())

	sched.Advance(time.Hour)
	got, ok := m.Get(td.ID)
	require.True(t, ok)
	assert.False(t, got.IsDeleting)
	assert.Equal(t, model.DeleteIdle, m.DeleteState(td.ID))
	assert.Len(t, storedTodos(t, st, "alice"), 1)
}

func TestStagedDelete_OtherActionsApplyInOrder(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m, sched := newTestManager(t, st, "alice")

	a, err := m.Add(ctx, "a", "", "")
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(a.ID))

	// New work arriving before the timer fires is kept
	_, err = m.Add(ctx, "b", "", "")
	require.NoError(t, err)
	sched.Advance(DefaultDeleteDelay)

	assert.Equal(t, []string{"b"}, titles(m.All()))
	assert.Equal(t, []string{"b"}, titles(storedTodos(t, st, "alice")))
}

func TestStagedDelete_DeletingFlagNotPersisted(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m, _ := newTestManager(t, st, "alice")

	a, err := m.Add(ctx, "a", "", "")
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(a.ID))
	_, err = m.Add(ctx, "b", "", "")
	require.NoError(t, err)

	raw, err := st.Get(ctx, StorageKey("alice"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "isDeleting")
	assert.NotContains(t, string(raw), "IsDeleting")
}

func TestStagedDelete_FailedRemovalRestoresTask(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{Memory: store.NewMemory()}
	m, sched := newTestManager(t, st, "alice")

	td, err := m.Add(ctx, "a", "", "")
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(td.ID))

	st.setFail(true)
	sched.Advance(DefaultDeleteDelay)

	got, ok := m.Get(td.ID)
	require.True(t, ok)
	assert.False(t, got.IsDeleting)
	assert.Equal(t, model.DeleteIdle, m.DeleteState(td.ID))
}

func TestStagedDelete_ClearCompletedCancelsRemoval(t *testing.T) {
	ctx := context.Background()
	m, sched := newTestManager(t, store.NewMemory(), "alice")

	td, err := m.Add(ctx, "done", "", "")
	require.NoError(t, err)
	_, err = m.Toggle(ctx, td.ID)
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(td.ID))

	n, err := m.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, sched.Pending())
	assert.Equal(t, model.DeleteRemoved, m.DeleteState(td.ID))
}

func TestFlushRunsPendingRemovals(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m, sched := newTestManager(t, st, "alice")

	a, err := m.Add(ctx, "a", "", "")
	require.NoError(t, err)
	b, err := m.Add(ctx, "b", "", "")
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(a.ID))
	require.NoError(t, m.ConfirmDelete(b.ID))

	require.NoError(t, m.Close())
	assert.Empty(t, m.All())
	assert.Empty(t, storedTodos(t, st, "alice"))
	assert.Zero(t, sched.Pending())
}

func TestStagedDelete_RealScheduler(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	var wg sync.WaitGroup
	wg.Add(1)
	m, err := Open(ctx, st, "alice",
		WithDeleteDelay(10*time.Millisecond),
		WithOnRemoved(func(model.Todo) { wg.Done() }))
	require.NoError(t, err)

	td, err := m.Add(ctx, "a", "", "")
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(td.ID))

	wg.Wait()
	assert.Empty(t, m.All())
	assert.Empty(t, storedTodos(t, st, "alice"))
}

func TestStagedDelete_KeepsOtherManagersWrites(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m, sched := newTestManager(t, st, "alice")
	other, _ := newTestManager(t, st, "alice")

	target, err := m.Add(ctx, "target", "", "")
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(target.ID))

	_, err = other.Add(ctx, "added meanwhile", "", "")
	require.NoError(t, err)

	sched.Advance(DefaultDeleteDelay)
	assert.Equal(t, []string{"added meanwhile"}, titles(storedTodos(t, st, "alice")))
	assert.Equal(t, []string{"added meanwhile"}, titles(m.All()))
}

func TestStagedDelete_TaskRemovedElsewhere(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m, sched := newTestManager(t, st, "alice")

	td, err := m.Add(ctx, "done", "", "")
	require.NoError(t, err)
	_, err = m.Toggle(ctx, td.ID)
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(td.ID))

	other, _ := newTestManager(t, st, "alice")
	_, err = other.ClearCompleted(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Refresh(ctx))
	assert.Zero(t, sched.Pending())
	assert.Equal(t, model.DeleteRemoved, m.DeleteState(td.ID))
	assert.Empty(t, m.All())
}
