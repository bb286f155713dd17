package todo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/store"
	"github.com/stretchr/testify/require"
)

// tickingClock returns a time source that advances by one millisecond per call
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func newTestManager(t *testing.T, st store.Store, username string, opts ...Option) (*Manager, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	base := []Option{WithScheduler(sched), WithClock(tickingClock())}
	m, err := Open(context.Background(), st, username, append(base, opts...)...)
	require.NoError(t, err)
	return m, sched
}

// storedTodos reads the persisted list for username straight from the store
func storedTodos(t *testing.T, st store.Store, username string) []model.Todo {
	t.Helper()
	var todos []model.Todo
	err := store.LoadJSON(context.Background(), st, StorageKey(username), &todos)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	require.NoError(t, err)
	return todos
}

func titles(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.Title
	}
	return out
}

// failingStore lets writes fail on demand
type failingStore struct {
	*store.Memory
	mu   sync.Mutex
	fail bool
}

func (f *failingStore) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}
