package todo

import (
	"context"
	"sync"

	"github.com/existflow/irontodo/internal/store"
)

// Registry keeps one long-lived Manager per list so that staged deletes
// outlive the call that confirmed them.
type Registry struct {
	mu       sync.Mutex
	store    store.Store
	opts     []Option
	managers map[string]*Manager
}

// NewRegistry creates a registry whose managers share st and opts
func NewRegistry(st store.Store, opts ...Option) *Registry {
	return &Registry{
		store:    st,
		opts:     opts,
		managers: make(map[string]*Manager),
	}
}

// For returns the manager for username, loading it on first use
func (r *Registry) For(ctx context.Context, username string) (*Manager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := StorageKey(username)
	if m, ok := r.managers[key]; ok {
		return m, nil
	}

	m, err := Open(ctx, r.store, username, r.opts...)
	if err != nil {
		return nil, err
	}
	r.managers[key] = m
	return m, nil
}

// Close flushes every manager's pending removals
func (r *Registry) Close() error {
	r.mu.Lock()
	managers := make([]*Manager, 0, len(r.managers))
	for _, m := range r.managers {
		managers = append(managers, m)
	}
	r.managers = make(map[string]*Manager)
	r.mu.Unlock()

	for _, m := range managers {
		_ = m.Close()
	}
	return nil
}
