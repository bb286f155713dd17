package todo

import (
	"context"

	"github.com/existflow/irontodo/internal/model"
	"go.uber.org/zap"
)

// RequestDelete marks id as awaiting confirmation. Only one request is pending at a time;
// a new request replaces the previous one. The list is not changed.
func (m *Manager) RequestDelete(id string) (model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return model.Todo{}, ErrNotFound
	}
	m.pending = id
	return m.todos[idx], nil
}

// Pending returns the task awaiting delete confirmation, if any
func (m *Manager) Pending() (model.Todo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == "" {
		return model.Todo{}, false
	}
	idx := m.indexOf(m.pending)
	if idx < 0 {
		return model.Todo{}, false
	}
	return m.todos[idx], true
}

// CancelDelete discards the pending request
func (m *Manager) CancelDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = ""
}

// ConfirmDelete flags the task as deleting and schedules its removal after the delete delay.
// An empty id confirms the pending request. Confirming a task already being deleted is a no-op.
func (m *Manager) ConfirmDelete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.pending
	}
	idx := m.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	if m.pending == id {
		m.pending = ""
	}
	if _, ok := m.removals[id]; ok {
		return nil
	}

	m.todos[idx].IsDeleting = true
	m.removals[id] = m.sched.AfterFunc(m.delay, func() { m.remove(id) })

	m.log.Debug("task removal scheduled", zap.String("id", id), zap.Duration("delay", m.delay))
	return nil
}

// AbortDelete stops a scheduled removal and returns the task to normal.
// It returns false if id was not being deleted.
func (m *Manager) AbortDelete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	timer, ok := m.removals[id]
	if !ok {
		return false
	}
	// Dropping the entry also defeats a callback that already fired and waits on the lock
	timer.Stop()
	delete(m.removals, id)

	if idx := m.indexOf(id); idx >= 0 {
		m.todos[idx].IsDeleting = false
	}
	return true
}

// DeleteState reports where id is in the staged delete
func (m *Manager) DeleteState(id string) model.DeleteState {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.removals[id] != nil:
		return model.DeleteDeleting
	case m.pending == id && id != "":
		return model.DeletePendingConfirmation
	case m.removed[id]:
		return model.DeleteRemoved
	default:
		return model.DeleteIdle
	}
}

// remove is the second phase of a staged delete
func (m *Manager) remove(id string) {
	m.mu.Lock()

	if _, ok := m.removals[id]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.removals, id)

	if err := m.reload(context.Background()); err != nil {
		if idx := m.indexOf(id); idx >= 0 {
			m.todos[idx].IsDeleting = false
		}
		m.mu.Unlock()
		m.log.Error("failed to remove task", zap.String("id", id), zap.Error(err))
		return
	}
	idx := m.indexOf(id)
	if idx < 0 {
		// Already removed through another manager
		m.removed[id] = true
		m.mu.Unlock()
		return
	}

	gone := m.todos[idx]
	next := make([]model.Todo, 0, len(m.todos)-1)
	next = append(next, m.todos[:idx]...)
	next = append(next, m.todos[idx+1:]...)

	if err := m.persist(context.Background(), next); err != nil {
		m.todos[idx].IsDeleting = false
		m.mu.Unlock()
		m.log.Error("failed to remove task", zap.String("id", id), zap.Error(err))
		return
	}
	m.todos = next
	m.removed[id] = true
	cb := m.onRemoved
	m.mu.Unlock()

	m.log.Info("task deleted", zap.String("id", id))
	if cb != nil {
		cb(gone)
	}
}

// Flush runs every scheduled removal now
func (m *Manager) Flush() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.removals))
	for id, timer := range m.removals {
		timer.Stop()
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.remove(id)
	}
}

// Close completes outstanding removals
func (m *Manager) Close() error {
	m.Flush()
	return nil
}
