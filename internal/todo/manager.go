// Package todo holds the state manager for one user's task list: mutations, staged deletes
// and derived views, with every change mirrored to a store.
package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDeleteDelay is how long a confirmed delete stays visible before removal
const DefaultDeleteDelay = 500 * time.Millisecond

const guestUser = "guest"

// StorageKey returns the store key holding username's list
func StorageKey(username string) string {
	if username == "" {
		username = guestUser
	}
	return "todos_" + username
}

// Option configures a Manager
type Option func(*Manager)

// WithDeleteDelay sets the pause between confirming a delete and removing the task
func WithDeleteDelay(d time.Duration) Option {
	return func(m *Manager) { m.delay = d }
}

// WithScheduler replaces the wall-clock scheduler used for staged deletes
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) { m.sched = s }
}

// WithClock sets the time source for creation timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithOnRemoved registers a callback run after a staged delete removes a task.
// It is called without the manager lock held, possibly from a timer goroutine.
func WithOnRemoved(f func(model.Todo)) Option {
	return func(m *Manager) { m.onRemoved = f }
}

// Manager owns the ordered task list of a single user.
// The list is kept newest first. Every mutation first reloads the stored list, then
// rewrites the whole list to the store before it becomes visible in memory.
type Manager struct {
	mu       sync.Mutex
	store    store.Store
	key      string
	username string
	todos    []model.Todo

	// Staged delete
	pending  string           // id awaiting confirmation
	removals map[string]Timer // ids in the Deleting state
	removed  map[string]bool

	delay     time.Duration
	sched     Scheduler
	now       func() time.Time
	log       *zap.Logger
	onRemoved func(model.Todo)
}

// Open loads username's list from st. A missing or undecodable value yields an empty list.
func Open(ctx context.Context, st store.Store, username string, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:    st,
		key:      StorageKey(username),
		username: username,
		removals: make(map[string]Timer),
		removed:  make(map[string]bool),
		delay:    DefaultDeleteDelay,
		sched:    RealScheduler{},
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(zap.String("list", m.key))

	todos, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	m.todos = todos
	m.log.Debug("list loaded", zap.Int("tasks", len(m.todos)))
	return m, nil
}

// load reads the stored list. A missing or undecodable value yields an empty list.
func (m *Manager) load(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	err := store.LoadJSON(ctx, m.store, m.key, &todos)
	var decErr *store.DecodeError
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		todos = nil
	case errors.As(err, &decErr):
		m.log.Warn("stored list is invalid, starting empty", zap.Error(err))
		todos = nil
	default:
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// reload replaces the in-memory list with the stored one so that writes made by
// another manager on the same key are kept. Scheduled removals keep their deleting
// flag; those whose task is already gone are dropped. Callers hold m.mu.
func (m *Manager) reload(ctx context.Context) error {
	todos, err := m.load(ctx)
	if err != nil {
		return err
	}

	present := make(map[string]bool, len(todos))
	for i := range todos {
		present[todos[i].ID] = true
		if _, ok := m.removals[todos[i].ID]; ok {
			todos[i].IsDeleting = true
		}
	}
	for id, timer := range m.removals {
		if !present[id] {
			timer.Stop()
			delete(m.removals, id)
			m.removed[id] = true
		}
	}
	if m.pending != "" && !present[m.pending] {
		m.pending = ""
	}

	m.todos = todos
	return nil
}

// Refresh picks up changes written to the store by other processes
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reload(ctx)
}

// Username returns the owner of the list
func (m *Manager) Username() string {
	return m.username
}

// persist writes next to the store. Callers hold m.mu.
func (m *Manager) persist(ctx context.Context, next []model.Todo) error {
	if err := store.SaveJSON(ctx, m.store, m.key, next); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

// indexOf returns the position of id, or -1. Callers hold m.mu.
func (m *Manager) indexOf(id string) int {
	for i := range m.todos {
		if m.todos[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) clone() []model.Todo {
	next := make([]model.Todo, len(m.todos))
	copy(next, m.todos)
	return next
}

func validateDueDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return ErrInvalidDueDate
	}
	return nil
}

// Add prepends a new active task
func (m *Manager) Add(ctx context.Context, title, description, dueDate string) (model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Todo{}, ErrEmptyTitle
	}
	dueDate = strings.TrimSpace(dueDate)
	if err := validateDueDate(dueDate); err != nil {
		return model.Todo{}, err
	}

	t := model.Todo{
		ID:          uuid.New().String(),
		Title:       title,
		Description: strings.TrimSpace(description),
		DueDate:     dueDate,
		CreatedAt:   m.now().UnixMilli(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return model.Todo{}, err
	}
	next := make([]model.Todo, 0, len(m.todos)+1)
	next = append(next, t)
	next = append(next, m.todos...)
	if err := m.persist(ctx, next); err != nil {
		return model.Todo{}, err
	}
	m.todos = next

	m.log.Debug("task added", zap.String("id", t.ID))
	return t, nil
}

// Toggle flips the completion flag of id
func (m *Manager) Toggle(ctx context.Context, id string) (model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return model.Todo{}, err
	}
	idx := m.indexOf(id)
	if idx < 0 {
		return model.Todo{}, ErrNotFound
	}

	next := m.clone()
	next[idx].Completed = !next[idx].Completed
	if err := m.persist(ctx, next); err != nil {
		return model.Todo{}, err
	}
	m.todos = next

	m.log.Debug("task toggled", zap.String("id", id), zap.Bool("completed", next[idx].Completed))
	return next[idx], nil
}

// Update merges p into the task with the given id
func (m *Manager) Update(ctx context.Context, id string, p model.Patch) (model.Todo, error) {
	var title, description, due string
	if p.Title != nil {
		title = strings.TrimSpace(*p.Title)
		if title == "" {
			return model.Todo{}, ErrEmptyTitle
		}
	}
	if p.Description != nil {
		description = strings.TrimSpace(*p.Description)
	}
	if p.DueDate != nil {
		due = strings.TrimSpace(*p.DueDate)
		if err := validateDueDate(due); err != nil {
			return model.Todo{}, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return model.Todo{}, err
	}
	idx := m.indexOf(id)
	if idx < 0 {
		return model.Todo{}, ErrNotFound
	}
	if p.IsEmpty() {
		return m.todos[idx], nil
	}

	next := m.clone()
	if p.Title != nil {
		next[idx].Title = title
	}
	if p.Description != nil {
		next[idx].Description = description
	}
	if p.DueDate != nil {
		next[idx].DueDate = due
	}
	if err := m.persist(ctx, next); err != nil {
		return model.Todo{}, err
	}
	m.todos = next

	m.log.Debug("task updated", zap.String("id", id))
	return next[idx], nil
}

// ClearCompleted removes every completed task and returns how many were removed
func (m *Manager) ClearCompleted(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return 0, err
	}
	next := make([]model.Todo, 0, len(m.todos))
	var cleared []string
	for _, t := range m.todos {
		if t.Completed {
			cleared = append(cleared, t.ID)
			continue
		}
		next = append(next, t)
	}
	if len(cleared) == 0 {
		return 0, nil
	}

	if err := m.persist(ctx, next); err != nil {
		return 0, err
	}
	m.todos = next

	for _, id := range cleared {
		if timer, ok := m.removals[id]; ok {
			timer.Stop()
			delete(m.removals, id)
		}
		if m.pending == id {
			m.pending = ""
		}
		m.removed[id] = true
	}

	m.log.Info("completed tasks cleared", zap.Int("count", len(cleared)))
	return len(cleared), nil
}

// Get returns the task with the given id
func (m *Manager) Get(id string) (model.Todo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return model.Todo{}, false
	}
	return m.todos[idx], true
}

// All returns a copy of the list in stored order
func (m *Manager) All() []model.Todo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clone()
}

// Resolve finds a task by full id or by a unique id prefix
func (m *Manager) Resolve(ref string) (model.Todo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Todo{}, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := m.indexOf(ref); idx >= 0 {
		return m.todos[idx], nil
	}

	var found []model.Todo
	for _, t := range m.todos {
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return model.Todo{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return model.Todo{}, ErrAmbiguous
	}
}

// Counts returns the number of active tasks and the total
func (m *Manager) Counts() (active, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.todos {
		if !t.Completed {
			active++
		}
	}
	return active, len(m.todos)
}
