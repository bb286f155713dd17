package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/irontodo/internal/logger"
	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/todo"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeEditTask
	ModeSearch
	ModeConfirmDelete
	ModeHelp
)

// messageTTL is how long a toast stays in the status bar
const messageTTL = 3 * time.Second

// Removals carries tasks removed by the manager's delete timer to the UI
type Removals chan model.Todo

// NewRemovals creates a buffered removal channel
func NewRemovals() Removals {
	return make(Removals, 16)
}

// Notify is a todo.WithOnRemoved hook. It never blocks: when the buffer is
// full a refresh is already queued.
func (r Removals) Notify(t model.Todo) {
	select {
	case r <- t:
	default:
	}
}

// Model is the main TUI model
type Model struct {
	todos    *todo.Manager
	removals Removals
	tasks    []model.Todo // current view

	// View state
	filter model.Filter
	query  string

	// UI state
	width  int
	height int
	mode   Mode
	cursor int

	// Input
	input textinput.Model

	message   string
	messageAt time.Time
	now       func() time.Time
}

// NewModel creates a new TUI model over the given list
func NewModel(todos *todo.Manager, removals Removals) Model {
	logger.Info("Initializing TUI model", logger.F("list", todos.Username()))

	ti := textinput.New()
	ti.Placeholder = "title | description | YYYY-MM-DD"
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		todos:    todos,
		removals: removals,
		filter:   model.FilterAll,
		mode:     ModeNormal,
		input:    ti,
		now:      time.Now,
	}

	m.loadData()
	logger.Debug("TUI model initialized", logger.F("tasks", len(m.tasks)))
	return m
}

// loadData refreshes the visible rows from the manager
func (m *Model) loadData() {
	if err := m.todos.Refresh(context.Background()); err != nil {
		logger.Warn("Failed to reload tasks", logger.F("error", err))
	}
	m.tasks = m.todos.View(m.filter, m.query)
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) currentTask() *model.Todo {
	if m.cursor < len(m.tasks) {
		return &m.tasks[m.cursor]
	}
	return nil
}

// setMessage shows a toast in the status bar
func (m *Model) setMessage(msg string) {
	m.message = msg
	m.messageAt = m.now()
}
