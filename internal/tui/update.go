package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/irontodo/internal/logger"
	"github.com/existflow/irontodo/internal/model"
)

// tickMsg is sent every second for time updates
type tickMsg time.Time

// removedMsg is sent when a confirmed delete has been applied
type removedMsg struct {
	task model.Todo
}

// Init initializes the model with a tick command
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForRemoval())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForRemoval listens for removals applied by the manager
func (m Model) waitForRemoval() tea.Cmd {
	if m.removals == nil {
		return nil
	}
	return func() tea.Msg {
		t := <-m.removals
		return removedMsg{task: t}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.message != "" && m.now().Sub(m.messageAt) >= messageTTL {
			m.message = ""
		}
		// Pick up changes made by other commands
		if m.mode == ModeNormal {
			m.loadData()
		}
		// Continue ticking for time updates
		return m, tickCmd()

	case removedMsg:
		m.loadData()
		m.setMessage(fmt.Sprintf("Deleted: %s", msg.task.Title))
		return m, m.waitForRemoval()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle mode-specific input
		switch m.mode {
		case ModeAddTask, ModeEditTask:
			return m.updateInput(msg)
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		// Normal mode key handling
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Top):
		m.cursor = 0

	case key.Matches(msg, keys.Bottom):
		m.cursor = max(len(m.tasks)-1, 0)

	case key.Matches(msg, keys.Tab):
		m.setFilter(nextFilter(m.filter))

	case msg.String() == "1":
		m.setFilter(model.FilterAll)
	case msg.String() == "2":
		m.setFilter(model.FilterActive)
	case msg.String() == "3":
		m.setFilter(model.FilterCompleted)

	case key.Matches(msg, keys.Add):
		return m.startAddTask()

	case key.Matches(msg, keys.Edit):
		return m.startEditTask()

	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		m.handleToggleDone()

	case key.Matches(msg, keys.Delete):
		m.handleDelete()

	case key.Matches(msg, keys.Restore):
		m.handleRestore()

	case key.Matches(msg, keys.Clear):
		m.handleClearCompleted()

	case key.Matches(msg, keys.Search):
		return m.startSearch()

	case key.Matches(msg, keys.Escape):
		if m.query != "" {
			m.query = ""
			m.loadData()
			m.setMessage("Search cleared")
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

// setFilter switches the filter tab and drops any search
func (m *Model) setFilter(f model.Filter) {
	m.filter = f
	m.query = ""
	m.cursor = 0
	m.loadData()
}

func (m Model) startAddTask() (tea.Model, tea.Cmd) {
	m.mode = ModeAddTask
	m.input.SetValue("")
	m.input.Placeholder = "title | description | YYYY-MM-DD"
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) startEditTask() (tea.Model, tea.Cmd) {
	task := m.currentTask()
	if task == nil || task.IsDeleting {
		return m, nil
	}
	m.mode = ModeEditTask
	m.input.SetValue(formatEntry(*task))
	m.input.Placeholder = "title | description | YYYY-MM-DD"
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m Model) startSearch() (tea.Model, tea.Cmd) {
	m.mode = ModeSearch
	m.input.SetValue(m.query)
	m.input.Placeholder = "search title or description"
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m *Model) handleToggleDone() {
	task := m.currentTask()
	if task == nil || task.IsDeleting {
		return
	}
	t, err := m.todos.Toggle(context.Background(), task.ID)
	if err != nil {
		logger.Error("Failed to toggle task", logger.F("id", task.ID), logger.F("error", err))
		m.setMessage(fmt.Sprintf("Error: %v", err))
		return
	}
	if t.Completed {
		m.setMessage(fmt.Sprintf("Completed: %s", t.Title))
	} else {
		m.setMessage(fmt.Sprintf("Reopened: %s", t.Title))
	}
	m.loadData()
}

func (m *Model) handleDelete() {
	task := m.currentTask()
	if task == nil || task.IsDeleting {
		return
	}
	if _, err := m.todos.RequestDelete(task.ID); err != nil {
		m.setMessage(fmt.Sprintf("Error: %v", err))
		return
	}
	m.mode = ModeConfirmDelete
}

func (m *Model) handleRestore() {
	task := m.currentTask()
	if task == nil || !task.IsDeleting {
		return
	}
	if m.todos.AbortDelete(task.ID) {
		m.setMessage(fmt.Sprintf("Restored: %s", task.Title))
	}
	m.loadData()
}

func (m *Model) handleClearCompleted() {
	n, err := m.todos.ClearCompleted(context.Background())
	if err != nil {
		logger.Error("Failed to clear completed tasks", logger.F("error", err))
		m.setMessage(fmt.Sprintf("Error: %v", err))
		return
	}
	if n == 0 {
		m.setMessage("No completed tasks")
	} else {
		m.setMessage(fmt.Sprintf("Cleared %d completed", n))
	}
	m.loadData()
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		m.mode = ModeNormal
		if err := m.todos.ConfirmDelete(""); err != nil {
			m.setMessage(fmt.Sprintf("Error: %v", err))
		}
		m.loadData()
		return m, nil

	case key.Matches(msg, keys.Escape), msg.String() == "n", msg.String() == "N", msg.String() == "q":
		m.todos.CancelDelete()
		m.mode = ModeNormal
		return m, nil
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		title, description, due := parseEntry(m.input.Value())
		ctx := context.Background()

		switch m.mode {
		case ModeAddTask:
			t, err := m.todos.Add(ctx, title, description, due)
			if err != nil {
				// Keep the input open so the entry can be fixed
				m.setMessage(fmt.Sprintf("Error: %v", err))
				return m, nil
			}
			m.setMessage(fmt.Sprintf("Added: %s", t.Title))
			m.cursor = 0

		case ModeEditTask:
			task := m.currentTask()
			if task != nil {
				t, err := m.todos.Update(ctx, task.ID, model.Patch{
					Title:       model.String(title),
					Description: model.String(description),
					DueDate:     model.String(due),
				})
				if err != nil {
					m.setMessage(fmt.Sprintf("Error: %v", err))
					return m, nil
				}
				m.setMessage(fmt.Sprintf("Updated: %s", t.Title))
			}
		}

		m.loadData()
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.query = ""
		m.input.Blur()
		m.loadData()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Live search as user types
	m.query = m.input.Value()
	m.cursor = 0
	m.loadData()
	return m, cmd
}
