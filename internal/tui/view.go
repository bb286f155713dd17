package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/irontodo/internal/model"
)

var filterTabs = []model.Filter{model.FilterAll, model.FilterActive, model.FilterCompleted}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	mainContent := m.renderTaskList()
	statusBar := m.renderStatusBar()

	// Add modal if in input mode
	switch m.mode {
	case ModeAddTask, ModeEditTask:
		mainContent = m.place(m.renderModal())
	case ModeConfirmDelete:
		mainContent = m.place(m.renderConfirmDelete())
	case ModeHelp:
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent, statusBar)
}

func (m Model) place(modal string) string {
	return lipgloss.Place(
		m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m Model) renderHeader() string {
	user := m.todos.Username()
	if user == "" {
		user = "guest"
	}
	title := HeaderStyle.Render("IronTodo") + HelpStyle.Render("· "+user)

	tabs := make([]string, 0, len(filterTabs))
	for _, f := range filterTabs {
		style := TabStyle
		if f == m.filter {
			style = TabActiveStyle
		}
		tabs = append(tabs, style.Render(f.String()))
	}

	line := title + "   " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.query != "" {
		line += HelpStyle.Render(fmt.Sprintf("   /%s", m.query))
	}
	return line
}

func (m Model) renderTaskList() string {
	width := m.width - 4
	var s strings.Builder

	if len(m.tasks) == 0 {
		if m.query != "" {
			s.WriteString(HelpStyle.Render("  No tasks match your search."))
		} else {
			s.WriteString(HelpStyle.Render("  No tasks. Press 'a' to add one."))
		}
	}

	for i, t := range m.tasks {
		s.WriteString(m.renderTask(i, t, width))
		s.WriteString("\n")
	}

	return TaskListStyle.Width(width).Height(max(m.height-4, 0)).Render(s.String())
}

func (m Model) renderTask(i int, t model.Todo, width int) string {
	cursor := "  "
	style := TaskItemStyle
	if i == m.cursor {
		cursor = "❯ "
		style = TaskItemSelectedStyle
	}

	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
		style = TaskDoneStyle
	}

	titleWidth := max(width-30, 10)
	title := truncate(t.Title, titleWidth)
	if t.IsDeleting {
		style = TaskDeletingStyle
		title = truncate(t.Title+" (deleting…)", titleWidth)
	}

	line := style.Render(cursor+icon) + style.Render(fmt.Sprintf(" %-*s ", titleWidth, title))
	line += m.renderDue(t)

	if t.Description != "" {
		line += "\n" + strings.Repeat(" ", 8) + DescriptionStyle.Render(truncate(t.Description, titleWidth))
	}
	return line
}

func (m Model) renderDue(t model.Todo) string {
	d, ok := t.Due()
	if !ok {
		return ""
	}
	now := m.now()
	switch {
	case t.IsOverdue(now):
		return OverdueStyle.Render("overdue " + d.Format("Jan 2"))
	case t.IsDueToday(now):
		return DueTodayStyle.Render("today")
	default:
		return DueStyle.Render(d.Format("Jan 2"))
	}
}

func (m Model) renderStatusBar() string {
	// When searching, show inline search input (like vim)
	if m.mode == ModeSearch {
		return StatusBarStyle.Width(m.width).Render("/" + m.input.View() + fmt.Sprintf("  [%d]", len(m.tasks)))
	}

	active, _ := m.todos.Counts()
	left := fmt.Sprintf("%d items left", active)

	help := "a:add  e:edit  x:done  d:del  u:undo  c:clear done  /:search  tab:filter  ?:help  q:quit"
	if m.message != "" {
		help = m.message
	}

	return StatusBarStyle.Width(m.width).Render(left + "  │  " + help)
}

func (m Model) renderModal() string {
	title := "Add Task"
	if m.mode == ModeEditTask {
		title = "Edit Task"
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	if m.message != "" && strings.HasPrefix(m.message, "Error") {
		content += lipgloss.NewStyle().Foreground(Danger).Render(m.message) + "\n"
	}
	content += HelpStyle.Render("title | description | YYYY-MM-DD   Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderConfirmDelete() string {
	pending, ok := m.todos.Pending()
	if !ok {
		return ""
	}

	content := lipgloss.NewStyle().Bold(true).Foreground(Danger).Render("Delete task?") + "\n\n"
	content += truncate(pending.Title, 50) + "\n\n"
	content += HelpStyle.Render("y/Enter:delete  n/Esc:keep")

	return DangerModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  j/↓    Move down        │
│  k/↑    Move up          │
│  g/G    Top / bottom     │
│  Tab    Next filter      │
│  1-3    All/Active/Done  │
│  /      Search           │
│                          │
│  Actions                 │
│  ───────                 │
│  a       Add task        │
│  e       Edit task       │
│  x/Enter Toggle done     │
│  d       Delete          │
│  u       Undo delete     │
│  c       Clear completed │
│                          │
│  Other                   │
│  ─────                   │
│  ?       Toggle help     │
│  q       Quit            │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, max(m.height-4, 0), lipgloss.Center, lipgloss.Center, help)
}
