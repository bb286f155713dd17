package tui

import "github.com/charmbracelet/lipgloss"

// Color palette based on TUI design
var (
	// Status colors
	Completed = lipgloss.Color("#95E1A3") // Green
	Overdue   = lipgloss.Color("#FF6B6B") // Red
	DueToday  = lipgloss.Color("#FFB347") // Orange
	Deleting  = lipgloss.Color("#6C757D") // Gray

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Danger    = lipgloss.Color("#FF5555")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Filter tabs
	TabStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	// Task list
	TaskListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Task item
	TaskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	TaskDeletingStyle = lipgloss.NewStyle().
				Foreground(Deleting).
				Italic(true).
				Padding(0, 1)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(TextMuted)

	// Due date badges
	OverdueStyle  = lipgloss.NewStyle().Foreground(Overdue).Bold(true)
	DueTodayStyle = lipgloss.NewStyle().Foreground(DueToday).Bold(true)
	DueStyle      = lipgloss.NewStyle().Foreground(Secondary)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	DangerModalStyle = ModalStyle.
				BorderForeground(Danger)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
