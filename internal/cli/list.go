package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/existflow/irontodo/internal/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, newest first, optionally filtered and searched.

Examples:
  todo list
  todo list --filter active
  todo list --search report`,
	RunE: runList,
}

var (
	listFilter string
	listSearch string
)

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "all", "Filter: all, active, completed")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only tasks whose title or description contains this text")
}

func runList(cmd *cobra.Command, args []string) error {
	filter, err := model.ParseFilter(listFilter)
	if err != nil {
		return err
	}

	return withList(cmd.Context(), func(l taskList) error {
		out := cmd.OutOrStdout()
		tasks, active, total, err := l.View(cmd.Context(), filter, listSearch)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		if len(tasks) == 0 {
			if total == 0 {
				fmt.Fprintln(out, `No tasks found. Add one with: todo add "Your task"`)
			} else {
				fmt.Fprintln(out, "No tasks match.")
			}
			return nil
		}

		printTasks(out, l.Name(), tasks, active, time.Now())
		return nil
	})
}

func printTasks(out io.Writer, listName string, tasks []model.Todo, active int, now time.Time) {
	fmt.Fprintf(out, "\n📋 %s (%d items left)\n", listName, active)
	fmt.Fprintln(out, strings.Repeat("─", 60))

	for _, t := range tasks {
		printTask(out, t, now)
	}
	fmt.Fprintln(out)
}

func printTask(out io.Writer, t model.Todo, now time.Time) {
	// Status icon
	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
	}

	// Due date
	due := ""
	if d, ok := t.Due(); ok {
		due = d.Format("Jan 2")
		switch {
		case t.IsOverdue(now):
			due = "! " + due
		case t.IsDueToday(now):
			due = "today"
		}
	}

	// Truncate title if too long
	title := t.Title
	if len([]rune(title)) > 40 {
		title = string([]rune(title)[:37]) + "..."
	}

	fmt.Fprintf(out, "  %s  %-8s  %-40s  %s\n", icon, shortID(t.ID), title, due)
	if t.Description != "" {
		fmt.Fprintf(out, "                 %s\n", t.Description)
	}
}
