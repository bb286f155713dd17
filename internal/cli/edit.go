package cli

import (
	"errors"
	"fmt"

	"github.com/existflow/irontodo/internal/model"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task",
	Long: `Change the title, description or due date of a task.
Only the flags you pass are changed; pass an empty value to clear a field.

Examples:
  todo edit abc123 --title "Buy more groceries"
  todo edit abc123 --due 2024-02-01
  todo edit abc123 --description ""`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle       string
	editDescription string
	editDue         string
)

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	editCmd.Flags().StringVar(&editDue, "due", "", "New due date (YYYY-MM-DD)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	var patch model.Patch
	if cmd.Flags().Changed("title") {
		patch.Title = model.String(editTitle)
	}
	if cmd.Flags().Changed("description") {
		patch.Description = model.String(editDescription)
	}
	if cmd.Flags().Changed("due") {
		patch.DueDate = model.String(editDue)
	}
	if patch.IsEmpty() {
		return errors.New("nothing to change: pass --title, --description or --due")
	}

	return withList(cmd.Context(), func(l taskList) error {
		task, err := l.Resolve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("task %s: %w", args[0], err)
		}

		task, err = l.Update(cmd.Context(), task.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✎ Updated: %q\n", task.Title)
		return nil
	})
}
