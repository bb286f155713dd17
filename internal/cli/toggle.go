package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:     "toggle [task-id]",
	Aliases: []string{"done"},
	Short:   "Toggle a task between active and completed",
	Long: `Flip the completed state of a task. Short id prefixes are accepted.

Examples:
  todo toggle abc123
  todo done abc1`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	return withList(cmd.Context(), func(l taskList) error {
		task, err := l.Resolve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("task %s: %w", args[0], err)
		}

		task, err = l.Toggle(cmd.Context(), task.ID)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		if task.Completed {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Completed: %q\n", task.Title)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "○ Reopened: %q\n", task.Title)
		}
		return nil
	})
}
