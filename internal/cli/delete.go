package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID or a unique prefix of it.

Examples:
  todo delete abc123
  todo rm abc1 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withList(cmd.Context(), func(l taskList) error {
		out := cmd.OutOrStdout()

		task, err := l.Resolve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("task %s: %w", args[0], err)
		}

		if currentConfig().ConfirmDelete && !deleteYes {
			fmt.Fprintf(out, "About to delete: %q (ID: %s)\n", task.Title, shortID(task.ID))
			if !confirm(cmd.InOrStdin(), out, "Are you sure?") {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		if err := l.Delete(cmd.Context(), task.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		fmt.Fprintf(out, "🗑️  Deleted: %q\n", task.Title)
		return nil
	})
}
