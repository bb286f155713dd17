package cli

import (
	"fmt"

	"github.com/existflow/irontodo/internal/model"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all completed tasks",
	Long: `Remove every completed task from your list in one step.
Active tasks keep their order.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().Bool("force", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	return withList(cmd.Context(), func(l taskList) error {
		out := cmd.OutOrStdout()

		_, active, total, err := l.View(cmd.Context(), model.FilterAll, "")
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		done := total - active
		if done == 0 {
			fmt.Fprintln(out, "No completed tasks.")
			return nil
		}

		if !force && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Remove %d completed task(s)?", done)) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		n, err := l.ClearCompleted(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear completed tasks: %w", err)
		}

		fmt.Fprintf(out, "🧹 Cleared %d completed task(s).\n", n)
		return nil
	})
}
