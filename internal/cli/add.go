package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task to the top of your list.

Examples:
  todo add "Buy groceries"
  todo add "Write report" -d "Q3 numbers" --due 2024-01-15`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDescription string
	addDue         string
)

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Task description")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	return withList(cmd.Context(), func(l taskList) error {
		t, err := l.Add(cmd.Context(), title, addDescription, addDue)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added to [%s]: %q (%s)\n", l.Name(), t.Title, shortID(t.ID))
		return nil
	})
}
