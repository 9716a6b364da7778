package cli

import (
	"fmt"
	"strings"

	"github.com/garrow/portfolio/internal/model"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new item to a project",
	Long: `Add a new item to a project.

Examples:
  portfolio add "Write the report" --project 4f1c…
  portfolio add "Fix the build" --project 4f1c… -p 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addProject  string
	addPriority int
	addDetail   string
)

func init() {
	addCmd.Flags().StringVarP(&addProject, "project", "P", "", "Project to add the item to (required)")
	addCmd.Flags().IntVarP(&addPriority, "priority", "p", model.PriorityLow, "Priority (1=low, 3=high)")
	addCmd.Flags().StringVarP(&addDetail, "detail", "d", "", "Item detail text")
	addCmd.MarkFlagRequired("project")
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	title := strings.Join(args, " ")
	it, err := a.store.CreateItem(addProject, title, addDetail, addPriority)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	if err := a.store.Commit(); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	project, _ := a.store.ProjectByID(addProject)
	fmt.Printf("Added to [%s]: %q (P%d)\n", project.DisplayTitle(), it.DisplayTitle(), it.Priority)
	return nil
}
