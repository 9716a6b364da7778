package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/garrow/portfolio/internal/model"
	"github.com/garrow/portfolio/internal/store"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a new project",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List projects",
	RunE:    runProjectList,
}

var projectCloseCmd = &cobra.Command{
	Use:   "close [project-id]",
	Short: "Toggle a project between open and closed",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectClose,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project and every item it owns",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

var projectReminderCmd = &cobra.Command{
	Use:   "reminder [project-id]",
	Short: "Enable or disable the project's daily reminder",
	Long: `Enable or disable the project's daily reminder.

Examples:
  portfolio project reminder work --at 09:00
  portfolio project reminder work --off`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectReminder,
}

var (
	projectColor   string
	projectDetail  string
	projectClosed  bool
	reminderAt     string
	reminderOff    bool
	deleteMirrored bool
)

func init() {
	projectAddCmd.Flags().StringVarP(&projectColor, "color", "c", "", "Project color tag")
	projectAddCmd.Flags().StringVarP(&projectDetail, "detail", "d", "", "Project detail text")
	projectListCmd.Flags().BoolVar(&projectClosed, "closed", false, "List closed projects instead of open ones")
	projectReminderCmd.Flags().StringVar(&reminderAt, "at", "09:00", "Time of day (HH:MM)")
	projectReminderCmd.Flags().BoolVar(&reminderOff, "off", false, "Disable the reminder")
	projectDeleteCmd.Flags().BoolVar(&deleteMirrored, "mirror", false, "Also delete the shared copy from the mirror server")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCloseCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectReminderCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	title := strings.Join(args, " ")
	p, err := a.store.CreateProject(title, projectDetail, projectColor)
	if err != nil {
		return err
	}
	if err := a.store.Commit(); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	fmt.Printf("Created project %q (%s, %s)\n", p.DisplayTitle(), p.ID, p.DisplayColor())
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	q := store.OpenProjects()
	if projectClosed {
		q = store.ClosedProjects()
	}
	projects := a.store.FetchProjects(q)
	if len(projects) == 0 {
		fmt.Println("No projects.")
		return nil
	}

	for _, p := range projects {
		items := a.store.ItemsForProject(p.ID, model.SortOptimized)
		reminder := ""
		if p.ReminderEnabled && p.ReminderTime != nil {
			reminder = "  reminder " + p.ReminderTime.Format("15:04")
		}
		fmt.Printf("%-36s  %-20s  %-10s  %d items  %3.0f%%%s\n",
			p.ID, p.DisplayTitle(), p.DisplayColor(), len(items),
			model.CompletionAmount(items)*100, reminder)
	}
	return nil
}

func runProjectClose(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.ToggleProjectClosed(args[0]); err != nil {
		return err
	}
	if err := a.store.Commit(); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	p, err := a.store.ProjectByID(args[0])
	if err != nil {
		return err
	}
	state := "open"
	if p.Closed {
		state = "closed"
	}
	fmt.Printf("Project %q is now %s\n", p.DisplayTitle(), state)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.DeleteProject(args[0]); err != nil {
		return err
	}
	if err := a.store.Commit(); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	fmt.Println("Project and its items deleted.")

	if deleteMirrored {
		deleteMirror(cmd.Context(), args[0])
	}
	return nil
}

func runProjectReminder(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if reminderOff {
		if err := a.store.SetReminder(args[0], false, time.Time{}); err != nil {
			return err
		}
		if err := a.store.Commit(); err != nil {
			return fmt.Errorf("failed to save reminder: %w", err)
		}
		fmt.Println("Reminder disabled.")
		return nil
	}

	at, err := time.Parse("15:04", reminderAt)
	if err != nil {
		return fmt.Errorf("invalid time %q, expected HH:MM", reminderAt)
	}
	if err := a.store.SetReminder(args[0], true, at); err != nil {
		return err
	}
	if err := a.store.Commit(); err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	fmt.Printf("Daily reminder set for %s\n", at.Format("15:04"))
	return nil
}
