package cli

import (
	"context"
	"fmt"

	"github.com/garrow/portfolio/internal/cloud"
	"github.com/garrow/portfolio/internal/logger"
	"github.com/garrow/portfolio/internal/model"
	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Mirror projects to the shared cloud server",
}

var sharePushCmd = &cobra.Command{
	Use:   "push [project-id]",
	Short: "Export a project and push its records to the mirror server",
	Args:  cobra.ExactArgs(1),
	RunE:  runSharePush,
}

var shareListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List projects shared by everyone",
	RunE:    runShareList,
}

var shareItemsCmd = &cobra.Command{
	Use:   "items [record-id]",
	Short: "List the items of a shared project",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareItems,
}

var shareServerCmd = &cobra.Command{
	Use:   "server [url]",
	Short: "Set the mirror server URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareServer,
}

var shareOwnerCmd = &cobra.Command{
	Use:   "owner [name]",
	Short: "Set the owner name stamped on shared projects",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareOwner,
}

var sharePassphrase string

func init() {
	sharePushCmd.Flags().StringVar(&sharePassphrase, "passphrase", "", "Encrypt shared text with this passphrase")

	shareCmd.AddCommand(sharePushCmd)
	shareCmd.AddCommand(shareListCmd)
	shareCmd.AddCommand(shareItemsCmd)
	shareCmd.AddCommand(shareServerCmd)
	shareCmd.AddCommand(shareOwnerCmd)
}

func runSharePush(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.store.ProjectByID(args[0])
	if err != nil {
		return err
	}
	items := a.store.ItemsForProject(p.ID, model.SortOptimized)

	client, err := cloud.NewClient()
	if err != nil {
		return err
	}
	if sharePassphrase != "" {
		if err := client.EnableEncryption(sharePassphrase); err != nil {
			return err
		}
	}

	records := cloud.ExportProject(p, items, client.Owner())
	if err := client.PushRecords(cmd.Context(), records); err != nil {
		return fmt.Errorf("failed to push records: %w", err)
	}

	fmt.Printf("Shared %q: %d records pushed.\n", p.DisplayTitle(), len(records))
	return nil
}

func runShareList(cmd *cobra.Command, args []string) error {
	client, err := cloud.NewClient()
	if err != nil {
		return err
	}

	projects, err := client.FetchShared(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch shared projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Println("Nothing shared yet.")
		return nil
	}

	for _, p := range projects {
		state := "open"
		if p.Closed {
			state = "closed"
		}
		fmt.Printf("%-36s  %-20s  by %-12s  %s\n", p.ID, p.Title, p.Owner, state)
	}
	return nil
}

func runShareItems(cmd *cobra.Command, args []string) error {
	client, err := cloud.NewClient()
	if err != nil {
		return err
	}

	items, err := client.FetchSharedItems(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch shared items: %w", err)
	}
	for _, it := range items {
		marker := " "
		if it.Completed {
			marker = "x"
		}
		fmt.Printf("[%s] %s\n", marker, it.Title)
	}
	return nil
}

func runShareServer(cmd *cobra.Command, args []string) error {
	client, err := cloud.NewClient()
	if err != nil {
		return err
	}
	if err := client.SetServer(args[0]); err != nil {
		return err
	}
	fmt.Printf("Mirror server set to %s\n", args[0])
	return nil
}

func runShareOwner(cmd *cobra.Command, args []string) error {
	client, err := cloud.NewClient()
	if err != nil {
		return err
	}
	if err := client.SetOwner(args[0]); err != nil {
		return err
	}
	fmt.Printf("Owner set to %s\n", args[0])
	return nil
}

// deleteMirror removes a project's shared copy. Best-effort: the local
// delete already happened, a failure here only leaves a stale mirror.
func deleteMirror(ctx context.Context, localProjectID string) {
	client, err := cloud.NewClient()
	if err != nil {
		logger.Warn("mirror delete skipped", logger.F("error", err))
		return
	}
	if err := client.DeleteRecord(ctx, cloud.RecordID(localProjectID)); err != nil {
		logger.Warn("mirror delete failed",
			logger.F("project", localProjectID), logger.F("error", err))
		fmt.Println("Note: could not remove the shared copy; it may be stale.")
		return
	}
	fmt.Println("Shared copy removed from mirror.")
}
