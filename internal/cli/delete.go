package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [item-id]",
	Short: "Delete a single item",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.DeleteItem(args[0]); err != nil {
		return err
	}
	if err := a.store.Commit(); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	fmt.Println("Item deleted.")
	return nil
}
